// internal/app/system/i18n/i18n.go
//
// Small string-table localization for page chrome. The language is kept
// in a signed cookie; ?lang=xx on any request switches it.
package i18n

import (
	"net/http"

	"github.com/gorilla/securecookie"
)

const (
	LangEnglish = "en"
	LangCzech   = "cs"
	LangSlovak  = "sk"

	cookieName = "langis_lang"
)

var supported = map[string]bool{
	LangEnglish: true,
	LangCzech:   true,
	LangSlovak:  true,
}

// Codec signs the language cookie so it can't be tampered into an
// unexpected value fed to templates.
type Codec struct {
	sc *securecookie.SecureCookie
}

func NewCodec(hashKey []byte) *Codec {
	return &Codec{sc: securecookie.New(hashKey, nil)}
}

// Lang resolves the effective language for a request: explicit ?lang=
// wins, then the signed cookie, then English.
func (c *Codec) Lang(r *http.Request) string {
	if q := r.URL.Query().Get("lang"); supported[q] {
		return q
	}
	ck, err := r.Cookie(cookieName)
	if err != nil {
		return LangEnglish
	}
	var lang string
	if err := c.sc.Decode(cookieName, ck.Value, &lang); err != nil {
		return LangEnglish
	}
	if !supported[lang] {
		return LangEnglish
	}
	return lang
}

// Persist writes the signed language cookie when ?lang= is present and
// valid. It returns the effective language either way.
func (c *Codec) Persist(w http.ResponseWriter, r *http.Request) string {
	lang := c.Lang(r)
	if q := r.URL.Query().Get("lang"); q != "" && supported[q] {
		if enc, err := c.sc.Encode(cookieName, lang); err == nil {
			http.SetCookie(w, &http.Cookie{
				Name:     cookieName,
				Value:    enc,
				Path:     "/",
				MaxAge:   365 * 24 * 60 * 60,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
	}
	return lang
}

// T looks up a message key in the given language, falling back to
// English, then to the key itself so missing entries stay visible.
func T(lang, key string) string {
	if tbl, ok := tables[lang]; ok {
		if s, ok := tbl[key]; ok {
			return s
		}
	}
	if s, ok := tables[LangEnglish][key]; ok {
		return s
	}
	return key
}

// Func returns a translation closure bound to a language, handy for
// template FuncMaps and view models.
func Func(lang string) func(string) string {
	return func(key string) string { return T(lang, key) }
}

var tables = map[string]map[string]string{
	LangEnglish: {
		"nav.courses":        "Courses",
		"nav.my_courses":     "My courses",
		"nav.profile":        "Profile",
		"nav.login":          "Sign in",
		"nav.logout":         "Sign out",
		"nav.register":       "Register",
		"courses.title":      "Language courses",
		"courses.enroll":     "Enroll",
		"courses.cancel":     "Cancel enrollment",
		"courses.full":       "Course is full",
		"courses.capacity":   "Capacity",
		"courses.price":      "Price",
		"courses.teacher":    "Teacher",
		"courses.level":      "Level",
		"courses.language":   "Language",
		"courses.rating":     "Rating",
		"lessons.title":      "Lessons",
		"lessons.none":       "No lessons scheduled yet.",
		"courses.none":       "No courses to show.",
		"lessons.classroom":  "Classroom",
		"lessons.materials":  "Materials",
		"chat.title":         "Group chat",
		"chat.send":          "Send",
		"chat.placeholder":   "Write a message…",
		"profile.title":      "My profile",
		"profile.save":       "Save changes",
		"profile.age":        "Age",
		"profile.location":   "Location",
		"profile.about":      "About me",
		"login.title":        "Sign in",
		"login.google":       "Sign in with Google",
		"login.github":       "Sign in with GitHub",
		"login.email":        "Email",
		"login.password":     "Password",
		"register.title":     "Create account",
		"register.first":     "First name",
		"register.last":      "Last name",
		"err.unauthorized":   "You need to sign in to see this page.",
		"err.forbidden":      "You don't have permission to see this page.",
		"err.not_found":      "Page not found.",
		"err.server":         "Something went wrong. Please try again.",
		"flash.enrolled":     "You are enrolled.",
		"flash.cancelled":    "Your enrollment was cancelled.",
		"flash.saved":        "Saved.",
		"flash.deleted":      "Deleted.",
		"courses.already_enrolled": "You are already enrolled in this course.",
		"courses.not_enrolled":     "You are not enrolled in this course.",
		"courses.bad_rating":       "Ratings go from 0 to 5 in half-star steps.",
	},
	LangCzech: {
		"nav.courses":        "Kurzy",
		"nav.my_courses":     "Moje kurzy",
		"nav.profile":        "Profil",
		"nav.login":          "Přihlásit se",
		"nav.logout":         "Odhlásit se",
		"nav.register":       "Registrace",
		"courses.title":      "Jazykové kurzy",
		"courses.enroll":     "Zapsat se",
		"courses.cancel":     "Zrušit zápis",
		"courses.full":       "Kurz je plný",
		"courses.capacity":   "Kapacita",
		"courses.price":      "Cena",
		"courses.teacher":    "Lektor",
		"courses.level":      "Úroveň",
		"courses.language":   "Jazyk",
		"courses.rating":     "Hodnocení",
		"lessons.title":      "Lekce",
		"lessons.none":       "Zatím nejsou naplánovány žádné lekce.",
		"courses.none":       "Žádné kurzy k zobrazení.",
		"lessons.classroom":  "Učebna",
		"lessons.materials":  "Materiály",
		"chat.title":         "Skupinový chat",
		"chat.send":          "Odeslat",
		"chat.placeholder":   "Napište zprávu…",
		"profile.title":      "Můj profil",
		"profile.save":       "Uložit změny",
		"profile.age":        "Věk",
		"profile.location":   "Místo",
		"profile.about":      "O mně",
		"login.title":        "Přihlášení",
		"login.google":       "Přihlásit se přes Google",
		"login.github":       "Přihlásit se přes GitHub",
		"login.email":        "E-mail",
		"login.password":     "Heslo",
		"register.title":     "Vytvořit účet",
		"register.first":     "Jméno",
		"register.last":      "Příjmení",
		"err.unauthorized":   "Pro zobrazení stránky se musíte přihlásit.",
		"err.forbidden":      "K této stránce nemáte oprávnění.",
		"err.not_found":      "Stránka nenalezena.",
		"err.server":         "Něco se pokazilo. Zkuste to prosím znovu.",
		"flash.enrolled":     "Jste zapsáni.",
		"flash.cancelled":    "Váš zápis byl zrušen.",
		"flash.saved":        "Uloženo.",
		"flash.deleted":      "Smazáno.",
		"courses.already_enrolled": "Do tohoto kurzu jste již zapsáni.",
		"courses.not_enrolled":     "Do tohoto kurzu nejste zapsáni.",
		"courses.bad_rating":       "Hodnocení je od 0 do 5 po půl hvězdičkách.",
	},
	LangSlovak: {
		"nav.courses":        "Kurzy",
		"nav.my_courses":     "Moje kurzy",
		"nav.profile":        "Profil",
		"nav.login":          "Prihlásiť sa",
		"nav.logout":         "Odhlásiť sa",
		"nav.register":       "Registrácia",
		"courses.title":      "Jazykové kurzy",
		"courses.enroll":     "Zapísať sa",
		"courses.cancel":     "Zrušiť zápis",
		"courses.full":       "Kurz je plný",
		"courses.capacity":   "Kapacita",
		"courses.price":      "Cena",
		"courses.teacher":    "Lektor",
		"courses.level":      "Úroveň",
		"courses.language":   "Jazyk",
		"courses.rating":     "Hodnotenie",
		"lessons.title":      "Lekcie",
		"lessons.none":       "Zatiaľ nie sú naplánované žiadne lekcie.",
		"courses.none":       "Žiadne kurzy na zobrazenie.",
		"lessons.classroom":  "Učebňa",
		"lessons.materials":  "Materiály",
		"chat.title":         "Skupinový chat",
		"chat.send":          "Odoslať",
		"chat.placeholder":   "Napíšte správu…",
		"profile.title":      "Môj profil",
		"profile.save":       "Uložiť zmeny",
		"profile.age":        "Vek",
		"profile.location":   "Miesto",
		"profile.about":      "O mne",
		"login.title":        "Prihlásenie",
		"login.google":       "Prihlásiť sa cez Google",
		"login.github":       "Prihlásiť sa cez GitHub",
		"login.email":        "E-mail",
		"login.password":     "Heslo",
		"register.title":     "Vytvoriť účet",
		"register.first":     "Meno",
		"register.last":      "Priezvisko",
		"err.unauthorized":   "Na zobrazenie stránky sa musíte prihlásiť.",
		"err.forbidden":      "Na túto stránku nemáte oprávnenie.",
		"err.not_found":      "Stránka sa nenašla.",
		"err.server":         "Niečo sa pokazilo. Skúste to prosím znova.",
		"flash.enrolled":     "Ste zapísaní.",
		"flash.cancelled":    "Váš zápis bol zrušený.",
		"flash.saved":        "Uložené.",
		"flash.deleted":      "Zmazané.",
		"courses.already_enrolled": "Do tohto kurzu ste už zapísaní.",
		"courses.not_enrolled":     "Do tohto kurzu nie ste zapísaní.",
		"courses.bad_rating":       "Hodnotenie je od 0 do 5 po pol hviezdičkách.",
	},
}
