// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/langis/internal/app/features/errors"
	loginstore "github.com/dalemusser/langis/internal/app/store/logins"
	userstore "github.com/dalemusser/langis/internal/app/store/users"
	"github.com/dalemusser/langis/internal/app/system/authutil"
	"github.com/dalemusser/langis/internal/app/system/authz"
	"github.com/dalemusser/langis/internal/app/system/htmlsanitize"
	"github.com/dalemusser/langis/internal/app/system/inputval"
	"github.com/dalemusser/langis/internal/app/system/profileresolve"
	"github.com/dalemusser/langis/internal/app/system/timeouts"
	"github.com/dalemusser/langis/internal/app/system/viewdata"
	"github.com/dalemusser/langis/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the profile page and its edit operations.
type Handler struct {
	DB      *mongo.Database
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
	Storage storage.Store

	Users  *userstore.Store
	Logins *loginstore.Store

	// Profiles resolves the signed-in identity with bounded retries and
	// caches the outcome per identity. OAuth accounts are created
	// moments after the identity arrives, so the first read can land
	// before the document exists; a terminal miss is remembered so
	// later requests fail fast until sign-out.
	Profiles *profileresolve.Registry
}

// NewHandler creates a new profile handler.
func NewHandler(db *mongo.Database, store storage.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	users := userstore.New(db)
	resolver := profileresolve.New(func(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
		u, err := users.GetByID(ctx, id)
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return u, err
	}, logger)

	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		Storage:  store,
		Users:    users,
		Logins:   loginstore.New(db),
		Profiles: profileresolve.NewRegistry(resolver),
	}
}

type profileForm struct {
	FirstName   string `form:"first_name" validate:"required,max=100"`
	LastName    string `form:"last_name" validate:"required,max=100"`
	Age         int    `form:"age" validate:"omitempty,gte=1,lte=120"`
	Location    string `form:"location" validate:"max=200"`
	Description string `form:"-"`
}

type pageData struct {
	viewdata.BaseVM
	User          *models.User
	Logins        []models.LoginRecord
	Errors        map[string]string
	Error         string
	Flash         string
	IsPassword    bool
	PasswordRules string
	PhotoURL      string
}

// currentUser resolves the signed-in user with bounded retries. On
// failure the response has been written.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request, ctx context.Context) (*models.User, bool) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login?return=/profile", http.StatusSeeOther)
		return nil, false
	}
	u, err := h.Profiles.Resolve(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve profile failed", err, "Could not load your profile.", "/courses")
		return nil, false
	}
	return u, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /profile                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	u, ok := h.currentUser(w, r, ctx)
	if !ok {
		return
	}

	logins, err := h.Logins.RecentByUser(ctx, u.ID, 5)
	if err != nil {
		h.Log.Warn("list recent logins failed", zap.Error(err))
	}

	h.render(w, r, u, logins, nil, "", flashMessage(r))
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /profile                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	u, ok := h.currentUser(w, r, ctx)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/profile")
		return
	}

	form := profileForm{
		FirstName:   strings.TrimSpace(r.FormValue("first_name")),
		LastName:    strings.TrimSpace(r.FormValue("last_name")),
		Location:    strings.TrimSpace(r.FormValue("location")),
		Description: htmlsanitize.Description(r.FormValue("description")),
	}
	form.Age, _ = strconv.Atoi(r.FormValue("age"))

	if errs := inputval.Struct(form); errs != nil {
		h.render(w, r, u, nil, errs, "", "")
		return
	}

	upd := userstore.ProfileUpdate{
		FirstName: form.FirstName,
		LastName:  form.LastName,
	}
	if form.Age > 0 {
		upd.Age = &form.Age
	}
	if form.Location != "" {
		upd.Location = &form.Location
	}
	if form.Description != "" {
		upd.Description = &form.Description
	}

	if err := h.Users.UpdateProfile(ctx, u.ID, upd); err != nil {
		h.ErrLog.LogServerError(w, r, "update profile failed", err, "Could not save your profile.", "/profile")
		return
	}
	h.Profiles.Invalidate(u.ID)
	http.Redirect(w, r, "/profile?flash=saved", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /profile/photo                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandlePhotoUpload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	u, ok := h.currentUser(w, r, ctx)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse multipart form failed", err, "Invalid upload.", "/profile")
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil || header == nil || header.Size == 0 {
		h.ErrLog.LogBadRequest(w, r, "missing photo file", err, "Choose a photo to upload.", "/profile")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		h.ErrLog.LogBadRequest(w, r, "photo is not an image", nil, "The photo must be an image file.", "/profile")
		return
	}

	info, err := uploadPhoto(ctx, h.Storage, u.ID, header.Filename, file, contentType)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "photo upload failed", err, "Could not upload your photo.", "/profile")
		return
	}

	if err := h.Users.UpdatePhoto(ctx, u.ID, info.Path, h.Storage.URL(info.Path)); err != nil {
		h.ErrLog.LogServerError(w, r, "save photo failed", err, "Could not save your photo.", "/profile")
		return
	}
	h.Profiles.Invalidate(u.ID)
	http.Redirect(w, r, "/profile?flash=saved", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /profile/password                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// HandlePasswordChange changes the password of a password account. OAuth
// accounts have no password to change.
func (h *Handler) HandlePasswordChange(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	u, ok := h.currentUser(w, r, ctx)
	if !ok {
		return
	}
	if u.AuthMethod != models.AuthPassword || u.PasswordHash == nil {
		h.ErrLog.LogForbidden(w, r, "password change on oauth account", nil, "Your account signs in with an external provider.", "/profile")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/profile")
		return
	}
	current := r.FormValue("current_password")
	next := r.FormValue("new_password")
	confirm := r.FormValue("new_password_confirm")

	if !authutil.CheckPassword(current, *u.PasswordHash) {
		h.render(w, r, u, nil, nil, "Current password is incorrect.", "")
		return
	}
	if err := authutil.ValidatePassword(next); err != nil {
		h.render(w, r, u, nil, nil, err.Error(), "")
		return
	}
	if next != confirm {
		h.render(w, r, u, nil, nil, "Passwords don't match.", "")
		return
	}

	hash, err := authutil.HashPassword(next)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "Could not change your password.", "/profile")
		return
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		h.ErrLog.LogServerError(w, r, "update password failed", err, "Could not change your password.", "/profile")
		return
	}
	h.Profiles.Invalidate(u.ID)
	http.Redirect(w, r, "/profile?flash=saved", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, u *models.User, logins []models.LoginRecord, errs map[string]string, msg, flash string) {
	templates.Render(w, r, "profile", pageData{
		BaseVM:        viewdata.NewBaseVM(r, "My profile", "/courses"),
		User:          u,
		Logins:        logins,
		Errors:        errs,
		Error:         msg,
		Flash:         flash,
		IsPassword:    u.AuthMethod == models.AuthPassword,
		PasswordRules: authutil.PasswordRules(),
		PhotoURL:      u.DisplayPhotoURL(""),
	})
}

func flashMessage(r *http.Request) string {
	if r.URL.Query().Get("flash") == "saved" {
		return "flash.saved"
	}
	return ""
}
