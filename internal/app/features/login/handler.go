// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/langis/internal/app/features/errors"
	loginstore "github.com/dalemusser/langis/internal/app/store/logins"
	userstore "github.com/dalemusser/langis/internal/app/store/users"
	"github.com/dalemusser/langis/internal/app/system/auth"
	"github.com/dalemusser/langis/internal/app/system/authutil"
	"github.com/dalemusser/langis/internal/app/system/ratelimit"
	"github.com/dalemusser/langis/internal/app/system/timeouts"
	"github.com/dalemusser/langis/internal/app/system/viewdata"
	"github.com/dalemusser/langis/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB            *mongo.Database
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	Users         *userstore.Store
	Logins        *loginstore.Store
	Limiter       *ratelimit.Limiter
	GoogleEnabled bool
	GitHubEnabled bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
	GitHubEnabled bool
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	googleEnabled, githubEnabled bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:            db,
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		Users:         userstore.New(db),
		Logins:        loginstore.New(db),
		Limiter:       ratelimit.New(10, time.Minute),
		GoogleEnabled: googleEnabled,
		GitHubEnabled: githubEnabled,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
		GitHubEnabled: h.GitHubEnabled,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if !h.Limiter.Allow(ratelimit.ClientIP(r)) {
		h.renderFormWithError(w, r, "Too many sign-in attempts. Please wait a minute and try again.", "")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err == mongo.ErrNoDocuments {
		// Same message as a wrong password; don't reveal which it was.
		h.renderFormWithError(w, r, "Incorrect email or password.", email)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB find user", err, "A server error occurred.", "/login")
		return
	}

	if u.AuthMethod != models.AuthPassword || u.PasswordHash == nil {
		h.renderFormWithError(w, r, "This account signs in with "+u.AuthMethod+".", email)
		return
	}
	if !authutil.CheckPassword(password, *u.PasswordHash) {
		h.Log.Info("failed sign-in", zap.String("email", u.Email))
		h.renderFormWithError(w, r, "Incorrect email or password.", email)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "session save failed", err, "Could not sign you in.", "/login")
		return
	}

	if err := h.Logins.RecordFrom(ctx, r, u.ID, models.AuthPassword); err != nil {
		h.Log.Warn("record login failed", zap.Error(err))
	}

	http.Redirect(w, r, safeReturnURL(r.FormValue("return")), http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email string) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
		Error:         msg,
		Email:         email,
		ReturnURL:     r.FormValue("return"),
		GoogleEnabled: h.GoogleEnabled,
		GitHubEnabled: h.GitHubEnabled,
	})
}

// safeReturnURL only honors local paths, never absolute URLs, so the
// return parameter can't bounce users to another site.
func safeReturnURL(ret string) string {
	if ret == "" || !strings.HasPrefix(ret, "/") || strings.HasPrefix(ret, "//") {
		return "/courses"
	}
	return ret
}
