// internal/app/features/register/handler.go
package register

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/langis/internal/app/features/errors"
	loginstore "github.com/dalemusser/langis/internal/app/store/logins"
	userstore "github.com/dalemusser/langis/internal/app/store/users"
	"github.com/dalemusser/langis/internal/app/system/auth"
	"github.com/dalemusser/langis/internal/app/system/authutil"
	"github.com/dalemusser/langis/internal/app/system/inputval"
	"github.com/dalemusser/langis/internal/app/system/timeouts"
	"github.com/dalemusser/langis/internal/app/system/viewdata"
	"github.com/dalemusser/langis/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Users      *userstore.Store
	Logins     *loginstore.Store
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Users:      userstore.New(db),
		Logins:     loginstore.New(db),
	}
}

type registerForm struct {
	FirstName string `form:"first_name" validate:"required,max=100"`
	LastName  string `form:"last_name" validate:"required,max=100"`
	Email     string `form:"email" validate:"required,email"`
}

type registerFormData struct {
	viewdata.BaseVM
	Errors        map[string]string
	Error         string
	FirstName     string
	LastName      string
	Email         string
	PasswordRules string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "register", registerFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Create account", "/login"),
		PasswordRules: authutil.PasswordRules(),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/register")
		return
	}

	form := registerForm{
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Email:     strings.TrimSpace(r.FormValue("email")),
	}
	password := r.FormValue("password")
	confirm := r.FormValue("password_confirm")

	if errs := inputval.Struct(form); errs != nil {
		h.renderWithErrors(w, r, form, errs, "")
		return
	}
	if err := authutil.ValidatePassword(password); err != nil {
		h.renderWithErrors(w, r, form, nil, err.Error())
		return
	}
	if password != confirm {
		h.renderWithErrors(w, r, form, nil, "Passwords don't match.")
		return
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "Could not create your account.", "/register")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		Role:         models.RoleStudent,
		AuthMethod:   models.AuthPassword,
		PasswordHash: &hash,
	})
	if err == userstore.ErrDuplicateEmail {
		h.renderWithErrors(w, r, form, nil, "An account with this email already exists.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create user failed", err, "Could not create your account.", "/register")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "session save failed", err, "Account created; please sign in.", "/login")
		return
	}
	if err := h.Logins.RecordFrom(ctx, r, u.ID, models.AuthPassword); err != nil {
		h.Log.Warn("record login failed", zap.Error(err))
	}

	http.Redirect(w, r, "/courses", http.StatusSeeOther)
}

func (h *Handler) renderWithErrors(w http.ResponseWriter, r *http.Request, form registerForm, errs map[string]string, msg string) {
	templates.Render(w, r, "register", registerFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Create account", "/login"),
		Errors:        errs,
		Error:         msg,
		FirstName:     form.FirstName,
		LastName:      form.LastName,
		Email:         form.Email,
		PasswordRules: authutil.PasswordRules(),
	})
}
