// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/langis/internal/app/system/auth"
	"github.com/dalemusser/langis/internal/app/system/authz"
	"github.com/dalemusser/langis/internal/app/system/profileresolve"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Profiles   *profileresolve.Registry
}

func NewHandler(sessionMgr *auth.SessionManager, profiles *profileresolve.Registry, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Profiles:   profiles,
	}
}

// ServeLogout handles POST /logout (and GET for direct navigation).
// Cached per-identity state is dropped before the redirect so a
// following request can never observe the old identity.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if _, _, uid, ok := authz.UserCtx(r); ok {
		h.Profiles.SignOut(uid)
	}
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("logout: clearing session failed", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
