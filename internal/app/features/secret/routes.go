// internal/app/features/secret/routes.go
package secret

import "github.com/go-chi/chi/v5"

// Routes returns the router for the overview page. The signed-in check
// happens where this is mounted.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeSecret)
	return r
}
