// internal/app/features/profile/routes.go
package profile

import "github.com/go-chi/chi/v5"

// Routes returns the router for the profile pages.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeProfile)
	r.Post("/", h.HandleUpdate)
	r.Post("/photo", h.HandlePhotoUpload)
	r.Post("/password", h.HandlePasswordChange)
	return r
}
