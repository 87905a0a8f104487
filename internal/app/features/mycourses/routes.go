// internal/app/features/mycourses/routes.go
package mycourses

import "github.com/go-chi/chi/v5"

// Routes returns the router for the my-courses page.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeMyCourses)
	return r
}
