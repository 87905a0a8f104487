// internal/app/features/chat/routes.go
package chat

import "github.com/go-chi/chi/v5"

// Routes returns the router for a course's chat. Mounted at
// /courses/{courseID}/chat.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeChat)
	r.Post("/", h.HandlePost)
	r.Get("/stream", h.ServeStream)
	return r
}
