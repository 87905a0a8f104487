// internal/app/features/courses/routes.go
package courses

import "github.com/go-chi/chi/v5"

// Routes returns the router for course browsing, enrollment, and
// management. Mounted at /courses.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)

	r.Group(func(r chi.Router) {
		r.Use(h.SessionMgr.RequireRole("admin"))
		r.Get("/new", h.ServeNew)
		r.Post("/new", h.HandleCreate)
	})

	r.Route("/{courseID}", func(r chi.Router) {
		r.Get("/", h.ServeDetail)

		r.Group(func(r chi.Router) {
			r.Use(h.SessionMgr.RequireRole("student"))
			r.Post("/enroll", h.HandleEnroll)
			r.Post("/cancel", h.HandleCancel)
			r.Post("/rate", h.HandleRate)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.SessionMgr.RequireRole("admin"))
			r.Get("/edit", h.ServeEdit)
			r.Post("/edit", h.HandleUpdate)
			r.Post("/delete", h.HandleDelete)
		})

		// Lesson management; ownership is checked per-course in the
		// handlers since teachers may only touch their own courses.
		r.Group(func(r chi.Router) {
			r.Use(h.SessionMgr.RequireRole("teacher", "admin"))
			r.Get("/lessons/new", h.ServeLessonNew)
			r.Post("/lessons/new", h.HandleLessonCreate)
			r.Get("/lessons/{lessonID}/edit", h.ServeLessonEdit)
			r.Post("/lessons/{lessonID}/edit", h.HandleLessonUpdate)
			r.Post("/lessons/{lessonID}/delete", h.HandleLessonDelete)
			r.Post("/lessons/{lessonID}/file", h.HandleLessonFileUpload)
			r.Post("/lessons/{lessonID}/file/delete", h.HandleLessonFileDelete)
		})
	})

	return r
}
