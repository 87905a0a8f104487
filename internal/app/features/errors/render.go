// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/langis/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it will default to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	w.WriteHeader(http.StatusUnauthorized)
	templates.Render(w, r, "error_page", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Sign in required", backURL),
		Message: "Please sign in to continue.",
	})
}

// RenderForbidden shows a friendly access error page with a message.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = "/"
	}
	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_page", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Access denied", backURL),
		Message: msg,
	})
}

// RenderNotFound shows the 404 page with a message.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = "The page you're looking for doesn't exist."
	}
	if backURL == "" {
		backURL = "/"
	}
	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_page", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Page not found", backURL),
		Message: msg,
	})
}

// RenderServerError shows a generic failure page without leaking the
// underlying error to the user.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = "Something went wrong. Please try again."
	}
	if backURL == "" {
		backURL = "/"
	}
	w.WriteHeader(http.StatusInternalServerError)
	templates.Render(w, r, "error_page", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Something went wrong", backURL),
		Message: msg,
	})
}

// RenderBadRequest shows a 400 page with a message.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = "That request couldn't be processed."
	}
	if backURL == "" {
		backURL = "/"
	}
	w.WriteHeader(http.StatusBadRequest)
	templates.Render(w, r, "error_page", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Invalid request", backURL),
		Message: msg,
	})
}
