// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger pairs structured logging with user-facing error pages so
// handlers can report a failure in one call: the log line carries the
// detail, the page carries only the friendly message.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(log *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: log}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	f := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if err != nil {
		f = append(f, zap.Error(err))
	}
	return f
}

// LogBadRequest logs at warn and renders the 400 page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg, e.fields(r, err)...)
	RenderBadRequest(w, r, userMsg, backURL)
}

// LogForbidden logs at warn and renders the 403 page.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg, e.fields(r, err)...)
	RenderForbidden(w, r, userMsg, backURL)
}

// LogNotFound logs at info and renders the 404 page.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Info(logMsg, e.fields(r, err)...)
	RenderNotFound(w, r, userMsg, backURL)
}

// LogServerError logs at error and renders the 500 page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg, e.fields(r, err)...)
	RenderServerError(w, r, userMsg, backURL)
}
