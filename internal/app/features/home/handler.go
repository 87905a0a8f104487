package home

import (
	"context"
	"net/http"

	coursestore "github.com/dalemusser/langis/internal/app/store/courses"
	"github.com/dalemusser/langis/internal/app/system/timeouts"
	"github.com/dalemusser/langis/internal/app/system/viewdata"
	"github.com/dalemusser/langis/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the landing page.
type Handler struct {
	DB      *mongo.Database
	Courses *coursestore.Store
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Courses: coursestore.New(db),
		Log:     logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// A few course cards on the landing page; failure here degrades to
	// an empty list rather than an error page.
	courses, err := h.Courses.List(ctx)
	if err != nil {
		h.Log.Warn("landing course list failed", zap.Error(err))
		courses = nil
	}
	if len(courses) > 3 {
		courses = courses[:3]
	}

	data := struct {
		viewdata.BaseVM
		Courses []models.Course
	}{
		BaseVM:  viewdata.NewBaseVM(r, "Welcome", "/"),
		Courses: courses,
	}

	templates.Render(w, r, "home", data)
}
