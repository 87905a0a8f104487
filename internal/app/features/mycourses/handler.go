// internal/app/features/mycourses/handler.go
package mycourses

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/langis/internal/app/features/errors"
	coursestore "github.com/dalemusser/langis/internal/app/store/courses"
	"github.com/dalemusser/langis/internal/app/system/authz"
	"github.com/dalemusser/langis/internal/app/system/timeouts"
	"github.com/dalemusser/langis/internal/app/system/viewdata"
	"github.com/dalemusser/langis/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's course list: enrollments for
// students, taught courses for teachers.
type Handler struct {
	DB      *mongo.Database
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
	Courses *coursestore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Log:     logger,
		ErrLog:  errLog,
		Courses: coursestore.New(db),
	}
}

type pageData struct {
	viewdata.BaseVM
	Courses   []models.Course
	IsTeacher bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /my-courses                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeMyCourses(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login?return=/my-courses", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var (
		list []models.Course
		err  error
	)
	if role == "teacher" {
		list, err = h.Courses.ListByTeacher(ctx, uid)
	} else {
		list, err = h.Courses.ListByStudent(ctx, uid)
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list my courses failed", err, "Could not load your courses.", "/courses")
		return
	}

	templates.Render(w, r, "my_courses", pageData{
		BaseVM:    viewdata.NewBaseVM(r, "My courses", "/courses"),
		Courses:   list,
		IsTeacher: role == "teacher",
	})
}
