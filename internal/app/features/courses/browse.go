// internal/app/features/courses/browse.go
package courses

import (
	"context"
	"net/http"

	"github.com/dalemusser/langis/internal/app/system/authz"
	"github.com/dalemusser/langis/internal/app/system/timeouts"
	"github.com/dalemusser/langis/internal/app/system/viewdata"
	"github.com/dalemusser/langis/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type listData struct {
	viewdata.BaseVM
	Courses []models.Course
	Flash   string
	IsAdmin bool
}

type detailData struct {
	viewdata.BaseVM
	Course  *models.Course
	Lessons []models.Lesson
	Flash   string
	Error   string

	IsEnrolled bool
	CanEnroll  bool
	CanManage  bool
	IsAdmin    bool
	MyRating   float64
	HasRated   bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /courses                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Courses.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list courses failed", err, "Could not load courses.", "/")
		return
	}

	templates.Render(w, r, "course_list", listData{
		BaseVM:  viewdata.NewBaseVM(r, "Courses", "/"),
		Courses: list,
		Flash:   flashMessage(r),
		IsAdmin: authz.IsAdmin(r),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /courses/{courseID}                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	course, err := h.Courses.GetByID(ctx, courseID)
	if err == mongo.ErrNoDocuments {
		h.ErrLog.LogNotFound(w, r, "course not found", err, "Course not found.", "/courses")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load course failed", err, "Could not load the course.", "/courses")
		return
	}

	lessons, err := h.Lessons.ListByCourse(ctx, courseID)
	if err != nil {
		h.Log.Warn("list lessons failed", zap.Error(err))
		lessons = nil
	}

	data := detailData{
		BaseVM:    viewdata.NewBaseVM(r, course.Name, "/courses"),
		Course:    course,
		Lessons:   lessons,
		Flash:     flashMessage(r),
		Error:     errorMessage(r),
		CanManage: canManage(r, course),
		IsAdmin:   authz.IsAdmin(r),
	}

	role, _, uid, logged := authz.UserCtx(r)
	if logged && role == "student" {
		data.IsEnrolled = course.HasStudent(uid)
		data.CanEnroll = !data.IsEnrolled && !course.IsFull()

		if data.IsEnrolled {
			if rt, err := h.Ratings.Get(ctx, courseID, uid); err == nil {
				data.MyRating = rt.Value
				data.HasRated = true
			}
		}
	}

	templates.Render(w, r, "course_detail", data)
}

// flashMessage maps the ?flash= query parameter to a message key used by
// the templates; unknown values are dropped so the parameter can't be
// used to inject text.
func flashMessage(r *http.Request) string {
	switch query.Get(r, "flash") {
	case "enrolled":
		return "flash.enrolled"
	case "cancelled":
		return "flash.cancelled"
	case "saved":
		return "flash.saved"
	case "deleted":
		return "flash.deleted"
	}
	return ""
}

func errorMessage(r *http.Request) string {
	switch query.Get(r, "error") {
	case "full":
		return "courses.full"
	case "already_enrolled":
		return "courses.already_enrolled"
	case "not_enrolled":
		return "courses.not_enrolled"
	case "bad_rating":
		return "courses.bad_rating"
	}
	return ""
}
