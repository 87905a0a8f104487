// internal/app/features/courses/enroll.go
package courses

import (
	"context"
	"net/http"
	"strconv"

	coursestore "github.com/dalemusser/langis/internal/app/store/courses"
	ratingstore "github.com/dalemusser/langis/internal/app/store/ratings"
	"github.com/dalemusser/langis/internal/app/system/authz"
	"github.com/dalemusser/langis/internal/app/system/inputval"
	"github.com/dalemusser/langis/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// rateForm is the single-field payload of the rating action.
type rateForm struct {
	Value float64 `form:"value" validate:"halfstep"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /courses/{courseID}/enroll                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}
	role, _, uid, logged := authz.UserCtx(r)
	if !logged || role != "student" {
		h.ErrLog.LogForbidden(w, r, "enroll by non-student", nil, "Only students can enroll in courses.", "/courses/"+courseID.Hex())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	detail := "/courses/" + courseID.Hex()
	switch err := h.Courses.Enroll(ctx, courseID, uid); err {
	case nil:
		http.Redirect(w, r, detail+"?flash=enrolled", http.StatusSeeOther)
	case coursestore.ErrCourseFull:
		http.Redirect(w, r, detail+"?error=full", http.StatusSeeOther)
	case coursestore.ErrAlreadyEnrolled:
		http.Redirect(w, r, detail+"?error=already_enrolled", http.StatusSeeOther)
	default:
		h.ErrLog.LogServerError(w, r, "enroll failed", err, "Could not enroll you in the course.", detail)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /courses/{courseID}/cancel                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}
	role, _, uid, logged := authz.UserCtx(r)
	if !logged || role != "student" {
		h.ErrLog.LogForbidden(w, r, "cancel by non-student", nil, "Only students can cancel an enrollment.", "/courses/"+courseID.Hex())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	detail := "/courses/" + courseID.Hex()
	switch err := h.Courses.Cancel(ctx, courseID, uid); err {
	case nil:
		http.Redirect(w, r, detail+"?flash=cancelled", http.StatusSeeOther)
	case coursestore.ErrNotEnrolled:
		http.Redirect(w, r, detail+"?error=not_enrolled", http.StatusSeeOther)
	default:
		h.ErrLog.LogServerError(w, r, "cancel enrollment failed", err, "Could not cancel your enrollment.", detail)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /courses/{courseID}/rate                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRate(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}
	detail := "/courses/" + courseID.Hex()

	role, _, uid, logged := authz.UserCtx(r)
	if !logged || role != "student" {
		h.ErrLog.LogForbidden(w, r, "rate by non-student", nil, "Only students can rate courses.", detail)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", detail)
		return
	}
	value, err := strconv.ParseFloat(r.FormValue("value"), 64)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "malformed rating value", err, "Invalid rating.", detail)
		return
	}
	if errs := inputval.Struct(rateForm{Value: value}); errs != nil {
		http.Redirect(w, r, detail+"?error=bad_rating", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// Only enrolled students may rate.
	course, err := h.Courses.GetByID(ctx, courseID)
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "course not found", err, "Course not found.", "/courses")
		return
	}
	if !course.HasStudent(uid) {
		h.ErrLog.LogForbidden(w, r, "rate without enrollment", nil, "You can only rate courses you are enrolled in.", detail)
		return
	}

	if err := h.Ratings.Upsert(ctx, courseID, uid, value); err == ratingstore.ErrInvalidValue {
		h.ErrLog.LogBadRequest(w, r, "rating out of range", err, "Invalid rating.", detail)
		return
	} else if err != nil {
		h.ErrLog.LogServerError(w, r, "save rating failed", err, "Could not save your rating.", detail)
		return
	}

	// Recompute the denormalized average. A failure here leaves the
	// rating itself saved; the aggregate catches up on the next rating.
	avg, count, err := h.Ratings.Average(ctx, courseID)
	if err != nil {
		h.Log.Warn("rating aggregate failed", zap.Error(err))
	} else if err := h.Courses.SetAverageRating(ctx, courseID, avg, count); err != nil {
		h.Log.Warn("write rating aggregate failed", zap.Error(err))
	}

	http.Redirect(w, r, detail+"?flash=saved", http.StatusSeeOther)
}
