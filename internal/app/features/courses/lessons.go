// internal/app/features/courses/lessons.go
package courses

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	lessonstore "github.com/dalemusser/langis/internal/app/store/lessons"
	"github.com/dalemusser/langis/internal/app/system/htmlsanitize"
	"github.com/dalemusser/langis/internal/app/system/inputval"
	"github.com/dalemusser/langis/internal/app/system/timeouts"
	"github.com/dalemusser/langis/internal/app/system/viewdata"
	"github.com/dalemusser/langis/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// startLayout is the format produced by <input type="datetime-local">.
const startLayout = "2006-01-02T15:04"

type lessonForm struct {
	Start           string `form:"start" validate:"required"`
	DurationMinutes int    `form:"duration_minutes" validate:"gte=5,lte=480"`
	Classroom       string `form:"classroom" validate:"required,max=50"`
	Description     string `form:"-"`
}

type lessonFormData struct {
	viewdata.BaseVM
	Course *models.Course
	Lesson *models.Lesson // nil for the new-lesson form
	Form   lessonForm
	Errors map[string]string
	Error  string
}

// loadManagedCourse loads the course and checks the caller may manage its
// lessons. On failure it has already written the response.
func (h *Handler) loadManagedCourse(w http.ResponseWriter, r *http.Request, ctx context.Context, courseID primitive.ObjectID) (*models.Course, bool) {
	course, err := h.Courses.GetByID(ctx, courseID)
	if err == mongo.ErrNoDocuments {
		h.ErrLog.LogNotFound(w, r, "course not found", err, "Course not found.", "/courses")
		return nil, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load course failed", err, "Could not load the course.", "/courses")
		return nil, false
	}
	if !canManage(r, course) {
		h.ErrLog.LogForbidden(w, r, "lesson management denied", nil, "Only the course's teacher can manage its lessons.", "/courses/"+courseID.Hex())
		return nil, false
	}
	return course, true
}

func (h *Handler) lessonIDParam(w http.ResponseWriter, r *http.Request, courseID primitive.ObjectID) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "lessonID"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "malformed lesson id", err, "Lesson not found.", "/courses/"+courseID.Hex())
		return primitive.NilObjectID, false
	}
	return id, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /courses/{courseID}/lessons/new                                         |
| GET /courses/{courseID}/lessons/{lessonID}/edit                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLessonNew(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	course, ok := h.loadManagedCourse(w, r, ctx, courseID)
	if !ok {
		return
	}
	h.renderLessonForm(w, r, course, nil, lessonForm{DurationMinutes: 45}, nil, "")
}

func (h *Handler) ServeLessonEdit(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	course, ok := h.loadManagedCourse(w, r, ctx, courseID)
	if !ok {
		return
	}
	lessonID, ok := h.lessonIDParam(w, r, courseID)
	if !ok {
		return
	}

	lesson, err := h.Lessons.GetByID(ctx, lessonID)
	if err != nil || lesson.CourseID != courseID {
		h.ErrLog.LogNotFound(w, r, "lesson not found", err, "Lesson not found.", "/courses/"+courseID.Hex())
		return
	}

	form := lessonForm{
		Start:           lesson.Start.Local().Format(startLayout),
		DurationMinutes: lesson.DurationMinutes,
		Classroom:       lesson.Classroom,
		Description:     lesson.Description,
	}
	h.renderLessonForm(w, r, course, lesson, form, nil, "")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /courses/{courseID}/lessons/new                                        |
| POST /courses/{courseID}/lessons/{lessonID}/edit                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLessonCreate(w http.ResponseWriter, r *http.Request) {
	h.handleLessonSave(w, r, primitive.NilObjectID)
}

func (h *Handler) HandleLessonUpdate(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}
	lessonID, ok := h.lessonIDParam(w, r, courseID)
	if !ok {
		return
	}
	h.handleLessonSave(w, r, lessonID)
}

func (h *Handler) handleLessonSave(w http.ResponseWriter, r *http.Request, lessonID primitive.ObjectID) {
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	course, ok := h.loadManagedCourse(w, r, ctx, courseID)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/courses/"+courseID.Hex())
		return
	}

	form := lessonForm{
		Start:       strings.TrimSpace(r.FormValue("start")),
		Classroom:   strings.TrimSpace(r.FormValue("classroom")),
		Description: htmlsanitize.Description(r.FormValue("description")),
	}
	form.DurationMinutes, _ = strconv.Atoi(r.FormValue("duration_minutes"))

	var lesson *models.Lesson
	if lessonID != primitive.NilObjectID {
		var err error
		lesson, err = h.Lessons.GetByID(ctx, lessonID)
		if err != nil || lesson.CourseID != courseID {
			h.ErrLog.LogNotFound(w, r, "lesson not found", err, "Lesson not found.", "/courses/"+courseID.Hex())
			return
		}
	}

	if errs := inputval.Struct(form); errs != nil {
		h.renderLessonForm(w, r, course, lesson, form, errs, "")
		return
	}
	start, err := time.ParseInLocation(startLayout, form.Start, time.Local)
	if err != nil {
		h.renderLessonForm(w, r, course, lesson, form, nil, "Enter a valid start date and time.")
		return
	}

	if lessonID == primitive.NilObjectID {
		created, err := h.Lessons.Create(ctx, models.Lesson{
			CourseID:        courseID,
			Start:           start.UTC(),
			DurationMinutes: form.DurationMinutes,
			Classroom:       form.Classroom,
			Description:     form.Description,
		})
		if err != nil {
			h.ErrLog.LogServerError(w, r, "create lesson failed", err, "Could not create the lesson.", "/courses/"+courseID.Hex())
			return
		}
		h.Log.Info("lesson created", zap.String("lesson_id", created.ID.Hex()), zap.String("course_id", courseID.Hex()))
	} else {
		err := h.Lessons.UpdateInfo(ctx, courseID, lessonID, lessonstore.Update{
			Start:           start.UTC(),
			DurationMinutes: form.DurationMinutes,
			Classroom:       form.Classroom,
			Description:     form.Description,
		})
		if err != nil {
			h.ErrLog.LogServerError(w, r, "update lesson failed", err, "Could not save the lesson.", "/courses/"+courseID.Hex())
			return
		}
	}
	http.Redirect(w, r, "/courses/"+courseID.Hex()+"?flash=saved", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /courses/{courseID}/lessons/{lessonID}/delete                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLessonDelete(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, ok := h.loadManagedCourse(w, r, ctx, courseID); !ok {
		return
	}
	lessonID, ok := h.lessonIDParam(w, r, courseID)
	if !ok {
		return
	}

	deleted, err := h.Lessons.Delete(ctx, courseID, lessonID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete lesson failed", err, "Could not delete the lesson.", "/courses/"+courseID.Hex())
		return
	}
	if deleted == 0 {
		h.ErrLog.LogNotFound(w, r, "lesson not found", nil, "Lesson not found.", "/courses/"+courseID.Hex())
		return
	}
	http.Redirect(w, r, "/courses/"+courseID.Hex()+"?flash=deleted", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /courses/{courseID}/lessons/{lessonID}/file                            |
| POST /courses/{courseID}/lessons/{lessonID}/file/delete                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLessonFileUpload(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}
	detail := "/courses/" + courseID.Hex()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if _, ok := h.loadManagedCourse(w, r, ctx, courseID); !ok {
		return
	}
	lessonID, ok := h.lessonIDParam(w, r, courseID)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse multipart form failed", err, "Invalid upload.", detail)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil || header == nil || header.Size == 0 {
		h.ErrLog.LogBadRequest(w, r, "missing upload file", err, "Choose a file to upload.", detail)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := uploadFile(ctx, h.Storage, header.Filename, file, header.Size, contentType)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "lesson file upload failed", err, "Could not upload the file.", detail)
		return
	}

	url := h.Storage.URL(info.Path)
	if err := h.Lessons.SetFile(ctx, courseID, lessonID, info.Path, info.FileName, info.Size, url); err != nil {
		h.ErrLog.LogServerError(w, r, "attach lesson file failed", err, "Could not attach the file.", detail)
		return
	}
	http.Redirect(w, r, detail+"?flash=saved", http.StatusSeeOther)
}

func (h *Handler) HandleLessonFileDelete(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, ok := h.loadManagedCourse(w, r, ctx, courseID); !ok {
		return
	}
	lessonID, ok := h.lessonIDParam(w, r, courseID)
	if !ok {
		return
	}

	if err := h.Lessons.ClearFile(ctx, courseID, lessonID); err != nil {
		h.ErrLog.LogServerError(w, r, "clear lesson file failed", err, "Could not remove the file.", "/courses/"+courseID.Hex())
		return
	}
	http.Redirect(w, r, "/courses/"+courseID.Hex()+"?flash=saved", http.StatusSeeOther)
}

func (h *Handler) renderLessonForm(w http.ResponseWriter, r *http.Request, course *models.Course, lesson *models.Lesson, form lessonForm, errs map[string]string, msg string) {
	title := "New lesson"
	if lesson != nil {
		title = "Edit lesson"
	}
	templates.Render(w, r, "lesson_form", lessonFormData{
		BaseVM: viewdata.NewBaseVM(r, title, "/courses/"+course.ID.Hex()),
		Course: course,
		Lesson: lesson,
		Form:   form,
		Errors: errs,
		Error:  msg,
	})
}
