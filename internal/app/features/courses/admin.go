// internal/app/features/courses/admin.go
package courses

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	coursestore "github.com/dalemusser/langis/internal/app/store/courses"
	"github.com/dalemusser/langis/internal/app/system/authz"
	"github.com/dalemusser/langis/internal/app/system/htmlsanitize"
	"github.com/dalemusser/langis/internal/app/system/inputval"
	"github.com/dalemusser/langis/internal/app/system/timeouts"
	"github.com/dalemusser/langis/internal/app/system/viewdata"
	"github.com/dalemusser/langis/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// courseForm defines the validation rules for the admin course form.
type courseForm struct {
	Name        string `form:"name" validate:"required,max=200"`
	Language    string `form:"language" validate:"required,max=50"`
	Level       string `form:"level" validate:"required,cefr"`
	Price       int    `form:"price" validate:"gte=0"`
	Capacity    int    `form:"capacity" validate:"gte=1,lte=500"`
	TeacherID   string `form:"teacher_id" validate:"required"`
	Description string `form:"-"`
}

type courseFormData struct {
	viewdata.BaseVM
	Form     courseForm
	Errors   map[string]string
	Error    string
	Teachers []models.User
	Levels   []string
	EditID   string // empty for the new-course form
}

// cefrLevels are the selectable course levels, lowest first.
var cefrLevels = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /courses/new, GET /courses/{courseID}/edit                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	h.renderCourseForm(w, r, courseForm{Capacity: 10}, nil, "", "")
}

func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
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

	form := courseForm{
		Name:        course.Name,
		Language:    course.Language,
		Level:       course.Level,
		Price:       course.Price,
		Capacity:    course.Capacity,
		TeacherID:   course.Teacher.ID.Hex(),
		Description: course.Description,
	}
	h.renderCourseForm(w, r, form, nil, "", courseID.Hex())
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /courses/new, POST /courses/{courseID}/edit                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.handleCourseSave(w, r, primitive.NilObjectID)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}
	h.handleCourseSave(w, r, courseID)
}

func (h *Handler) handleCourseSave(w http.ResponseWriter, r *http.Request, editID primitive.ObjectID) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/courses")
		return
	}

	editHex := ""
	if editID != primitive.NilObjectID {
		editHex = editID.Hex()
	}

	form := courseForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Language:    strings.TrimSpace(r.FormValue("language")),
		Level:       strings.ToUpper(strings.TrimSpace(r.FormValue("level"))),
		TeacherID:   strings.TrimSpace(r.FormValue("teacher_id")),
		Description: htmlsanitize.Description(r.FormValue("description")),
	}
	form.Price, _ = strconv.Atoi(r.FormValue("price"))
	form.Capacity, _ = strconv.Atoi(r.FormValue("capacity"))

	if errs := inputval.Struct(form); errs != nil {
		h.renderCourseForm(w, r, form, errs, "", editHex)
		return
	}

	teacherID, err := primitive.ObjectIDFromHex(form.TeacherID)
	if err != nil {
		h.renderCourseForm(w, r, form, nil, "Pick a teacher from the list.", editHex)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	teacher, err := h.Users.GetByID(ctx, teacherID)
	if err != nil || teacher.Role != models.RoleTeacher {
		h.renderCourseForm(w, r, form, nil, "Pick a teacher from the list.", editHex)
		return
	}
	snapshot := models.CourseTeacher{
		ID:        teacher.ID,
		FirstName: teacher.FirstName,
		LastName:  teacher.LastName,
		PhotoURL:  teacher.DisplayPhotoURL(""),
	}

	if editID == primitive.NilObjectID {
		_, name, uid, _ := authz.UserCtx(r)
		created, err := h.Courses.Create(ctx, models.Course{
			Name:          form.Name,
			Description:   form.Description,
			Language:      form.Language,
			Level:         form.Level,
			Price:         form.Price,
			Capacity:      form.Capacity,
			Teacher:       snapshot,
			CreatedByID:   uid,
			CreatedByName: name,
		})
		if err != nil {
			h.ErrLog.LogServerError(w, r, "create course failed", err, "Could not create the course.", "/courses")
			return
		}
		h.Log.Info("course created", zap.String("course_id", created.ID.Hex()), zap.String("name", created.Name))
		http.Redirect(w, r, "/courses/"+created.ID.Hex()+"?flash=saved", http.StatusSeeOther)
		return
	}

	err = h.Courses.UpdateInfo(ctx, editID, coursestore.InfoUpdate{
		Name:        form.Name,
		Description: form.Description,
		Language:    form.Language,
		Level:       form.Level,
		Price:       form.Price,
		Capacity:    form.Capacity,
		Teacher:     snapshot,
	})
	if err == mongo.ErrNoDocuments {
		h.ErrLog.LogNotFound(w, r, "course not found", err, "Course not found.", "/courses")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "update course failed", err, "Could not save the course.", "/courses")
		return
	}
	http.Redirect(w, r, "/courses/"+editHex+"?flash=saved", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /courses/{courseID}/delete                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleDelete removes a course together with its lessons, chat history,
// and ratings.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	deleted, err := h.Courses.Delete(ctx, courseID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete course failed", err, "Could not delete the course.", "/courses/"+courseID.Hex())
		return
	}
	if deleted == 0 {
		h.ErrLog.LogNotFound(w, r, "course not found", nil, "Course not found.", "/courses")
		return
	}

	if _, err := h.Lessons.DeleteByCourse(ctx, courseID); err != nil {
		h.Log.Warn("delete course lessons failed", zap.Error(err))
	}
	if _, err := h.Messages.DeleteByCourse(ctx, courseID); err != nil {
		h.Log.Warn("delete course messages failed", zap.Error(err))
	}
	if _, err := h.Ratings.DeleteByCourse(ctx, courseID); err != nil {
		h.Log.Warn("delete course ratings failed", zap.Error(err))
	}

	h.Log.Info("course deleted", zap.String("course_id", courseID.Hex()))
	http.Redirect(w, r, "/courses?flash=deleted", http.StatusSeeOther)
}

func (h *Handler) renderCourseForm(w http.ResponseWriter, r *http.Request, form courseForm, errs map[string]string, msg, editID string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	teachers, err := h.Users.ListTeachers(ctx)
	if err != nil {
		h.Log.Warn("list teachers failed", zap.Error(err))
	}

	title := "New course"
	if editID != "" {
		title = "Edit course"
	}
	templates.Render(w, r, "course_form", courseFormData{
		BaseVM:   viewdata.NewBaseVM(r, title, "/courses"),
		Form:     form,
		Errors:   errs,
		Error:    msg,
		Teachers: teachers,
		Levels:   cefrLevels,
		EditID:   editID,
	})
}
