// internal/app/features/chat/handler.go
package chat

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/langis/internal/app/features/errors"
	coursestore "github.com/dalemusser/langis/internal/app/store/courses"
	messagestore "github.com/dalemusser/langis/internal/app/store/messages"
	"github.com/dalemusser/langis/internal/app/system/auth"
	"github.com/dalemusser/langis/internal/app/system/authz"
	"github.com/dalemusser/langis/internal/app/system/htmlsanitize"
	"github.com/dalemusser/langis/internal/app/system/livewatch"
	"github.com/dalemusser/langis/internal/app/system/timeouts"
	"github.com/dalemusser/langis/internal/app/system/viewdata"
	"github.com/dalemusser/langis/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// historyLimit is how many past messages the chat page loads.
const historyLimit = 100

// Handler serves the per-course group chat: history, posting, and the
// live event stream.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	Courses  *coursestore.Store
	Messages *messagestore.Store

	// Hub multiplexes one Mongo change stream per course across all
	// connected chat clients.
	Hub *livewatch.Hub[models.Message]
}

// NewHandler creates a new chat handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	msgs := messagestore.New(db)
	hub := livewatch.NewHub(func(ctx context.Context, key string) (*livewatch.Subscription[models.Message], error) {
		courseID, err := primitive.ObjectIDFromHex(key)
		if err != nil {
			return nil, err
		}
		return msgs.Watch(ctx, courseID, logger)
	}, logger)

	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		Courses:  coursestore.New(db),
		Messages: msgs,
		Hub:      hub,
	}
}

type pageData struct {
	viewdata.BaseVM
	Course   *models.Course
	Messages []models.Message
	MyID     string
}

// loadCourseForMember loads the course and verifies the caller may use
// its chat: enrolled students, the course's teacher, and admins.
func (h *Handler) loadCourseForMember(w http.ResponseWriter, r *http.Request, ctx context.Context) (*models.Course, primitive.ObjectID, bool) {
	courseID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "courseID"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "malformed course id", err, "Course not found.", "/courses")
		return nil, primitive.NilObjectID, false
	}

	role, _, uid, logged := authz.UserCtx(r)
	if !logged {
		http.Redirect(w, r, "/login?return=/courses/"+courseID.Hex()+"/chat", http.StatusSeeOther)
		return nil, primitive.NilObjectID, false
	}

	course, err := h.Courses.GetByID(ctx, courseID)
	if err == mongo.ErrNoDocuments {
		h.ErrLog.LogNotFound(w, r, "course not found", err, "Course not found.", "/courses")
		return nil, primitive.NilObjectID, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load course failed", err, "Could not load the course.", "/courses")
		return nil, primitive.NilObjectID, false
	}

	member := role == "admin" ||
		(role == "teacher" && course.Teacher.ID == uid) ||
		course.HasStudent(uid)
	if !member {
		h.ErrLog.LogForbidden(w, r, "chat access denied", nil, "Only course members can use the chat.", "/courses/"+courseID.Hex())
		return nil, primitive.NilObjectID, false
	}
	return course, uid, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /courses/{courseID}/chat                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeChat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	course, uid, ok := h.loadCourseForMember(w, r, ctx)
	if !ok {
		return
	}

	history, err := h.Messages.ListByCourse(ctx, course.ID, historyLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load chat history failed", err, "Could not load the chat.", "/courses/"+course.ID.Hex())
		return
	}

	templates.Render(w, r, "chat", pageData{
		BaseVM:   viewdata.NewBaseVM(r, course.Name, "/courses/"+course.ID.Hex()),
		Course:   course,
		Messages: history,
		MyID:     uid.Hex(),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /courses/{courseID}/chat                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	course, uid, ok := h.loadCourseForMember(w, r, ctx)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/courses/"+course.ID.Hex()+"/chat")
		return
	}
	contents := htmlsanitize.Text(r.FormValue("contents"))
	if contents == "" || len(contents) > models.MaxMessageLength {
		http.Redirect(w, r, "/courses/"+course.ID.Hex()+"/chat", http.StatusSeeOther)
		return
	}

	_, name, _, _ := authz.UserCtx(r)
	var photoURL string
	if su, ok := auth.CurrentUser(r); ok {
		photoURL = su.PhotoURL
	}
	if _, err := h.Messages.Append(ctx, models.Message{
		CourseID:     course.ID,
		UserID:       uid,
		UserName:     name,
		UserPhotoURL: photoURL,
		Contents:     contents,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "append chat message failed", err, "Could not send your message.", "/courses/"+course.ID.Hex()+"/chat")
		return
	}

	http.Redirect(w, r, "/courses/"+course.ID.Hex()+"/chat", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /courses/{courseID}/chat/stream                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeStream pushes new chat messages over server-sent events. The
// connection stays open until the client disconnects or the upstream
// change stream closes.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	course, _, ok := h.loadCourseForMember(w, r, ctx)
	cancel()
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.ErrLog.LogServerError(w, r, "streaming unsupported", nil, "Live chat is not available.", "/courses/"+course.ID.Hex()+"/chat")
		return
	}

	sub, err := h.Hub.Subscribe(r.Context(), course.ID.Hex())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "chat stream subscribe failed", err, "Live chat is not available.", "/courses/"+course.ID.Hex()+"/chat")
		return
	}
	defer sub.Close()

	// Subscribe before reading history so nothing posted in between is
	// lost; clients drop the overlap by message id.
	histCtx, histCancel := context.WithTimeout(r.Context(), timeouts.Short())
	history, err := h.Messages.ListByCourse(histCtx, course.ID, historyLimit)
	histCancel()
	if err != nil {
		h.ErrLog.LogServerError(w, r, "chat stream history failed", err, "Live chat is not available.", "/courses/"+course.ID.Hex()+"/chat")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for _, msg := range history {
		if err := writeEvent(w, msg); err != nil {
			return
		}
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-sub.Events():
			if !open {
				if err := sub.Err(); err != nil {
					h.Log.Warn("chat stream closed", zap.Error(err))
				}
				return
			}
			if err := writeEvent(w, msg); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
