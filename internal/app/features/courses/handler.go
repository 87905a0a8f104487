// internal/app/features/courses/handler.go
package courses

import (
	"net/http"

	uierrors "github.com/dalemusser/langis/internal/app/features/errors"
	coursestore "github.com/dalemusser/langis/internal/app/store/courses"
	lessonstore "github.com/dalemusser/langis/internal/app/store/lessons"
	messagestore "github.com/dalemusser/langis/internal/app/store/messages"
	ratingstore "github.com/dalemusser/langis/internal/app/store/ratings"
	userstore "github.com/dalemusser/langis/internal/app/store/users"
	"github.com/dalemusser/langis/internal/app/system/auth"
	"github.com/dalemusser/langis/internal/app/system/authz"
	"github.com/dalemusser/langis/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves course browsing, enrollment, ratings, and the admin
// course/lesson management pages.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	Storage    storage.Store

	Courses  *coursestore.Store
	Lessons  *lessonstore.Store
	Ratings  *ratingstore.Store
	Messages *messagestore.Store
	Users    *userstore.Store
}

// NewHandler creates a new courses handler.
func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, store storage.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sessionMgr,
		Storage:    store,
		Courses:    coursestore.New(db),
		Lessons:    lessonstore.New(db),
		Ratings:    ratingstore.New(db),
		Messages:   messagestore.New(db),
		Users:      userstore.New(db),
	}
}

// courseIDParam parses the {courseID} URL parameter. On a malformed id it
// writes a not-found page and returns ok=false.
func (h *Handler) courseIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "courseID"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "malformed course id", err, "Course not found.", "/courses")
		return primitive.NilObjectID, false
	}
	return id, true
}

// canManage reports whether the current user may manage a course's
// lessons: admins always, teachers only for their own courses.
func canManage(r *http.Request, c *models.Course) bool {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	switch role {
	case "admin":
		return true
	case "teacher":
		return c.Teacher.ID == uid
	}
	return false
}
