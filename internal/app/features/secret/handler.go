// internal/app/features/secret/handler.go
package secret

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/langis/internal/app/features/errors"
	"github.com/dalemusser/langis/internal/app/system/authz"
	"github.com/dalemusser/langis/internal/app/system/timeouts"
	"github.com/dalemusser/langis/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the overview page for signed-in users.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog}
}

type pageData struct {
	viewdata.BaseVM
	Users    int64
	Courses  int64
	Lessons  int64
	Messages int64
	Ratings  int64
	IsAdmin  bool
}

// ServeSecret renders counts across the main collections. The route
// middleware requires a signed-in profile; any role may look.
func (h *Handler) ServeSecret(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Overview", "/courses"),
		IsAdmin: authz.IsAdmin(r),
	}
	for _, c := range []struct {
		name string
		dst  *int64
	}{
		{"users", &data.Users},
		{"courses", &data.Courses},
		{"lessons", &data.Lessons},
		{"messages", &data.Messages},
		{"course_ratings", &data.Ratings},
	} {
		n, err := h.DB.Collection(c.name).CountDocuments(ctx, bson.M{})
		if err != nil {
			h.ErrLog.LogServerError(w, r, "count "+c.name+" failed", err, "Could not load the overview.", "/courses")
			return
		}
		*c.dst = n
	}

	templates.Render(w, r, "secret", data)
}
