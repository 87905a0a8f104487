package mycourses_test

import (
	"testing"

	uierrors "github.com/dalemusser/langis/internal/app/features/errors"
	"github.com/dalemusser/langis/internal/app/features/mycourses"
	"github.com/dalemusser/langis/internal/testutil"
	"go.uber.org/zap"
)

func TestServeMyCourses_AnonymousRedirectsToLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := mycourses.NewHandler(db, uierrors.NewErrorLogger(logger), logger)

	req := testutil.NewRequest("GET", "/my-courses")
	rec := testutil.NewRecorder()
	h.ServeMyCourses(rec, req)

	rec.AssertRedirect(t, "/login?return=/my-courses")
}
