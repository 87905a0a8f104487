package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/langis/internal/app/features/errors"
	"github.com/dalemusser/langis/internal/app/features/login"
	"github.com/dalemusser/langis/internal/app/system/auth"
	"github.com/dalemusser/langis/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*login.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	handler := login.NewHandler(db, sessionMgr, errLog, false, false, logger)
	fixtures := testutil.NewFixtures(t, db)
	return handler, fixtures
}

func postLogin(handler *login.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.HandleLoginPost(rec, req)
	return rec
}

func TestHandleLoginPost_Success(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreatePasswordUser(ctx, "student@example.com", "secret1password")

	rec := postLogin(handler, url.Values{
		"email":    {"student@example.com"},
		"password": {"secret1password"},
	})

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/courses" {
		t.Errorf("Location: got %q, want %q", location, "/courses")
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected session cookie to be set")
	}
}

func TestHandleLoginPost_ReturnURL(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreatePasswordUser(ctx, "student@example.com", "secret1password")

	rec := postLogin(handler, url.Values{
		"email":    {"student@example.com"},
		"password": {"secret1password"},
		"return":   {"/courses/abc123"},
	})

	if location := rec.Header().Get("Location"); location != "/courses/abc123" {
		t.Errorf("Location: got %q, want %q", location, "/courses/abc123")
	}
}

func TestHandleLoginPost_RejectsExternalReturnURL(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreatePasswordUser(ctx, "student@example.com", "secret1password")

	for _, ret := range []string{"https://evil.example", "//evil.example", "evil"} {
		rec := postLogin(handler, url.Values{
			"email":    {"student@example.com"},
			"password": {"secret1password"},
			"return":   {ret},
		})
		if location := rec.Header().Get("Location"); location != "/courses" {
			t.Errorf("return=%q redirected to %q, want /courses", ret, location)
		}
	}
}

func TestHandleLoginPost_EmailIsCaseInsensitive(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreatePasswordUser(ctx, "student@example.com", "secret1password")

	rec := postLogin(handler, url.Values{
		"email":    {"STUDENT@Example.Com"},
		"password": {"secret1password"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected redirect, got %d", rec.Code)
	}
}
