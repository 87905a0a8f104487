package authgithub_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/langis/internal/app/features/authgithub"
	"github.com/dalemusser/langis/internal/app/store/oauthstate"
	"github.com/dalemusser/langis/internal/app/system/auth"
	"github.com/dalemusser/langis/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, clientID, clientSecret string) *authgithub.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	return authgithub.NewHandler(
		db,
		sessionMgr,
		oauthstate.New(db),
		clientID,
		clientSecret,
		"http://localhost:8080",
		logger,
	)
}

func TestIsConfigured(t *testing.T) {
	if !newTestHandler(t, "test-client-id", "test-client-secret").IsConfigured() {
		t.Error("IsConfigured() should return true with client ID and secret")
	}
	if newTestHandler(t, "", "").IsConfigured() {
		t.Error("IsConfigured() should return false without client ID and secret")
	}
}

func TestServeLogin_NotConfigured(t *testing.T) {
	h := newTestHandler(t, "", "")

	req := httptest.NewRequest("GET", "/auth/github", nil)
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=github_not_configured") {
		t.Errorf("Location = %q", loc)
	}
}

func TestServeLogin_RedirectsToGitHubWithState(t *testing.T) {
	h := newTestHandler(t, "test-client-id", "test-client-secret")

	req := httptest.NewRequest("GET", "/auth/github?return=/courses/abc", nil)
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected %d, got %d", http.StatusTemporaryRedirect, rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "github.com/login/oauth/authorize") {
		t.Errorf("redirect target = %q, want GitHub authorize endpoint", loc)
	}
	if !strings.Contains(loc, "state=") {
		t.Errorf("redirect has no state parameter: %q", loc)
	}
}

func TestServeCallback_RejectsUnknownState(t *testing.T) {
	h := newTestHandler(t, "test-client-id", "test-client-secret")

	req := httptest.NewRequest("GET", "/auth/github/callback?state=never-issued&code=x", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=invalid_state") {
		t.Errorf("Location = %q, want invalid_state error", loc)
	}
}

func TestServeCallback_ProviderError(t *testing.T) {
	h := newTestHandler(t, "test-client-id", "test-client-secret")

	req := httptest.NewRequest("GET", "/auth/github/callback?error=access_denied", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=github_denied") {
		t.Errorf("Location = %q, want github_denied error", loc)
	}
}
