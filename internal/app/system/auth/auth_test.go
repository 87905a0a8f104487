package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/langis/internal/app/system/auth"
	"go.uber.org/zap"
)

type staticFetcher struct {
	user *auth.SessionUser
}

func (f staticFetcher) Fetch(ctx context.Context, userID string) (*auth.SessionUser, error) {
	if f.user != nil && f.user.ID == userID {
		return f.user, nil
	}
	return nil, nil
}

func newManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	mgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return mgr
}

func TestSignInThenLoadSessionUser(t *testing.T) {
	mgr := newManager(t)
	user := &auth.SessionUser{ID: "abc123", Name: "Jana Nováková", Role: "student"}
	mgr.SetUserFetcher(staticFetcher{user: user})

	// Sign in and capture the cookie.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	if err := mgr.SignIn(rec, req, user.ID); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	// Replay the cookie through the middleware.
	var got *auth.SessionUser
	h := mgr.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req2 := httptest.NewRequest("GET", "/courses", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req2)

	if got == nil {
		t.Fatal("expected user in context after sign-in")
	}
	if got.Name != "Jana Nováková" {
		t.Errorf("Name: got %q", got.Name)
	}
}

func TestSignOutClearsSession(t *testing.T) {
	mgr := newManager(t)
	user := &auth.SessionUser{ID: "abc123", Role: "student"}
	mgr.SetUserFetcher(staticFetcher{user: user})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	if err := mgr.SignIn(rec, req, user.ID); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	cookies := rec.Result().Cookies()

	// Sign out with the session cookie attached.
	req2 := httptest.NewRequest("POST", "/logout", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	if err := mgr.SignOut(rec2, req2); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	// A request carrying the cleared cookie must be unauthenticated.
	var found bool
	h := mgr.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentUser(r)
	}))
	req3 := httptest.NewRequest("GET", "/courses", nil)
	for _, c := range rec2.Result().Cookies() {
		req3.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req3)

	if found {
		t.Error("expected no user in context after sign-out")
	}
}

func TestRequireSignedIn_API(t *testing.T) {
	mgr := newManager(t)

	h := mgr.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/my-courses", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireSignedIn_HTMLRedirects(t *testing.T) {
	mgr := newManager(t)

	h := mgr.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/my-courses", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/?return=%2Fmy-courses" {
		t.Errorf("Location: got %q", loc)
	}
}

func TestRequireSignedIn_AllowsAnyRole(t *testing.T) {
	mgr := newManager(t)

	h := mgr.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// A signed-in profile is enough; no role requirement.
	for _, role := range []string{"student", "teacher", "admin"} {
		req := auth.WithTestUser(
			httptest.NewRequest("GET", "/secret", nil),
			&auth.SessionUser{ID: "u1", Role: role},
		)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: got %d, want %d", role, rec.Code, http.StatusOK)
		}
	}
}

func TestRequireRole(t *testing.T) {
	mgr := newManager(t)

	h := mgr.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Wrong role → 403.
	req := auth.WithTestUser(
		httptest.NewRequest("POST", "/courses/new", nil),
		&auth.SessionUser{ID: "u1", Role: "student"},
	)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("student: got %d, want %d", rec.Code, http.StatusForbidden)
	}

	// Allowed role → 200. Role matching is case-insensitive.
	req2 := auth.WithTestUser(
		httptest.NewRequest("POST", "/courses/new", nil),
		&auth.SessionUser{ID: "u2", Role: "Admin"},
	)
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Errorf("admin: got %d, want %d", rec2.Code, http.StatusOK)
	}
}
