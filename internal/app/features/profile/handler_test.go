package profile_test

import (
	"net/url"
	"testing"

	uierrors "github.com/dalemusser/langis/internal/app/features/errors"
	"github.com/dalemusser/langis/internal/app/features/profile"
	userstore "github.com/dalemusser/langis/internal/app/store/users"
	"github.com/dalemusser/langis/internal/app/system/authutil"
	"github.com/dalemusser/langis/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*profile.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return profile.NewHandler(db, nil, uierrors.NewErrorLogger(logger), logger), testutil.NewFixtures(t, db)
}

func TestServeProfile_AnonymousRedirectsToLogin(t *testing.T) {
	h, _ := newTestHandler(t)

	req := testutil.NewRequest("GET", "/profile")
	rec := testutil.NewRecorder()
	h.ServeProfile(rec, req)

	rec.AssertRedirect(t, "/login?return=/profile")
}

func TestHandleUpdate_SavesProfileFields(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fx.CreateStudent(ctx, "ana@test.com")

	form := url.Values{
		"first_name":  {"Anna"},
		"last_name":   {"Nová"},
		"age":         {"28"},
		"location":    {"Brno"},
		"description": {"Learning Spanish for travel."},
	}
	req := testutil.NewFormRequest("/profile", form.Encode(), testutil.AsUser(student))
	rec := testutil.NewRecorder()
	h.HandleUpdate(rec, req)

	rec.AssertRedirect(t, "/profile?flash=saved")

	got, err := userstore.New(fx.DB()).GetByID(ctx, student.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FirstName != "Anna" || got.LastName != "Nová" {
		t.Errorf("name = %q %q", got.FirstName, got.LastName)
	}
	if got.Age == nil || *got.Age != 28 {
		t.Errorf("Age = %v, want 28", got.Age)
	}
	if got.Location == nil || *got.Location != "Brno" {
		t.Errorf("Location = %v, want Brno", got.Location)
	}
	if got.Description == nil || *got.Description != "Learning Spanish for travel." {
		t.Errorf("Description = %v", got.Description)
	}
}

func TestHandlePasswordChange_Succeeds(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fx.CreatePasswordUser(ctx, "pw@test.com", "old-password-123")

	form := url.Values{
		"current_password":     {"old-password-123"},
		"new_password":         {"brand-new-pass-456"},
		"new_password_confirm": {"brand-new-pass-456"},
	}
	req := testutil.NewFormRequest("/profile/password", form.Encode(), testutil.AsUser(user))
	rec := testutil.NewRecorder()
	h.HandlePasswordChange(rec, req)

	rec.AssertRedirect(t, "/profile?flash=saved")

	got, err := userstore.New(fx.DB()).GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.PasswordHash == nil || !authutil.CheckPassword("brand-new-pass-456", *got.PasswordHash) {
		t.Error("new password should verify against the stored hash")
	}
	if got.PasswordHash != nil && authutil.CheckPassword("old-password-123", *got.PasswordHash) {
		t.Error("old password should no longer verify")
	}
}
