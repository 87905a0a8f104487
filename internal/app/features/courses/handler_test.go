package courses_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/langis/internal/app/features/errors"
	"github.com/dalemusser/langis/internal/app/features/courses"
	coursestore "github.com/dalemusser/langis/internal/app/store/courses"
	lessonstore "github.com/dalemusser/langis/internal/app/store/lessons"
	messagestore "github.com/dalemusser/langis/internal/app/store/messages"
	ratingstore "github.com/dalemusser/langis/internal/app/store/ratings"
	"github.com/dalemusser/langis/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*courses.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return courses.NewHandler(db, nil, nil, uierrors.NewErrorLogger(logger), logger), testutil.NewFixtures(t, db)
}

func TestHandleEnroll_Succeeds(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := fx.CreateTeacher(ctx)
	course := fx.CreateCourse(ctx, "Spanish A2", teacher, 10)
	student := fx.CreateStudent(ctx, "ana@test.com")

	req := testutil.NewFormRequest("/courses/"+course.ID.Hex()+"/enroll", "", testutil.AsUser(student))
	req = testutil.WithChiURLParam(req, "courseID", course.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleEnroll(rec, req)

	rec.AssertRedirect(t, "/courses/"+course.ID.Hex()+"?flash=enrolled")

	got, err := coursestore.New(fx.DB()).GetByID(ctx, course.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.HasStudent(student.ID) {
		t.Error("student should be on the roster after enrolling")
	}
}

func TestHandleEnroll_FullCourse(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := fx.CreateTeacher(ctx)
	course := fx.CreateCourse(ctx, "Tiny course", teacher, 1)

	first := fx.CreateStudent(ctx, "first@test.com")
	if err := coursestore.New(fx.DB()).Enroll(ctx, course.ID, first.ID); err != nil {
		t.Fatalf("seed enrollment failed: %v", err)
	}

	late := fx.CreateStudent(ctx, "late@test.com")
	req := testutil.NewFormRequest("/courses/"+course.ID.Hex()+"/enroll", "", testutil.AsUser(late))
	req = testutil.WithChiURLParam(req, "courseID", course.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleEnroll(rec, req)

	rec.AssertRedirect(t, "/courses/"+course.ID.Hex()+"?error=full")
}

func TestHandleEnroll_Twice(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := fx.CreateTeacher(ctx)
	course := fx.CreateCourse(ctx, "Spanish A2", teacher, 10)
	student := fx.CreateStudent(ctx, "ana@test.com")

	for i, want := range []string{"?flash=enrolled", "?error=already_enrolled"} {
		req := testutil.NewFormRequest("/courses/"+course.ID.Hex()+"/enroll", "", testutil.AsUser(student))
		req = testutil.WithChiURLParam(req, "courseID", course.ID.Hex())
		rec := testutil.NewRecorder()
		h.HandleEnroll(rec, req)
		if loc := rec.Header().Get("Location"); !strings.HasSuffix(loc, want) {
			t.Errorf("attempt %d: Location = %q, want suffix %q", i+1, loc, want)
		}
	}
}

func TestHandleCancel(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := fx.CreateTeacher(ctx)
	course := fx.CreateCourse(ctx, "Spanish A2", teacher, 10)
	student := fx.CreateStudent(ctx, "ana@test.com")

	store := coursestore.New(fx.DB())
	if err := store.Enroll(ctx, course.ID, student.ID); err != nil {
		t.Fatalf("seed enrollment failed: %v", err)
	}

	req := testutil.NewFormRequest("/courses/"+course.ID.Hex()+"/cancel", "", testutil.AsUser(student))
	req = testutil.WithChiURLParam(req, "courseID", course.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleCancel(rec, req)
	rec.AssertRedirect(t, "/courses/"+course.ID.Hex()+"?flash=cancelled")

	got, err := store.GetByID(ctx, course.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.HasStudent(student.ID) {
		t.Error("student should be off the roster after cancelling")
	}

	// Cancelling again reports the state, not success.
	req = testutil.NewFormRequest("/courses/"+course.ID.Hex()+"/cancel", "", testutil.AsUser(student))
	req = testutil.WithChiURLParam(req, "courseID", course.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleCancel(rec, req)
	rec.AssertRedirect(t, "/courses/"+course.ID.Hex()+"?error=not_enrolled")
}

func TestHandleRate_WritesAggregate(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := fx.CreateTeacher(ctx)
	course := fx.CreateCourse(ctx, "Spanish A2", teacher, 10)
	student := fx.CreateStudent(ctx, "ana@test.com")

	store := coursestore.New(fx.DB())
	if err := store.Enroll(ctx, course.ID, student.ID); err != nil {
		t.Fatalf("seed enrollment failed: %v", err)
	}

	form := url.Values{"value": {"4.5"}}
	req := testutil.NewFormRequest("/courses/"+course.ID.Hex()+"/rate", form.Encode(), testutil.AsUser(student))
	req = testutil.WithChiURLParam(req, "courseID", course.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleRate(rec, req)
	rec.AssertRedirect(t, "/courses/"+course.ID.Hex()+"?flash=saved")

	got, err := store.GetByID(ctx, course.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.AverageRating == nil || *got.AverageRating != 4.5 {
		t.Errorf("AverageRating = %v, want 4.5", got.AverageRating)
	}
	if got.RatingCount != 1 {
		t.Errorf("RatingCount = %d, want 1", got.RatingCount)
	}
}

func TestHandleRate_RejectsOffStepValue(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := fx.CreateTeacher(ctx)
	course := fx.CreateCourse(ctx, "Spanish A2", teacher, 10)
	student := fx.CreateStudent(ctx, "ana@test.com")

	store := coursestore.New(fx.DB())
	if err := store.Enroll(ctx, course.ID, student.ID); err != nil {
		t.Fatalf("seed enrollment failed: %v", err)
	}

	form := url.Values{"value": {"4.3"}}
	req := testutil.NewFormRequest("/courses/"+course.ID.Hex()+"/rate", form.Encode(), testutil.AsUser(student))
	req = testutil.WithChiURLParam(req, "courseID", course.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleRate(rec, req)
	rec.AssertRedirect(t, "/courses/"+course.ID.Hex()+"?error=bad_rating")

	if _, count, _ := ratingstore.New(fx.DB()).Average(ctx, course.ID); count != 0 {
		t.Errorf("rating count = %d, want 0", count)
	}
}

func TestHandleDelete_CascadesCourseData(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := fx.CreateTeacher(ctx)
	course := fx.CreateCourse(ctx, "Doomed course", teacher, 10)
	student := fx.CreateStudent(ctx, "ana@test.com")
	fx.CreateLesson(ctx, course.ID, time.Now().Add(24*time.Hour))
	fx.CreateMessage(ctx, course.ID, student, "hola")
	if err := ratingstore.New(fx.DB()).Upsert(ctx, course.ID, student.ID, 4); err != nil {
		t.Fatalf("seed rating failed: %v", err)
	}

	req := testutil.NewFormRequest("/courses/"+course.ID.Hex()+"/delete", "", testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "courseID", course.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleDelete(rec, req)
	rec.AssertRedirect(t, "/courses?flash=deleted")

	if _, err := coursestore.New(fx.DB()).GetByID(ctx, course.ID); err != mongo.ErrNoDocuments {
		t.Errorf("course should be gone, got err=%v", err)
	}
	if lessons, _ := lessonstore.New(fx.DB()).ListByCourse(ctx, course.ID); len(lessons) != 0 {
		t.Errorf("lessons should be gone, got %d", len(lessons))
	}
	if msgs, _ := messagestore.New(fx.DB()).ListByCourse(ctx, course.ID, 10); len(msgs) != 0 {
		t.Errorf("messages should be gone, got %d", len(msgs))
	}
	if _, count, _ := ratingstore.New(fx.DB()).Average(ctx, course.ID); count != 0 {
		t.Errorf("ratings should be gone, got count=%d", count)
	}
}
