package messagestore_test

import (
	"testing"

	messagestore "github.com/dalemusser/langis/internal/app/store/messages"
	"github.com/dalemusser/langis/internal/domain/models"
	"github.com/dalemusser/langis/internal/testutil"
)

func TestStore_AppendAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := messagestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := fixtures.CreateTeacher(ctx)
	course := fixtures.CreateCourse(ctx, "Spanish A2", teacher, 5)
	student := fixtures.CreateStudent(ctx, "s1@test.com")

	msg, err := store.Append(ctx, models.Message{
		CourseID: course.ID,
		Contents: "Hola a todos",
		UserID:   student.ID,
		UserName: student.FullName(),
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if msg.ID.IsZero() || msg.CreatedAt.IsZero() {
		t.Fatalf("Append did not fill id/timestamp: %+v", msg)
	}

	got, err := store.ListByCourse(ctx, course.ID, 0)
	if err != nil {
		t.Fatalf("ListByCourse failed: %v", err)
	}
	if len(got) != 1 || got[0].Contents != "Hola a todos" {
		t.Fatalf("messages = %+v", got)
	}
}

func TestStore_ListByCourse_LimitKeepsNewestInDisplayOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := messagestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := fixtures.CreateTeacher(ctx)
	course := fixtures.CreateCourse(ctx, "Spanish A2", teacher, 5)
	student := fixtures.CreateStudent(ctx, "s1@test.com")

	for _, text := range []string{"one", "two", "three", "four"} {
		if _, err := store.Append(ctx, models.Message{
			CourseID: course.ID,
			Contents: text,
			UserID:   student.ID,
			UserName: student.FullName(),
		}); err != nil {
			t.Fatalf("Append %q: %v", text, err)
		}
	}

	got, err := store.ListByCourse(ctx, course.ID, 2)
	if err != nil {
		t.Fatalf("ListByCourse failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	// The two newest, oldest-first for display.
	if got[0].Contents != "three" || got[1].Contents != "four" {
		t.Fatalf("messages = [%q, %q]", got[0].Contents, got[1].Contents)
	}
}
