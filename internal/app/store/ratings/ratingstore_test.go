package ratingstore_test

import (
	"math"
	"testing"

	ratingstore "github.com/dalemusser/langis/internal/app/store/ratings"
	"github.com/dalemusser/langis/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Upsert_ReplacesValue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := ratingstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := fixtures.CreateTeacher(ctx)
	course := fixtures.CreateCourse(ctx, "Spanish A2", teacher, 5)
	student := fixtures.CreateStudent(ctx, "s1@test.com")

	if err := store.Upsert(ctx, course.ID, student.ID, 3.5); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, course.ID, student.ID, 5); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	got, err := store.Get(ctx, course.ID, student.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Value != 5 {
		t.Errorf("Value = %v, want 5 (replaced, not added)", got.Value)
	}

	_, count, err := store.Average(ctx, course.ID)
	if err != nil {
		t.Fatalf("Average failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 rating per (course,user)", count)
	}
}

func TestStore_Upsert_RejectsOffGridValues(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := ratingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	courseID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	for _, v := range []float64{-0.5, 5.5, 3.2} {
		if err := store.Upsert(ctx, courseID, userID, v); err != ratingstore.ErrInvalidValue {
			t.Errorf("Upsert(%v) err = %v, want ErrInvalidValue", v, err)
		}
	}
}

func TestStore_Average(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := ratingstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := fixtures.CreateTeacher(ctx)
	course := fixtures.CreateCourse(ctx, "Spanish A2", teacher, 5)

	// No ratings yet.
	_, count, err := store.Average(ctx, course.ID)
	if err != nil {
		t.Fatalf("Average failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}

	for i, v := range []float64{3, 4, 5} {
		s := fixtures.CreateStudent(ctx, "r"+string(rune('a'+i))+"@test.com")
		if err := store.Upsert(ctx, course.ID, s.ID, v); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	avg, count, err := store.Average(ctx, course.ID)
	if err != nil {
		t.Fatalf("Average failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	if math.Abs(avg-4.0) > 1e-9 {
		t.Errorf("avg = %v, want 4.0", avg)
	}
}

func TestStore_Get_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := ratingstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := fixtures.CreateTeacher(ctx)
	course := fixtures.CreateCourse(ctx, "Spanish A2", teacher, 5)
	student := fixtures.CreateStudent(ctx, "s1@test.com")

	if _, err := store.Get(ctx, course.ID, student.ID); err != mongo.ErrNoDocuments {
		t.Fatalf("Get err = %v, want ErrNoDocuments", err)
	}
}
