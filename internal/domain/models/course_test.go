package models_test

import (
	"testing"

	"github.com/dalemusser/langis/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddStudent_AppendsUntilCapacity(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	c := primitive.NewObjectID()

	students := []primitive.ObjectID{}

	students, changed := models.AddStudent(students, a, 2)
	if !changed {
		t.Fatal("first enroll should change the roster")
	}
	students, changed = models.AddStudent(students, b, 2)
	if !changed {
		t.Fatal("second enroll should change the roster")
	}
	if len(students) != 2 {
		t.Fatalf("roster length: got %d, want 2", len(students))
	}
	if students[0] != a || students[1] != b {
		t.Error("roster should preserve enrollment order")
	}

	// Third enroll for a new user is rejected; roster unchanged.
	after, changed := models.AddStudent(students, c, 2)
	if changed {
		t.Error("enroll past capacity should not change the roster")
	}
	if len(after) != 2 {
		t.Errorf("roster length after rejected enroll: got %d, want 2", len(after))
	}
}

func TestAddStudent_AlreadyEnrolledIsNoOp(t *testing.T) {
	a := primitive.NewObjectID()
	students := []primitive.ObjectID{a}

	after, changed := models.AddStudent(students, a, 5)
	if changed {
		t.Error("enrolling a present id should be a no-op")
	}
	if len(after) != 1 {
		t.Errorf("roster length: got %d, want 1", len(after))
	}
}

func TestRemoveStudent(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	c := primitive.NewObjectID()
	students := []primitive.ObjectID{a, b, c}

	after, changed := models.RemoveStudent(students, b)
	if !changed {
		t.Fatal("removing a present id should change the roster")
	}
	if len(after) != 2 || after[0] != a || after[1] != c {
		t.Errorf("roster after removal: got %v, want [%v %v]", after, a, c)
	}

	// Removing an absent id is a no-op.
	again, changed := models.RemoveStudent(after, b)
	if changed {
		t.Error("removing an absent id should be a no-op")
	}
	if len(again) != 2 {
		t.Errorf("roster length: got %d, want 2", len(again))
	}
}

func TestRosterInvariants_SequentialMix(t *testing.T) {
	ids := make([]primitive.ObjectID, 6)
	for i := range ids {
		ids[i] = primitive.NewObjectID()
	}

	const capacity = 4
	var students []primitive.ObjectID

	ops := []struct {
		enroll bool
		uid    primitive.ObjectID
	}{
		{true, ids[0]},
		{true, ids[1]},
		{true, ids[0]}, // duplicate
		{false, ids[2]}, // cancel absent
		{true, ids[2]},
		{true, ids[3]},
		{true, ids[4]}, // over capacity
		{false, ids[1]},
		{true, ids[5]},
	}

	for _, op := range ops {
		if op.enroll {
			students, _ = models.AddStudent(students, op.uid, capacity)
		} else {
			students, _ = models.RemoveStudent(students, op.uid)
		}

		if len(students) > capacity {
			t.Fatalf("capacity exceeded: %d > %d", len(students), capacity)
		}
		seen := map[primitive.ObjectID]bool{}
		for _, s := range students {
			if seen[s] {
				t.Fatalf("duplicate id %v on roster", s)
			}
			seen[s] = true
		}
	}
}

func TestCourse_IsFullAndHasStudent(t *testing.T) {
	a := primitive.NewObjectID()
	course := models.Course{
		Capacity: 1,
		Students: []primitive.ObjectID{a},
	}
	if !course.IsFull() {
		t.Error("course at capacity should report full")
	}
	if !course.HasStudent(a) {
		t.Error("HasStudent should find an enrolled id")
	}
	if course.HasStudent(primitive.NewObjectID()) {
		t.Error("HasStudent should not find an absent id")
	}
}
