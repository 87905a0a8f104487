// internal/domain/models/course.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourseTeacher is the teacher snapshot embedded on a course. It is
// denormalized at course creation so course cards render without a join.
type CourseTeacher struct {
	ID        primitive.ObjectID `bson:"id" json:"id"`
	FirstName string             `bson:"first_name" json:"first_name"`
	LastName  string             `bson:"last_name" json:"last_name"`
	PhotoURL  string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
}

// Course is a language-course offering.
//
// Invariant: Students holds no duplicates and len(Students) <= Capacity.
// Both are enforced server-side by the course store's conditional updates,
// never by writing back a client-held copy of the list.
type Course struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Language    string             `bson:"language" json:"language"`
	Level       string             `bson:"level" json:"level"` // CEFR level, e.g. "A2"
	Price       int                `bson:"price" json:"price"`
	Capacity    int                `bson:"capacity" json:"capacity"`

	Students []primitive.ObjectID `bson:"students" json:"students"`
	Teacher  CourseTeacher        `bson:"teacher" json:"teacher"`

	// Redundant rating aggregate, rewritten after every rating upsert.
	AverageRating *float64 `bson:"average_rating,omitempty" json:"average_rating,omitempty"`
	RatingCount   int64    `bson:"rating_count,omitempty" json:"rating_count,omitempty"`

	CreatedByID   primitive.ObjectID `bson:"created_by_id,omitempty" json:"created_by_id,omitempty"`
	CreatedByName string             `bson:"created_by_name,omitempty" json:"created_by_name,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// RatingDisplay returns the average rating rounded to one decimal, or 0
// when the course has no ratings.
func (c *Course) RatingDisplay() float64 {
	if c.AverageRating == nil {
		return 0
	}
	return *c.AverageRating
}

// IsFull reports whether the roster has reached capacity.
func (c *Course) IsFull() bool {
	return len(c.Students) >= c.Capacity
}

// HasStudent reports whether uid is on the roster.
func (c *Course) HasStudent(uid primitive.ObjectID) bool {
	for _, s := range c.Students {
		if s == uid {
			return true
		}
	}
	return false
}

// AddStudent returns the roster after enrolling uid, preserving order.
// It reports whether the roster changed: enrolling a present id or
// enrolling past capacity leaves the roster unchanged.
//
// The same semantics run server-side as a single conditional $addToSet;
// this helper exists for places that already hold a course document and
// for exercising the roster invariants directly.
func AddStudent(students []primitive.ObjectID, uid primitive.ObjectID, capacity int) ([]primitive.ObjectID, bool) {
	for _, s := range students {
		if s == uid {
			return students, false
		}
	}
	if len(students) >= capacity {
		return students, false
	}
	return append(students, uid), true
}

// RemoveStudent returns the roster after cancelling uid's enrollment,
// preserving the order of the remaining ids. Removing an absent id is a
// no-op.
func RemoveStudent(students []primitive.ObjectID, uid primitive.ObjectID) ([]primitive.ObjectID, bool) {
	for i, s := range students {
		if s == uid {
			out := make([]primitive.ObjectID, 0, len(students)-1)
			out = append(out, students[:i]...)
			out = append(out, students[i+1:]...)
			return out, true
		}
	}
	return students, false
}
