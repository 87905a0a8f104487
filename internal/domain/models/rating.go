// internal/domain/models/rating.go
package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating bounds: values run 0 to 5 in half-star steps.
const (
	RatingMin  = 0.0
	RatingMax  = 5.0
	RatingStep = 0.5
)

// CourseRating records one user's rating of one course. There is at most
// one rating per (course, user) pair; submitting again replaces the value.
type CourseRating struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID primitive.ObjectID `bson:"course_id" json:"course_id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`

	Value float64 `bson:"value" json:"value"` // 0–5 in 0.5 steps

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ValidRatingValue reports whether v is within bounds and on a half-star
// step.
func ValidRatingValue(v float64) bool {
	if v < RatingMin || v > RatingMax {
		return false
	}
	steps := v / RatingStep
	return steps == math.Trunc(steps)
}

// AverageRating returns the mean of the given rating values, or 0 with
// ok=false for an empty slice. The server-side recompute uses a Mongo
// $avg aggregation with the same semantics.
func AverageRating(values []float64) (avg float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}
