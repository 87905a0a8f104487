// internal/domain/models/lesson.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lesson belongs to a course. Lessons are managed by the course's teacher
// (or an admin) and listed in ascending start-time order.
type Lesson struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID primitive.ObjectID `bson:"course_id" json:"course_id"`

	Start           time.Time `bson:"start" json:"start"`
	DurationMinutes int       `bson:"duration_minutes" json:"duration_minutes"`
	Classroom       string    `bson:"classroom" json:"classroom"`
	Description     string    `bson:"description,omitempty" json:"description,omitempty"`

	// Optional attachment (handout, worksheet) held in blob storage.
	FilePath string `bson:"file_path,omitempty" json:"file_path,omitempty"`
	FileName string `bson:"file_name,omitempty" json:"file_name,omitempty"`
	FileSize int64  `bson:"file_size,omitempty" json:"file_size,omitempty"`
	FileURL  string `bson:"file_url,omitempty" json:"file_url,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasFile reports whether the lesson has an uploaded attachment.
func (l *Lesson) HasFile() bool { return l.FilePath != "" }

// End returns the lesson's end time.
func (l *Lesson) End() time.Time {
	return l.Start.Add(time.Duration(l.DurationMinutes) * time.Minute)
}
