// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxMessageLength caps a chat message's length in bytes.
const MaxMessageLength = 2000

// Message is one chat message in a course group. Messages are append-only:
// they are never edited or deleted. The sender snapshot is denormalized so
// the chat renders without user lookups.
type Message struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID primitive.ObjectID `bson:"course_id" json:"course_id"`

	Contents string `bson:"contents" json:"contents"`

	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	UserName     string             `bson:"user_name" json:"user_name"`
	UserPhotoURL string             `bson:"user_photo_url,omitempty" json:"user_photo_url,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
