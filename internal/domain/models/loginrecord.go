// internal/domain/models/loginrecord.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginRecord is one successful sign-in, kept for account history.
type LoginRecord struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	Method    string    `bson:"method" json:"method"` // password | google | github
	IP        string    `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent string    `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	At        time.Time `bson:"at" json:"at"`
}
