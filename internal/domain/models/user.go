// internal/domain/models/user.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Authentication methods.
const (
	AuthPassword = "password"
	AuthGoogle   = "google"
	AuthGitHub   = "github"
)

// User is the application-level profile record. It is created at
// registration (or lazily after a first OAuth sign-in) and never deleted
// by the application.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName  string             `bson:"first_name" json:"first_name"`
	LastName   string             `bson:"last_name" json:"last_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`               // normalized, unique
	Role       string             `bson:"role" json:"role"`                 // admin | teacher | student

	// Authentication
	AuthMethod     string  `bson:"auth_method" json:"auth_method"` // password | google | github
	PasswordHash   *string `bson:"password_hash,omitempty" json:"-"`
	AuthProviderID string  `bson:"auth_provider_id,omitempty" json:"-"` // OAuth subject, keyed per provider

	// Photo: PhotoURL is the app-managed upload, ProviderPhotoURL comes
	// from the OAuth provider's profile.
	PhotoPath        string `bson:"photo_path,omitempty" json:"photo_path,omitempty"`
	PhotoURL         string `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	ProviderPhotoURL string `bson:"provider_photo_url,omitempty" json:"provider_photo_url,omitempty"`

	// Optional profile fields
	Age         *int    `bson:"age,omitempty" json:"age,omitempty"`
	Location    *string `bson:"location,omitempty" json:"location,omitempty"`
	Description *string `bson:"description,omitempty" json:"description,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FullName returns the display name ("First Last").
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayPhotoURL resolves the photo shown on profile and avatars:
// the explicitly uploaded photo wins, then the provider photo, then the
// given fallback.
func (u *User) DisplayPhotoURL(fallback string) string {
	if u.PhotoURL != "" {
		return u.PhotoURL
	}
	if u.ProviderPhotoURL != "" {
		return u.ProviderPhotoURL
	}
	return fallback
}

// IsTeacher reports whether the user can manage lessons for courses they
// teach.
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }

// IsAdmin reports whether the user can manage courses.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
