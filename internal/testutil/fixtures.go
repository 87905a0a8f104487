package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/langis/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, firstName, lastName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FirstName:  firstName,
		LastName:   lastName,
		FullNameCI: text.Fold(firstName + " " + lastName),
		Email:      email,
		Role:       role,
		AuthMethod: models.AuthPassword,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreatePasswordUser creates a student account that can sign in with
// the given password.
func (f *Fixtures) CreatePasswordUser(ctx context.Context, email, password string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	u := f.CreateUser(ctx, "Test", "Student", email, models.RoleStudent)

	hashStr := string(hash)
	if _, err := f.db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{"$set": bson.M{"password_hash": hashStr}}); err != nil {
		f.t.Fatalf("set password hash: %v", err)
	}
	u.PasswordHash = &hashStr
	return u
}

// CreateAdmin creates a test admin account.
func (f *Fixtures) CreateAdmin(ctx context.Context) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, "Test", "Admin", "admin@test.com", models.RoleAdmin)
}

// CreateTeacher creates a test teacher account.
func (f *Fixtures) CreateTeacher(ctx context.Context) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, "Test", "Teacher", "teacher@test.com", models.RoleTeacher)
}

// CreateStudent creates a test student account with the given email.
func (f *Fixtures) CreateStudent(ctx context.Context, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, "Test", "Student", email, models.RoleStudent)
}

// CreateCourse creates a test course taught by the given teacher.
func (f *Fixtures) CreateCourse(ctx context.Context, name string, teacher models.User, capacity int) models.Course {
	f.t.Helper()

	now := time.Now().UTC()
	course := models.Course{
		ID:       primitive.NewObjectID(),
		Name:     name,
		NameCI:   text.Fold(name),
		Language: "Spanish",
		Level:    "A2",
		Price:    3000,
		Capacity: capacity,
		Students: []primitive.ObjectID{},
		Teacher: models.CourseTeacher{
			ID:        teacher.ID,
			FirstName: teacher.FirstName,
			LastName:  teacher.LastName,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("courses").InsertOne(ctx, course); err != nil {
		f.t.Fatalf("failed to create test course: %v", err)
	}
	return course
}

// CreateLesson creates a test lesson on the given course.
func (f *Fixtures) CreateLesson(ctx context.Context, courseID primitive.ObjectID, start time.Time) models.Lesson {
	f.t.Helper()

	now := time.Now().UTC()
	lesson := models.Lesson{
		ID:              primitive.NewObjectID(),
		CourseID:        courseID,
		Start:           start,
		DurationMinutes: 90,
		Classroom:       "B-204",
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := f.db.Collection("lessons").InsertOne(ctx, lesson); err != nil {
		f.t.Fatalf("failed to create test lesson: %v", err)
	}
	return lesson
}

// CreateMessage appends a test chat message to the given course.
func (f *Fixtures) CreateMessage(ctx context.Context, courseID primitive.ObjectID, sender models.User, contents string) models.Message {
	f.t.Helper()

	msg := models.Message{
		ID:        primitive.NewObjectID(),
		CourseID:  courseID,
		Contents:  contents,
		UserID:    sender.ID,
		UserName:  sender.FullName(),
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("messages").InsertOne(ctx, msg); err != nil {
		f.t.Fatalf("failed to create test message: %v", err)
	}
	return msg
}
