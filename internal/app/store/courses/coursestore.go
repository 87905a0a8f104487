package coursestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/langis/internal/app/system/normalize"
	"github.com/dalemusser/langis/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("courses")}
}

var (
	// ErrCourseFull is returned by Enroll when the roster is at capacity.
	ErrCourseFull = errors.New("course is full")
	// ErrAlreadyEnrolled is returned by Enroll when the student is already on the roster.
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	// ErrNotEnrolled is returned by Cancel when the student is not on the roster.
	ErrNotEnrolled = errors.New("not enrolled in this course")
)

// Create inserts a new course with an empty roster.
func (s *Store) Create(ctx context.Context, c models.Course) (models.Course, error) {
	c.ID = primitive.NewObjectID()
	c.Name = normalize.Space(c.Name)
	c.NameCI = text.Fold(c.Name)
	if c.Students == nil {
		c.Students = []primitive.ObjectID{}
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Course{}, err
	}
	return c, nil
}

// GetByID loads a course by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	var c models.Course
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all courses ordered by folded name.
func (s *Store) List(ctx context.Context) ([]models.Course, error) {
	return s.find(ctx, bson.M{})
}

// ListByStudent returns the courses a student is enrolled in.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Course, error) {
	return s.find(ctx, bson.M{"students": studentID})
}

// ListByTeacher returns the courses a teacher teaches.
func (s *Store) ListByTeacher(ctx context.Context, teacherID primitive.ObjectID) ([]models.Course, error) {
	return s.find(ctx, bson.M{"teacher.id": teacherID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Course
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// InfoUpdate holds the course fields an admin can edit. The roster and
// rating aggregates are never written through this path.
type InfoUpdate struct {
	Name        string
	Description string
	Language    string
	Level       string
	Price       int
	Capacity    int
	Teacher     models.CourseTeacher
}

// UpdateInfo applies the admin-editable course fields.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, upd InfoUpdate) error {
	name := normalize.Space(upd.Name)
	set := bson.M{
		"name":        name,
		"name_ci":     text.Fold(name),
		"description": upd.Description,
		"language":    upd.Language,
		"level":       upd.Level,
		"price":       upd.Price,
		"capacity":    upd.Capacity,
		"teacher":     upd.Teacher,
		"updated_at":  time.Now(),
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a course. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Enroll adds a student to the roster as a single conditional update:
// the filter only matches when the student is absent AND the roster is
// below capacity, so concurrent enrollments can never exceed capacity
// or duplicate an id. When the update matches nothing, a follow-up read
// disambiguates between "full" and "already enrolled".
func (s *Store) Enroll(ctx context.Context, courseID, studentID primitive.ObjectID) error {
	filter := bson.M{
		"_id":      courseID,
		"students": bson.M{"$ne": studentID},
		"$expr": bson.M{
			"$lt": bson.A{bson.M{"$size": "$students"}, "$capacity"},
		},
	}
	update := bson.M{
		"$addToSet": bson.M{"students": studentID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 1 {
		return nil
	}

	c, err := s.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if c.HasStudent(studentID) {
		return ErrAlreadyEnrolled
	}
	if c.IsFull() {
		return ErrCourseFull
	}
	// Neither condition holds on re-read; the roster changed between
	// the update and the read. Treat as full so the caller re-renders.
	return ErrCourseFull
}

// Cancel removes a student from the roster with a $pull, matching only
// when the student is present.
func (s *Store) Cancel(ctx context.Context, courseID, studentID primitive.ObjectID) error {
	filter := bson.M{"_id": courseID, "students": studentID}
	update := bson.M{
		"$pull": bson.M{"students": studentID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if err := s.c.FindOne(ctx, bson.M{"_id": courseID}).Err(); err != nil {
			return err
		}
		return ErrNotEnrolled
	}
	return nil
}

// SetAverageRating rewrites the denormalized rating aggregate on a course.
func (s *Store) SetAverageRating(ctx context.Context, courseID primitive.ObjectID, avg float64, count int64) error {
	set := bson.M{
		"average_rating": avg,
		"rating_count":   count,
		"updated_at":     time.Now(),
	}
	if count == 0 {
		_, err := s.c.UpdateOne(ctx, bson.M{"_id": courseID}, bson.M{
			"$unset": bson.M{"average_rating": "", "rating_count": ""},
			"$set":   bson.M{"updated_at": time.Now()},
		})
		return err
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": courseID}, bson.M{"$set": set})
	return err
}
