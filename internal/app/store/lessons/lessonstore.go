package lessonstore

import (
	"context"
	"time"

	"github.com/dalemusser/langis/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("lessons")}
}

// Create inserts a new lesson.
func (s *Store) Create(ctx context.Context, l models.Lesson) (models.Lesson, error) {
	l.ID = primitive.NewObjectID()
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.Lesson{}, err
	}
	return l, nil
}

// GetByID loads a lesson by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Lesson, error) {
	var l models.Lesson
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// ListByCourse returns a course's lessons in ascending start-time order.
func (s *Store) ListByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Lesson, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"course_id": courseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Lesson
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the schedulable lesson fields. Attachment fields change
// only through SetFile / ClearFile.
type Update struct {
	Start           time.Time
	DurationMinutes int
	Classroom       string
	Description     string
}

// UpdateInfo applies the editable lesson fields. The course_id filter
// keeps a lesson from being edited through another course's URLs.
func (s *Store) UpdateInfo(ctx context.Context, courseID, lessonID primitive.ObjectID, upd Update) error {
	set := bson.M{
		"start":            upd.Start,
		"duration_minutes": upd.DurationMinutes,
		"classroom":        upd.Classroom,
		"description":      upd.Description,
		"updated_at":       time.Now(),
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": lessonID, "course_id": courseID},
		bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a lesson. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, courseID, lessonID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": lessonID, "course_id": courseID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// SetFile records an uploaded lesson attachment.
func (s *Store) SetFile(ctx context.Context, courseID, lessonID primitive.ObjectID, path, name string, size int64, url string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": lessonID, "course_id": courseID},
		bson.M{"$set": bson.M{
			"file_path":  path,
			"file_name":  name,
			"file_size":  size,
			"file_url":   url,
			"updated_at": time.Now(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ClearFile removes the attachment fields from a lesson. The caller is
// responsible for deleting the blob itself.
func (s *Store) ClearFile(ctx context.Context, courseID, lessonID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": lessonID, "course_id": courseID},
		bson.M{
			"$unset": bson.M{"file_path": "", "file_name": "", "file_size": "", "file_url": ""},
			"$set":   bson.M{"updated_at": time.Now()},
		})
	return err
}

// DeleteByCourse removes all lessons for a course, used when the course
// itself is deleted.
func (s *Store) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
