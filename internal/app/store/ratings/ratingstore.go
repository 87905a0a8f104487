package ratingstore

import (
	"context"
	"errors"
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
	return &Store{c: db.Collection("course_ratings")}
}

// ErrInvalidValue is returned for a rating outside 0–5 or off the
// half-star grid.
var ErrInvalidValue = errors.New("rating must be between 0 and 5 in half-star steps")

// Upsert writes a user's rating for a course, replacing any previous
// value. The unique (course_id, user_id) index backs the upsert.
func (s *Store) Upsert(ctx context.Context, courseID, userID primitive.ObjectID, value float64) error {
	if !models.ValidRatingValue(value) {
		return ErrInvalidValue
	}
	now := time.Now()
	filter := bson.M{"course_id": courseID, "user_id": userID}
	update := bson.M{
		"$set": bson.M{"value": value, "updated_at": now},
		"$setOnInsert": bson.M{
			"course_id":  courseID,
			"user_id":    userID,
			"created_at": now,
		},
	}
	_, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// Get returns a user's rating for a course. Returns mongo.ErrNoDocuments
// if the user has not rated the course.
func (s *Store) Get(ctx context.Context, courseID, userID primitive.ObjectID) (*models.CourseRating, error) {
	var r models.CourseRating
	err := s.c.FindOne(ctx, bson.M{"course_id": courseID, "user_id": userID}).Decode(&r)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Average recomputes a course's rating aggregate with a $avg pipeline.
// count=0 means the course has no ratings.
func (s *Store) Average(ctx context.Context, courseID primitive.ObjectID) (avg float64, count int64, err error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"course_id": courseID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$value"},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cur.Close(ctx)

	var row struct {
		Avg   float64 `bson:"avg"`
		Count int64   `bson:"count"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return 0, 0, err
		}
		return row.Avg, row.Count, nil
	}
	return 0, 0, cur.Err()
}

// DeleteByCourse removes all ratings for a course, used when the course
// itself is deleted.
func (s *Store) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
