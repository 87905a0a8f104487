package messagestore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/dalemusser/langis/internal/app/system/livewatch"
	"github.com/dalemusser/langis/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("messages")}
}

// Append inserts a chat message. If CreatedAt is zero, it's set to time.Now().UTC().
func (s *Store) Append(ctx context.Context, m models.Message) (models.Message, error) {
	m.ID = primitive.NewObjectID()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// ListByCourse returns a course's messages oldest-first, capped at limit
// (0 means no cap).
func (s *Store) ListByCourse(ctx context.Context, courseID primitive.ObjectID, limit int64) ([]models.Message, error) {
	// _id breaks ties between messages inserted in the same millisecond.
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	if limit > 0 {
		// Take the newest N, then flip for display order.
		opts = options.Find().
			SetSort(bson.D{
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			}).
			SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"course_id": courseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if limit > 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

// Watch opens a change stream over a course's new messages and wraps it
// in a Subscription the caller must Close. Requires a replica-set Mongo.
func (s *Store) Watch(ctx context.Context, courseID primitive.ObjectID, log *zap.Logger) (*livewatch.Subscription[models.Message], error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType":          "insert",
			"fullDocument.course_id": courseID,
		}}},
	}
	cs, err := s.c.Watch(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	decode := func(cs *mongo.ChangeStream) (models.Message, bool) {
		var ev struct {
			FullDocument models.Message `bson:"fullDocument"`
		}
		if err := cs.Decode(&ev); err != nil {
			log.Warn("chat change decode", zap.Error(err))
			return models.Message{}, false
		}
		return ev.FullDocument, true
	}
	return livewatch.WatchChangeStream(ctx, cs, decode, log), nil
}

// DeleteByCourse removes all messages for a course, used when the course
// itself is deleted.
func (s *Store) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
