// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll creates the indexes the stores rely on. CreateMany is
// idempotent, so this runs on every startup.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	specs := []struct {
		coll    string
		indexes []mongo.IndexModel
	}{
		{
			coll: "users",
			indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "email", Value: 1}},
					Options: options.Index().SetUnique(true),
				},
				{
					// OAuth subject lookup; sparse so password users
					// don't collide on the missing field.
					Keys: bson.D{
						{Key: "auth_method", Value: 1},
						{Key: "auth_provider_id", Value: 1},
					},
					Options: options.Index().SetSparse(true),
				},
				{Keys: bson.D{{Key: "role", Value: 1}}},
			},
		},
		{
			coll: "courses",
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "name_ci", Value: 1}}},
				{Keys: bson.D{{Key: "students", Value: 1}}},
				{Keys: bson.D{{Key: "teacher.id", Value: 1}}},
			},
		},
		{
			coll: "lessons",
			indexes: []mongo.IndexModel{
				{Keys: bson.D{
					{Key: "course_id", Value: 1},
					{Key: "start", Value: 1},
				}},
			},
		},
		{
			coll: "messages",
			indexes: []mongo.IndexModel{
				{Keys: bson.D{
					{Key: "course_id", Value: 1},
					{Key: "created_at", Value: 1},
				}},
			},
		},
		{
			coll: "course_ratings",
			indexes: []mongo.IndexModel{
				{
					// One rating per (course, user); upserts key on this.
					Keys: bson.D{
						{Key: "course_id", Value: 1},
						{Key: "user_id", Value: 1},
					},
					Options: options.Index().SetUnique(true),
				},
			},
		},
		{
			coll: "oauth_states",
			indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "state", Value: 1}},
					Options: options.Index().SetUnique(true),
				},
				{
					// TTL cleanup of abandoned flows.
					Keys:    bson.D{{Key: "expires_at", Value: 1}},
					Options: options.Index().SetExpireAfterSeconds(0),
				},
			},
		},
		{
			coll: "login_records",
			indexes: []mongo.IndexModel{
				{Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "at", Value: -1},
				}},
			},
		},
	}

	for _, s := range specs {
		opts := options.CreateIndexes().SetMaxTime(30 * time.Second)
		if _, err := db.Collection(s.coll).Indexes().CreateMany(ctx, s.indexes, opts); err != nil {
			return err
		}
		logger.Debug("indexes ensured", zap.String("collection", s.coll))
	}
	return nil
}
