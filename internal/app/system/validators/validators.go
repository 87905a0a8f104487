// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach
// JSON-Schema validators. On servers that don't support collMod/validators
// (e.g. some DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isUnsupported(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("courses", coursesSchema())
	ensure("lessons", lessonsSchema())
	ensure("messages", messagesSchema())
	ensure("course_ratings", ratingsSchema())

	// These don't strictly need validators; we still ensure the
	// collections exist.
	ensure("oauth_states", nil)
	ensure("login_records", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return err
	}
	if len(names) > 0 {
		return nil
	}
	err = db.CreateCollection(ctx, name)
	if err != nil && !isNamespaceExists(err) {
		return err
	}
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, coll string, schema bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: coll},
		{Key: "validator", Value: bson.M{"$jsonSchema": schema}},
		{Key: "validationLevel", Value: "moderate"},
	}
	return db.RunCommand(ctx, cmd).Err()
}

func isUnsupported(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		// 59: no such command, 115: not implemented
		return ce.Code == 59 || ce.Code == 115
	}
	return false
}

func isNamespaceExists(err error) bool {
	var ce mongo.CommandError
	return errors.As(err, &ce) && ce.Code == 48
}

func usersSchema() bson.M {
	return bson.M{
		"bsonType": "object",
		"required": []string{"first_name", "last_name", "email", "role"},
		"properties": bson.M{
			"email": bson.M{"bsonType": "string"},
			"role": bson.M{
				"enum": []string{"admin", "teacher", "student"},
			},
			"auth_method": bson.M{
				"enum": []string{"password", "google", "github"},
			},
		},
	}
}

func coursesSchema() bson.M {
	return bson.M{
		"bsonType": "object",
		"required": []string{"name", "language", "level", "capacity", "students", "teacher"},
		"properties": bson.M{
			"capacity": bson.M{"bsonType": "int", "minimum": 1},
			"price":    bson.M{"bsonType": "int", "minimum": 0},
			"students": bson.M{"bsonType": "array"},
			"average_rating": bson.M{
				"bsonType": "double",
				"minimum":  0,
				"maximum":  5,
			},
		},
	}
}

func lessonsSchema() bson.M {
	return bson.M{
		"bsonType": "object",
		"required": []string{"course_id", "start", "duration_minutes", "classroom"},
		"properties": bson.M{
			"duration_minutes": bson.M{"bsonType": "int", "minimum": 1},
		},
	}
}

func messagesSchema() bson.M {
	return bson.M{
		"bsonType": "object",
		"required": []string{"course_id", "contents", "user_id", "user_name", "created_at"},
	}
}

func ratingsSchema() bson.M {
	return bson.M{
		"bsonType": "object",
		"required": []string{"course_id", "user_id", "value"},
		"properties": bson.M{
			"value": bson.M{
				"bsonType": "double",
				"minimum":  0,
				"maximum":  5,
			},
		},
	}
}
