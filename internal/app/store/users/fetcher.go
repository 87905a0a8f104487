package userstore

import (
	"context"

	"github.com/dalemusser/langis/internal/app/system/auth"
	"github.com/dalemusser/langis/internal/app/system/timeouts"
	"github.com/dalemusser/langis/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// Fetch retrieves a user by ID. A malformed or unknown id yields
// (nil, nil) so the session is treated as unauthenticated rather than
// erroring the request.
func (f *Fetcher) Fetch(ctx context.Context, userID string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":                1,
		"first_name":         1,
		"last_name":          1,
		"email":              1,
		"role":               1,
		"photo_url":          1,
		"provider_photo_url": 1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &auth.SessionUser{
		ID:       u.ID.Hex(),
		Name:     u.FullName(),
		Email:    u.Email,
		Role:     u.Role,
		PhotoURL: u.DisplayPhotoURL(""),
	}, nil
}
