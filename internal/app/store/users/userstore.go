package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/langis/internal/app/system/normalize"
	"github.com/dalemusser/langis/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
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
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "admin"|"teacher"|"student"`)
	errBadAuthMethod  = errors.New(`auth_method must be "password"|"google"|"github"`)
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByProviderID looks up a user created through an OAuth provider.
func (s *Store) GetByProviderID(ctx context.Context, authMethod, providerID string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{
		"auth_method":      authMethod,
		"auth_provider_id": providerID,
	}).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FirstName = normalize.Space(u.FirstName)
	u.LastName = normalize.Space(u.LastName)
	u.FullNameCI = text.Fold(u.FirstName + " " + u.LastName)
	u.Email = normalize.Email(u.Email)

	switch u.Role {
	case models.RoleAdmin, models.RoleTeacher, models.RoleStudent:
		// ok
	default:
		return models.User{}, errBadRole
	}

	switch u.AuthMethod {
	case models.AuthPassword, models.AuthGoogle, models.AuthGitHub:
		// ok
	default:
		return models.User{}, errBadAuthMethod
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ProfileUpdate holds the fields a user can change on their own profile page.
type ProfileUpdate struct {
	FirstName   string
	LastName    string
	Age         *int
	Location    *string
	Description *string
}

// UpdateProfile applies the user-editable profile fields.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	first := normalize.Space(upd.FirstName)
	last := normalize.Space(upd.LastName)
	set := bson.M{
		"first_name":   first,
		"last_name":    last,
		"full_name_ci": text.Fold(first + " " + last),
		"age":          upd.Age,
		"location":     upd.Location,
		"description":  upd.Description,
		"updated_at":   time.Now(),
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// UpdatePhoto records the storage path and public URL of an uploaded
// profile photo. Empty values clear the uploaded photo, falling back to
// the provider photo if one exists.
func (s *Store) UpdatePhoto(ctx context.Context, id primitive.ObjectID, path, url string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"photo_path": path,
		"photo_url":  url,
		"updated_at": time.Now(),
	}})
	return err
}

// UpdatePassword replaces the stored bcrypt hash for a password account.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "auth_method": models.AuthPassword},
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now()}})
	return err
}

// ListTeachers returns all teacher accounts ordered by folded name,
// for the admin course form's teacher picker.
func (s *Store) ListTeachers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"role": models.RoleTeacher}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PromoteToAdmin sets the role of the account with the given email to
// admin. Missing accounts are not an error; the promotion applies when
// the account is eventually created and this runs again at startup.
func (s *Store) PromoteToAdmin(ctx context.Context, email string) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": normalize.Email(email)},
		bson.M{"$set": bson.M{"role": models.RoleAdmin, "updated_at": time.Now()}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// EmailExistsForOther checks if an email already exists for a user other than the given ID.
func (s *Store) EmailExistsForOther(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"email": normalize.Email(email),
		"_id":   bson.M{"$ne": excludeID},
	}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}
