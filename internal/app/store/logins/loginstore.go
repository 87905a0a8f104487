package loginstore

import (
	"context"
	"net"
	"net/http"
	"strings"
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
	return &Store{c: db.Collection("login_records")}
}

// Record inserts a LoginRecord. If At is zero, it's set to time.Now().UTC().
func (s *Store) Record(ctx context.Context, rec models.LoginRecord) error {
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// RecordFrom builds a LoginRecord from the HTTP request and inserts it.
// It extracts client IP (X-Forwarded-For → X-Real-IP → RemoteAddr) and user agent.
func (s *Store) RecordFrom(ctx context.Context, r *http.Request, userID primitive.ObjectID, method string) error {
	return s.Record(ctx, models.LoginRecord{
		UserID:    userID,
		Method:    method,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	})
}

// RecentByUser returns a user's newest sign-ins, newest first.
func (s *Store) RecentByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.LoginRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.LoginRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func clientIP(r *http.Request) string {
	// Respect common proxy headers first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return strings.TrimSpace(xr)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
