package profile

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UploadInfo contains metadata about an uploaded profile photo.
type UploadInfo struct {
	Path        string
	ContentType string
}

// uploadPhoto stores a profile photo under a per-user path. The uuid in
// the name keeps stale CDN caches from serving the previous photo.
func uploadPhoto(ctx context.Context, store storage.Store, userID primitive.ObjectID, filename string, reader io.Reader, contentType string) (UploadInfo, error) {
	ext := filepath.Ext(filename)
	if len(ext) > 10 {
		ext = ""
	}
	path := fmt.Sprintf("photos/%s/%s%s", userID.Hex(), uuid.New().String()[:8], ext)

	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := store.Put(ctx, path, reader, opts); err != nil {
		return UploadInfo{}, fmt.Errorf("failed to upload photo: %w", err)
	}
	return UploadInfo{Path: path, ContentType: contentType}, nil
}
