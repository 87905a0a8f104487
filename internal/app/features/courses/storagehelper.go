package courses

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

const maxAttachmentNameLen = 100

// UploadInfo describes a stored lesson attachment.
type UploadInfo struct {
	Path        string
	FileName    string
	Size        int64
	ContentType string
}

// uploadFile stores a lesson attachment under lessons/YYYY/MM/ with a
// uuid prefix so two uploads of the same filename never collide.
func uploadFile(ctx context.Context, store storage.Store, filename string, reader io.Reader, size int64, contentType string) (UploadInfo, error) {
	now := time.Now().UTC()
	key := path.Join(
		fmt.Sprintf("lessons/%04d/%02d", now.Year(), now.Month()),
		uuid.New().String()[:8]+"-"+attachmentName(filename),
	)

	err := store.Put(ctx, key, reader, &storage.PutOptions{ContentType: contentType})
	if err != nil {
		return UploadInfo{}, fmt.Errorf("upload lesson file: %w", err)
	}

	return UploadInfo{
		Path:        key,
		FileName:    filename,
		Size:        size,
		ContentType: contentType,
	}, nil
}

// attachmentName reduces a client-supplied filename to a safe storage
// name: base name only, restricted character set, bounded length with
// the extension kept when possible.
func attachmentName(filename string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, filepath.Base(filename))

	if name == "" {
		return "file"
	}
	if len(name) > maxAttachmentNameLen {
		ext := filepath.Ext(name)
		if ext != "" && len(ext) < 10 {
			name = name[:maxAttachmentNameLen-len(ext)] + ext
		} else {
			name = name[:maxAttachmentNameLen]
		}
	}
	return name
}
