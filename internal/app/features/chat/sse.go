// internal/app/features/chat/sse.go
package chat

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dalemusser/langis/internal/domain/models"
)

// chatEvent is the JSON payload of one server-sent chat event.
type chatEvent struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	UserPhotoURL string    `json:"user_photo_url,omitempty"`
	Contents     string    `json:"contents"`
	CreatedAt    time.Time `json:"created_at"`
}

// writeEvent writes one message as an SSE "message" event.
func writeEvent(w io.Writer, m models.Message) error {
	payload, err := json.Marshal(chatEvent{
		ID:           m.ID.Hex(),
		UserID:       m.UserID.Hex(),
		UserName:     m.UserName,
		UserPhotoURL: m.UserPhotoURL,
		Contents:     m.Contents,
		CreatedAt:    m.CreatedAt,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: message\ndata: %s\n\n", m.ID.Hex(), payload)
	return err
}
