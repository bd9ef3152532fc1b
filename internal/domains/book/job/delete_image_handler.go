package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"grimoire-backend/internal/infrastructure/queue"
)

// ImageStore is the slice of the storage layer the worker needs.
type ImageStore interface {
	Delete(ctx context.Context, key string) error
}

// DeleteImageHandler removes an orphaned cover image from object
// storage after its book was deleted or its cover replaced.
type DeleteImageHandler struct {
	store ImageStore
}

func NewDeleteImageHandler(store ImageStore) *DeleteImageHandler {
	return &DeleteImageHandler{store: store}
}

// ProcessTask deletes the object; asynq retries on failure.
func (h *DeleteImageHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload queue.ImageDeletePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal image delete payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := h.store.Delete(ctx, payload.Key); err != nil {
		log.Error().
			Err(err).
			Str("key", payload.Key).
			Msg("Failed to delete cover image")
		return fmt.Errorf("delete image: %w", err)
	}

	log.Info().
		Str("key", payload.Key).
		Msg("Cover image deleted")

	return nil
}
