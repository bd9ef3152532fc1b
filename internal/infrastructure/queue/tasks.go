package queue

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task types routed through Redis.
const (
	TaskTypeImageDelete = "image:delete"
)

// ImageDeletePayload identifies the stored object to remove.
type ImageDeletePayload struct {
	Key string `json:"key"`
}

// NewImageDeleteTask builds the asynq task for removing a cover image.
func NewImageDeleteTask(key string) (*asynq.Task, error) {
	payload, err := json.Marshal(ImageDeletePayload{Key: key})
	if err != nil {
		return nil, fmt.Errorf("marshal image delete payload: %w", err)
	}
	return asynq.NewTask(TaskTypeImageDelete, payload), nil
}
