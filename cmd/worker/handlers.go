package main

import (
	"github.com/hibiken/asynq"

	bookJob "grimoire-backend/internal/domains/book/job"
	"grimoire-backend/internal/infrastructure/queue"
	"grimoire-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	deleteImage *bookJob.DeleteImageHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		deleteImage: bookJob.NewDeleteImageHandler(c.Storage),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(queue.TaskTypeImageDelete, h.deleteImage.ProcessTask)
}
