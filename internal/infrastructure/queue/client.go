package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"grimoire-backend/internal/config"
)

// Client enqueues background tasks for the worker process.
type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Host,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// EnqueueImageDelete schedules best-effort removal of a stored cover
// image. Callers treat failures as non-fatal.
func (c *Client) EnqueueImageDelete(ctx context.Context, key string) error {
	task, err := NewImageDeleteTask(key)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue("low"),
		asynq.MaxRetry(5),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TaskTypeImageDelete, err)
	}

	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
