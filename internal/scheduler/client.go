package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"familyhub_backend/platform/config"
)

// RedisOpt translates the configured redis URL into asynq connection options.
func RedisOpt(cfg config.SchedulerConfig) (asynq.RedisClientOpt, error) {
	parsed, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("parse redis url: %w", err)
	}

	opt := asynq.RedisClientOpt{
		Addr:      parsed.Addr,
		Username:  parsed.Username,
		Password:  parsed.Password,
		DB:        parsed.DB,
		TLSConfig: parsed.TLSConfig,
	}
	if cfg.GetRedisTLSInsecure() && opt.TLSConfig != nil {
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return opt, nil
}

// Client enqueues background jobs.
type Client struct {
	client *asynq.Client
	queue  string
}

// NewClient creates a scheduler client.
func NewClient(opt asynq.RedisClientOpt, queue string) *Client {
	return &Client{client: asynq.NewClient(opt), queue: queue}
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueOrderImport queues an import cycle for a family.
func (c *Client) EnqueueOrderImport(ctx context.Context, familyID uuid.UUID) error {
	task, err := NewOrderImportTask(familyID)
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue)); err != nil {
		return fmt.Errorf("enqueue order import: %w", err)
	}
	return nil
}
