// Package queue consumes workflow submissions from a Redis list.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/carrierops/chorus/pkg/services"
	redis "github.com/redis/go-redis/v9"
)

const defaultQueueName = "chorus:submissions"

// Consumer pops workflow submissions off a Redis list and hands them to the
// submission service. Each list entry is a JSON SubmitRequest.
type Consumer struct {
	client     redis.UniversalClient
	submission *services.Submission
	queueName  string
	logger     *slog.Logger
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

// Config holds the Redis connection settings for the submission consumer.
type Config struct {
	Addr     string
	Password string
	DB       int
	Queue    string
}

func NewConsumer(submission *services.Submission, config Config, logger *slog.Logger) *Consumer {
	queueName := config.Queue
	if queueName == "" {
		queueName = defaultQueueName
	}

	addr := config.Addr
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &Consumer{
		client:     client,
		submission: submission,
		queueName:  queueName,
		stopCh:     make(chan struct{}),
		logger: logger.With(
			"module", "queue_consumer",
			"queue", queueName,
		),
	}
}

// Start verifies the Redis connection and begins consuming in a background
// goroutine. Invalid submission payloads are logged and dropped so one bad
// message cannot stall the queue.
func (c *Consumer) Start(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c.logger.InfoContext(ctx, "Starting submission queue consumer")

	c.wg.Add(1)

	go c.consume(ctx)

	return nil
}

func (c *Consumer) consume(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopCh:
			c.logger.InfoContext(ctx, "Queue consumer stopped")

			return
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Context cancelled, stopping queue consumer")

			return
		default:
			err := c.processMessage(ctx)
			if err != nil {
				c.logger.ErrorContext(ctx, "Error processing submission message", "error", err)
				time.Sleep(1 * time.Second)
			}
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context) error {
	result, err := c.client.BLPop(ctx, 1*time.Second, c.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	message := result[1]

	var req services.SubmitRequest
	if err := json.Unmarshal([]byte(message), &req); err != nil {
		c.logger.ErrorContext(ctx, "Dropping malformed submission message",
			"message", message, "error", err)

		return nil
	}

	workflowID, err := c.submission.Submit(ctx, req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Dropping rejected submission",
			"message", message, "error", err)

		return nil
	}

	c.logger.InfoContext(ctx, "Submitted workflow from queue", "workflow_id", workflowID)

	return nil
}

// Stop halts the consumer loop and closes the Redis connection.
func (c *Consumer) Stop(ctx context.Context) error {
	c.logger.InfoContext(ctx, "Stopping submission queue consumer")

	close(c.stopCh)
	c.wg.Wait()

	if err := c.client.Close(); err != nil {
		c.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)
	}

	return nil
}
