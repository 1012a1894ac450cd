// Package consumer runs the worker pool that mirrors SOS alert events to operator channels.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	repo "github.com/ilindan-dev/safeguard/internal/domain/repository"
	"github.com/ilindan-dev/safeguard/internal/notifiers"
	"github.com/ilindan-dev/safeguard/internal/storage/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"math"
	"sync"
	"time"
)

const (
	// maxRetries is the maximum number of mirror attempts for an alert event.
	maxRetries = 5
	// defaultWorkerCount is the default number of worker goroutines in the pool.
	defaultWorkerCount = 5
)

// Consumer listens to the alerts queue and processes events using a pool of workers.
type Consumer struct {
	logger      zerolog.Logger
	conn        *amqp.Connection // Raw connection to create channels for each worker.
	queue       repo.AlertQueue
	notifier    notifiers.Notifier
	workerCount int
}

// New creates a new instance of Consumer.
func New(
	logger *zerolog.Logger,
	conn *amqp.Connection,
	queue repo.AlertQueue,
	notifier notifiers.Notifier,
) *Consumer {
	return &Consumer{
		logger:      logger.With().Str("component", "consumer").Logger(),
		conn:        conn,
		queue:       queue,
		notifier:    notifier,
		workerCount: defaultWorkerCount,
	}
}

// Start launches the worker pool to process messages from the queue.
// This is a blocking method that will run until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	c.logger.Info().Int("count", c.workerCount).Msg("Starting worker pool")
	var wg sync.WaitGroup

	for i := 0; i < c.workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.runWorker(ctx, workerID)
		}(i + 1)
	}

	wg.Wait()
	c.logger.Info().Msg("Consumer stopped")
}

// runWorker contains the main logic for a single worker goroutine.
func (c *Consumer) runWorker(ctx context.Context, workerID int) {
	logger := c.logger.With().Int("worker_id", workerID).Logger()
	logger.Info().Msg("Worker started")

	ch, err := c.conn.Channel()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open channel for worker")
		return
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error().Err(err).Msg("Failed to set QoS")
		return
	}

	msgs, err := ch.Consume(
		rabbitmq.AlertsQueue,
		fmt.Sprintf("worker-%d", workerID), // A unique consumer tag.
		false,                              // autoAck: false. We will manually acknowledge messages.
		false,                              // exclusive
		false,                              // noLocal
		false,                              // noWait
		nil,                                // args
	)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to register a consumer")
		return
	}

	logger.Info().Msg("Worker is waiting for alert events")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Worker stopping due to context cancellation")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Warn().Msg("Message channel closed by RabbitMQ, worker stopping")
				return
			}
			c.handleMessage(ctx, msg, logger)
		}
	}
}

// handleMessage processes a single alert event from the queue.
func (c *Consumer) handleMessage(ctx context.Context, msg amqp.Delivery, logger zerolog.Logger) {
	var event model.AlertEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		logger.Error().Err(err).Msg("Failed to unmarshal alert event, rejecting")
		_ = msg.Nack(false, false)
		return
	}

	log := logger.With().Stringer("alert_id", event.AlertID).Logger()
	log.Info().Int("attempt", event.Attempts+1).Msg("Mirroring alert event")

	if err := c.notifier.Notify(ctx, &event); err != nil {
		c.handleNotifyError(ctx, &event, err, msg, log)
		return
	}

	log.Info().Msg("Alert event mirrored successfully")
	_ = msg.Ack(false)
}

// handleNotifyError schedules another attempt or gives up once maxRetries is reached.
func (c *Consumer) handleNotifyError(ctx context.Context, e *model.AlertEvent, notifyErr error, msg amqp.Delivery, log zerolog.Logger) {
	e.Attempts++

	if e.Attempts >= maxRetries {
		log.Error().Err(notifyErr).Int("attempts", e.Attempts).Msg("Max retries reached, dropping alert event")
		_ = msg.Ack(false)
		return
	}

	backoffDuration := calculateExponentialBackoff(e.Attempts)
	log.Warn().
		Err(notifyErr).
		Int("attempt", e.Attempts).
		Dur("backoff", backoffDuration).
		Msg("Mirror failed, scheduling retry")

	if err := c.queue.PublishRetry(ctx, e, backoffDuration); err != nil {
		log.Error().Err(err).Msg("CRITICAL: failed to publish alert event to retry queue")
		_ = msg.Nack(false, true)
		return
	}

	_ = msg.Ack(false)
}

// calculateExponentialBackoff implements the exponential backoff strategy.
// Formula: 5s * 2^(attempt)
func calculateExponentialBackoff(attempt int) time.Duration {
	baseDelay := 5.0
	delay := baseDelay * math.Pow(2, float64(attempt))
	return time.Duration(delay) * time.Second
}
