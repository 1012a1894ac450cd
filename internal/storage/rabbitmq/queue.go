package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	repo "github.com/ilindan-dev/safeguard/internal/domain/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"strconv"
	"sync"
	"time"
)

// Ensure AlertQueue implements the repository interface at compile time.
var _ repo.AlertQueue = (*AlertQueue)(nil)

// Constants for our RabbitMQ topology.
const (
	AlertsExchange = "alerts.exchange"
	RetryExchange  = "retry.exchange"

	AlertsQueue = "alerts.queue.process"
	RetryQueue  = "retry.queue.delay"

	Direct = "direct"
)

// AlertQueue implements the AlertQueue interface. It acts as a PUBLISHER.
// Events go straight to the alerts queue; retries wait in the retry queue
// until their TTL expires and are dead-lettered back to the alerts exchange.
type AlertQueue struct {
	ch     *amqp.Channel
	mu     sync.Mutex // amqp channels are not safe for concurrent publishing.
	logger zerolog.Logger
}

// NewAlertQueue creates a new instance of the AlertQueue publisher.
// It receives a shared amqp.Connection to create its own channel.
func NewAlertQueue(conn *amqp.Connection, logger *zerolog.Logger) (*AlertQueue, error) {
	channel, err := conn.Channel()
	if err != nil {
		logger.Error().Err(err).Msg("storage: rabbitMQ: New: Failed to open a channel")
		return nil, fmt.Errorf("storage: rabbitMQ: New: Failed to open a channel: %w", err)
	}

	queue := &AlertQueue{
		ch:     channel,
		logger: logger.With().Str("component", "rabbitmq_publisher").Logger(),
	}

	if err = SetupTopology(channel); err != nil {
		queue.logger.Error().Err(err).Msg("storage: rabbitMQ: New: Failed to setup topology")
		return nil, fmt.Errorf("storage: rabbitMQ: New: Failed to setup topology: %w", err)
	}
	queue.logger.Info().Msg("rabbitmq topology setup successful")

	return queue, nil
}

// SetupTopology declares all necessary exchanges and queues. It is idempotent.
func SetupTopology(ch *amqp.Channel) error {
	for _, name := range []string{AlertsExchange, RetryExchange} {
		if err := ch.ExchangeDeclare(name, Direct, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", name, err)
		}
	}

	if _, err := ch.QueueDeclare(AlertsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", AlertsQueue, err)
	}
	retryQueueArgs := amqp.Table{"x-dead-letter-exchange": AlertsExchange}
	if _, err := ch.QueueDeclare(RetryQueue, true, false, false, false, retryQueueArgs); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", RetryQueue, err)
	}

	if err := ch.QueueBind(AlertsQueue, "", AlertsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s to exchange %s: %w", AlertsQueue, AlertsExchange, err)
	}
	if err := ch.QueueBind(RetryQueue, "", RetryExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s to exchange %s: %w", RetryQueue, RetryExchange, err)
	}
	return nil
}

// Publish hands an alert event to the worker.
func (q *AlertQueue) Publish(ctx context.Context, e *model.AlertEvent) error {
	msg, err := newPublishing(e, 0)
	if err != nil {
		q.logger.Error().Err(err).Stringer("alert_id", e.AlertID).Msg("failed to marshal alert event")
		return err
	}
	return q.publish(ctx, AlertsExchange, msg)
}

// PublishRetry schedules an alert event for another mirror attempt.
func (q *AlertQueue) PublishRetry(ctx context.Context, e *model.AlertEvent, retryDelay time.Duration) error {
	msg, err := newPublishing(e, retryDelay)
	if err != nil {
		q.logger.Error().Err(err).Stringer("alert_id", e.AlertID).Msg("failed to marshal alert event for retry")
		return err
	}
	return q.publish(ctx, RetryExchange, msg)
}

func (q *AlertQueue) publish(ctx context.Context, exchange string, msg amqp.Publishing) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.ch.PublishWithContext(ctx, exchange, "", false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq: publish to %s: %w", exchange, err)
	}
	return nil
}

// newPublishing encodes an event as a persistent JSON message.
// A positive delay becomes the per-message TTL.
func newPublishing(e *model.AlertEvent, delay time.Duration) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal alert event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    e.AlertID.String(),
		Timestamp:    time.Now().UTC(),
	}
	if delay > 0 {
		msg.Expiration = strconv.FormatInt(delay.Milliseconds(), 10)
	}
	return msg, nil
}

// Close gracefully shuts down the channel. The connection is managed by Fx.
func (q *AlertQueue) Close() error {
	if q.ch != nil {
		return q.ch.Close()
	}
	return nil
}
