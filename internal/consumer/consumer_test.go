package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/google/uuid"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

type ackRecord struct {
	acked, nacked, requeue bool
}

func (a *ackRecord) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *ackRecord) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func (a *ackRecord) Reject(_ uint64, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

type fakeQueue struct {
	retries []*model.AlertEvent
	delays  []time.Duration
	err     error
}

func (f *fakeQueue) Publish(context.Context, *model.AlertEvent) error { return nil }

func (f *fakeQueue) PublishRetry(_ context.Context, e *model.AlertEvent, delay time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.retries = append(f.retries, e)
	f.delays = append(f.delays, delay)
	return nil
}

type fakeNotifier struct {
	calls  int
	err    error
	notify func(e *model.AlertEvent) error
}

func (f *fakeNotifier) Notify(_ context.Context, e *model.AlertEvent) error {
	f.calls++
	if f.notify != nil {
		return f.notify(e)
	}
	return f.err
}

func newTestConsumer(q *fakeQueue, n *fakeNotifier) *Consumer {
	logger := zerolog.Nop()
	return New(&logger, nil, q, n)
}

func delivery(t *testing.T, e *model.AlertEvent, ack *ackRecord) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(e)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body}
}

func TestHandleMessage_Success(t *testing.T) {
	q, n, ack := &fakeQueue{}, &fakeNotifier{}, &ackRecord{}
	c := newTestConsumer(q, n)

	c.handleMessage(context.Background(), delivery(t, &model.AlertEvent{AlertID: uuid.New()}, ack), zerolog.Nop())

	assert.Equal(t, 1, n.calls)
	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	assert.Empty(t, q.retries)
}

func TestHandleMessage_Undecodable(t *testing.T) {
	q, n, ack := &fakeQueue{}, &fakeNotifier{}, &ackRecord{}
	c := newTestConsumer(q, n)

	c.handleMessage(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{broken")}, zerolog.Nop())

	assert.Zero(t, n.calls)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestHandleMessage_SchedulesRetry(t *testing.T) {
	q, n, ack := &fakeQueue{}, &fakeNotifier{err: errors.New("smtp down")}, &ackRecord{}
	c := newTestConsumer(q, n)

	c.handleMessage(context.Background(), delivery(t, &model.AlertEvent{AlertID: uuid.New(), Attempts: 1}, ack), zerolog.Nop())

	require.Len(t, q.retries, 1)
	assert.Equal(t, 2, q.retries[0].Attempts)
	assert.Equal(t, 20*time.Second, q.delays[0])
	assert.True(t, ack.acked)
}

func TestHandleMessage_RetryKeepsDeliveredChannels(t *testing.T) {
	q, ack := &fakeQueue{}, &ackRecord{}
	var seen []string
	n := &fakeNotifier{notify: func(e *model.AlertEvent) error {
		seen = append([]string(nil), e.Delivered...)
		e.Delivered = append(e.Delivered, "email")
		return errors.New("telegram down")
	}}
	c := newTestConsumer(q, n)

	in := &model.AlertEvent{AlertID: uuid.New(), Delivered: []string{"log"}}
	c.handleMessage(context.Background(), delivery(t, in, ack), zerolog.Nop())

	assert.Equal(t, []string{"log"}, seen)
	require.Len(t, q.retries, 1)
	assert.Equal(t, []string{"log", "email"}, q.retries[0].Delivered)
	assert.True(t, ack.acked)
}

func TestHandleMessage_DropsAfterMaxRetries(t *testing.T) {
	q, n, ack := &fakeQueue{}, &fakeNotifier{err: errors.New("smtp down")}, &ackRecord{}
	c := newTestConsumer(q, n)

	c.handleMessage(context.Background(), delivery(t, &model.AlertEvent{AlertID: uuid.New(), Attempts: maxRetries - 1}, ack), zerolog.Nop())

	assert.Empty(t, q.retries)
	assert.True(t, ack.acked)
}

func TestHandleMessage_RetryPublishFailureRequeues(t *testing.T) {
	q := &fakeQueue{err: errors.New("channel closed")}
	n, ack := &fakeNotifier{err: errors.New("smtp down")}, &ackRecord{}
	c := newTestConsumer(q, n)

	c.handleMessage(context.Background(), delivery(t, &model.AlertEvent{AlertID: uuid.New()}, ack), zerolog.Nop())

	assert.True(t, ack.nacked)
	assert.True(t, ack.requeue)
	assert.False(t, ack.acked)
}

func TestCalculateExponentialBackoff(t *testing.T) {
	assert.Equal(t, 5*time.Second, calculateExponentialBackoff(0))
	assert.Equal(t, 10*time.Second, calculateExponentialBackoff(1))
	assert.Equal(t, 40*time.Second, calculateExponentialBackoff(3))
}
