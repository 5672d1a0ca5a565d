package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mariapr27/my-store-app/internal/repository"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

type mockOutboxRepo struct {
	m          sync.Mutex
	pending    []*repository.OutboxEvent
	markErr    error
	failMarkID uuid.UUID // mark fails for this event only

	processedIDs []uuid.UUID
}

func (r *mockOutboxRepo) GetUnprocessedEvents(context.Context, int) ([]*repository.OutboxEvent, error) {
	r.m.Lock()
	defer r.m.Unlock()
	out := make([]*repository.OutboxEvent, len(r.pending))
	copy(out, r.pending)
	return out, nil
}

func (r *mockOutboxRepo) MarkEventAsProcessed(_ context.Context, id uuid.UUID) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.markErr != nil {
		return r.markErr
	}
	if id == r.failMarkID {
		return errors.New("database deadlock")
	}
	for i, ev := range r.pending {
		if ev.ID == id {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			break
		}
	}
	r.processedIDs = append(r.processedIDs, id)
	return nil
}

type mockWriter struct {
	m        sync.Mutex
	err      error
	messages []kafkaGo.Message
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	w.m.Lock()
	defer w.m.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *mockWriter) Close() error { return nil }

func testEvent(orderID string) *repository.OutboxEvent {
	return &repository.OutboxEvent{
		ID:        uuid.New(),
		OrderID:   orderID,
		EventType: "order.created",
		Payload:   []byte(fmt.Sprintf(`{"order_id":%q,"total":12.99}`, orderID)),
	}
}

func TestProcessUnpublishedEvents(t *testing.T) {
	event := testEvent("order-1")
	repo := &mockOutboxRepo{pending: []*repository.OutboxEvent{event}}
	writer := &mockWriter{}
	poller := &OutboxPoller{tick: time.Second, repo: repo, writer: writer}

	poller.processUnpublishedEvents(context.Background())

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "order-1", string(msg.Key))
	assert.JSONEq(t, `{"order_id":"order-1","total":12.99}`, string(msg.Value))

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "order.created", string(msg.Headers[0].Value))
	assert.Equal(t, "event_id", msg.Headers[1].Key)
	assert.Equal(t, event.ID.String(), string(msg.Headers[1].Value))

	require.Len(t, repo.processedIDs, 1)
	assert.Equal(t, event.ID, repo.processedIDs[0])
	assert.Empty(t, repo.pending)
}

func TestProcessUnpublishedEvents_PublishFailureLeavesEventPending(t *testing.T) {
	event := testEvent("order-1")
	repo := &mockOutboxRepo{pending: []*repository.OutboxEvent{event}}
	writer := &mockWriter{err: errors.New("broker unreachable")}
	poller := &OutboxPoller{tick: time.Second, repo: repo, writer: writer}

	poller.processUnpublishedEvents(context.Background())

	// Not marked processed, so the next tick retries it.
	assert.Empty(t, repo.processedIDs)
	require.Len(t, repo.pending, 1)
}

func TestProcessUnpublishedEvents_MarkFailureCausesRedelivery(t *testing.T) {
	event := testEvent("order-1")
	repo := &mockOutboxRepo{
		pending: []*repository.OutboxEvent{event},
		markErr: errors.New("database deadlock"),
	}
	writer := &mockWriter{}
	poller := &OutboxPoller{tick: time.Second, repo: repo, writer: writer}

	poller.processUnpublishedEvents(context.Background())

	// Published but still pending: at-least-once, the consumer
	// deduplicates by event id.
	require.Len(t, writer.messages, 1)
	require.Len(t, repo.pending, 1)

	repo.m.Lock()
	repo.markErr = nil
	repo.m.Unlock()

	poller.processUnpublishedEvents(context.Background())

	assert.Len(t, writer.messages, 2)
	assert.Empty(t, repo.pending)
	require.Len(t, repo.processedIDs, 1)
}

func TestProcessUnpublishedEvents_OneFailureDoesNotBlockOthers(t *testing.T) {
	first := testEvent("order-1")
	second := testEvent("order-2")
	repo := &mockOutboxRepo{
		pending:    []*repository.OutboxEvent{first, second},
		failMarkID: first.ID,
	}
	writer := &mockWriter{}
	poller := &OutboxPoller{tick: time.Second, repo: repo, writer: writer}

	poller.processUnpublishedEvents(context.Background())

	// Both published; only the second landed its mark, the first stays
	// pending for the next tick.
	assert.Len(t, writer.messages, 2)
	require.Len(t, repo.processedIDs, 1)
	assert.Equal(t, second.ID, repo.processedIDs[0])
	require.Len(t, repo.pending, 1)
	assert.Equal(t, first.ID, repo.pending[0].ID)
}

func setupKafka(t *testing.T) (string, func()) {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}

	return brokers[0], cleanup
}

func TestOutboxPoller_PublishesEventsToKafka(t *testing.T) {
	brokerAddr, cleanup := setupKafka(t)
	defer cleanup()

	event := testEvent("order-123")
	repo := &mockOutboxRepo{pending: []*repository.OutboxEvent{event}}

	poller := NewOutboxPoller(repo, brokerAddr)
	defer poller.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	go poller.Run(ctx)

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    "order-outbox",
		GroupID:  "test-consumer",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)

	assert.Equal(t, "order-123", string(msg.Key))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "order-123", payload["order_id"])

	// Marked processed once delivered.
	require.Eventually(t, func() bool {
		repo.m.Lock()
		defer repo.m.Unlock()
		return len(repo.pending) == 0
	}, 10*time.Second, 100*time.Millisecond)
}
