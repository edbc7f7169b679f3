package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"medbook/internal/domain/entity"
	"medbook/internal/infrastructure/messaging"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []entity.OutboxEvent
	nextID int64
}

func (r *fakeOutboxRepo) Create(ctx context.Context, db *gorm.DB, event *entity.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	event.ID = r.nextID
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeOutboxRepo) FetchUnpublished(ctx context.Context, db *gorm.DB, limit int) ([]entity.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.OutboxEvent
	for _, e := range r.events {
		if e.PublishedAt == nil && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeOutboxRepo) MarkPublished(ctx context.Context, db *gorm.DB, ids []int64, publishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		for i := range r.events {
			if r.events[i].ID == id {
				at := publishedAt
				r.events[i].PublishedAt = &at
			}
		}
	}
	return nil
}

func (r *fakeOutboxRepo) pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.PublishedAt == nil {
			n++
		}
	}
	return n
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func noTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func sampledContext() context.Context {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	return trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))
}

func TestRecordAppointmentEvent(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	repo := &fakeOutboxRepo{}
	events := NewEventService(quietLogger(), repo)

	payload := entity.AppointmentEvent{
		AppointmentID:   uuid.New(),
		OrganizationID:  uuid.New(),
		Date:            "2025-06-03",
		StartTime:       "10:00",
		DurationMinutes: 30,
		Status:          entity.AppointmentStatusScheduled,
	}
	if err := events.RecordAppointmentEvent(sampledContext(), nil, entity.EventAppointmentBooked, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	got := repo.events[0]
	if got.EventType != entity.EventAppointmentBooked || got.AggregateID != payload.AppointmentID || got.OrganizationID != payload.OrganizationID {
		t.Fatalf("unexpected event %+v", got)
	}
	if got.Traceparent != "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01" {
		t.Fatalf("trace context not captured: %q", got.Traceparent)
	}

	var decoded entity.AppointmentEvent
	if err := json.Unmarshal(got.Payload, &decoded); err != nil || decoded.StartTime != "10:00" {
		t.Fatalf("unexpected payload %s (%v)", got.Payload, err)
	}
}

func TestPublishBatch(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	repo := &fakeOutboxRepo{}
	events := NewEventService(quietLogger(), repo)
	for i := 0; i < 3; i++ {
		payload := entity.AppointmentEvent{AppointmentID: uuid.New(), OrganizationID: uuid.New()}
		if err := events.RecordAppointmentEvent(sampledContext(), nil, entity.EventAppointmentCancelled, payload); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	writer := &fakeWriter{}
	publisher := NewOutboxPublisher(nil, quietLogger(), repo, writer, time.Second, 2)
	publisher.withTx = noTx

	n, err := publisher.PublishBatch(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("expected 2 published, got %d (%v)", n, err)
	}
	n, err = publisher.PublishBatch(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("expected 1 published, got %d (%v)", n, err)
	}
	if repo.pending() != 0 {
		t.Fatalf("expected empty outbox, %d pending", repo.pending())
	}

	msg := writer.msgs[0]
	if msg.Topic != entity.EventAppointmentCancelled {
		t.Fatalf("expected topic per event type, got %q", msg.Topic)
	}
	if string(msg.Key) != repo.events[0].AggregateID.String() {
		t.Fatalf("expected aggregate key, got %q", msg.Key)
	}
	if messaging.HeaderValue(msg.Headers, "event_id") != repo.events[0].EventID.String() {
		t.Fatalf("missing event_id header: %+v", msg.Headers)
	}
	if messaging.HeaderValue(msg.Headers, "traceparent") != repo.events[0].Traceparent {
		t.Fatalf("trace context not propagated: %+v", msg.Headers)
	}
}

func TestPublishBatchKeepsEventsOnWriteFailure(t *testing.T) {
	repo := &fakeOutboxRepo{}
	events := NewEventService(quietLogger(), repo)
	payload := entity.AppointmentEvent{AppointmentID: uuid.New(), OrganizationID: uuid.New()}
	if err := events.RecordAppointmentEvent(context.Background(), nil, entity.EventAppointmentBooked, payload); err != nil {
		t.Fatalf("record: %v", err)
	}

	writeErr := errors.New("broker unavailable")
	publisher := NewOutboxPublisher(nil, quietLogger(), repo, &fakeWriter{err: writeErr}, time.Second, 10)
	publisher.withTx = noTx

	if _, err := publisher.PublishBatch(context.Background()); !errors.Is(err, writeErr) {
		t.Fatalf("expected write error, got %v", err)
	}
	if repo.pending() != 1 {
		t.Fatal("event must stay in the outbox")
	}
}

func TestOutboxPublisherRunWithoutWriterReturns(t *testing.T) {
	publisher := NewOutboxPublisher(nil, quietLogger(), &fakeOutboxRepo{}, nil, time.Second, 10)

	done := make(chan struct{})
	go func() {
		publisher.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return immediately without a writer")
	}
}
