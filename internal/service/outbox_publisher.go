package service

import (
	"context"
	"time"

	"medbook/internal/domain/entity"
	"medbook/internal/domain/repository"
	"medbook/internal/infrastructure/messaging"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"gorm.io/gorm"
)

// MessageWriter is the part of *kafka.Writer the publisher needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// OutboxPublisher relays outbox events to Kafka, one topic per event type.
// Delivery is at least once; consumers de-duplicate on the event_id header.
type OutboxPublisher struct {
	db         *gorm.DB
	log        *logrus.Logger
	outboxRepo repository.OutboxRepository
	writer     MessageWriter
	pollEvery  time.Duration
	batchSize  int
	now        func() time.Time
	withTx     func(ctx context.Context, fn func(tx *gorm.DB) error) error
}

func NewOutboxPublisher(db *gorm.DB, log *logrus.Logger, outboxRepo repository.OutboxRepository, writer MessageWriter, pollEvery time.Duration, batchSize int) *OutboxPublisher {
	if pollEvery <= 0 {
		pollEvery = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &OutboxPublisher{
		db:         db,
		log:        log,
		outboxRepo: outboxRepo,
		writer:     writer,
		pollEvery:  pollEvery,
		batchSize:  batchSize,
		now:        time.Now,
		withTx: func(ctx context.Context, fn func(tx *gorm.DB) error) error {
			return db.WithContext(ctx).Transaction(fn)
		},
	}
}

// Run publishes until ctx is cancelled. Without a writer it returns immediately
// and events stay in the outbox.
func (p *OutboxPublisher) Run(ctx context.Context) {
	if p.writer == nil {
		p.log.Warn("Outbox publisher disabled: no Kafka brokers configured")
		return
	}

	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.PublishBatch(ctx); err != nil && ctx.Err() == nil {
				p.log.Errorf("Outbox publish failed: %+v", err)
			}
		}
	}
}

// PublishBatch sends one batch and marks it published in the same transaction.
// A failed write rolls back so the batch is retried on the next tick.
func (p *OutboxPublisher) PublishBatch(ctx context.Context) (int, error) {
	published := 0
	err := p.withTx(ctx, func(tx *gorm.DB) error {
		events, err := p.outboxRepo.FetchUnpublished(ctx, tx, p.batchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		msgs := make([]kafka.Message, 0, len(events))
		ids := make([]int64, 0, len(events))
		for _, event := range events {
			msgs = append(msgs, p.message(ctx, event))
			ids = append(ids, event.ID)
		}

		if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
			return err
		}
		if err := p.outboxRepo.MarkPublished(ctx, tx, ids, p.now()); err != nil {
			return err
		}

		published = len(events)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if published > 0 {
		p.log.Debugf("Published %d outbox events", published)
	}
	return published, nil
}

func (p *OutboxPublisher) message(ctx context.Context, event entity.OutboxEvent) kafka.Message {
	msgCtx := ctx
	if event.Traceparent != "" {
		msgCtx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier{
			"traceparent": event.Traceparent,
			"tracestate":  event.Tracestate,
		})
	}

	msg := kafka.Message{
		Topic: event.EventType,
		Key:   []byte(event.AggregateID.String()),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID.String())},
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "organization_id", Value: []byte(event.OrganizationID.String())},
		},
	}
	msg.Headers = messaging.InjectTraceHeaders(msgCtx, msg.Headers)
	return msg
}
