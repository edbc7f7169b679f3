package service

import (
	"context"
	"encoding/json"
	"fmt"

	"medbook/internal/domain/entity"
	"medbook/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"gorm.io/gorm"
)

// EventService records domain events in the outbox inside the caller's transaction
type EventService interface {
	RecordAppointmentEvent(ctx context.Context, tx *gorm.DB, eventType string, payload entity.AppointmentEvent) error
}

type eventService struct {
	log        *logrus.Logger
	outboxRepo repository.OutboxRepository
}

func NewEventService(log *logrus.Logger, outboxRepo repository.OutboxRepository) EventService {
	return &eventService{
		log:        log,
		outboxRepo: outboxRepo,
	}
}

func (s *eventService) RecordAppointmentEvent(ctx context.Context, tx *gorm.DB, eventType string, payload entity.AppointmentEvent) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", eventType, err)
	}

	// Trace context is stored so the publisher can continue the request's trace
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	event := &entity.OutboxEvent{
		EventID:        uuid.New(),
		OrganizationID: payload.OrganizationID,
		AggregateType:  "appointment",
		AggregateID:    payload.AppointmentID,
		EventType:      eventType,
		Payload:        body,
		Traceparent:    carrier.Get("traceparent"),
		Tracestate:     carrier.Get("tracestate"),
	}

	if err := s.outboxRepo.Create(ctx, tx, event); err != nil {
		s.log.Warnf("Failed to record %s event: %+v", eventType, err)
		return err
	}

	return nil
}
