package entity

import (
	"time"

	"github.com/google/uuid"
)

// Appointment event types; each one is published to the Kafka topic of the same name
const (
	EventAppointmentBooked      = "appointment.booked"
	EventAppointmentRescheduled = "appointment.rescheduled"
	EventAppointmentCancelled   = "appointment.cancelled"
)

// OutboxEvent is a domain event written in the same transaction as the change it describes
type OutboxEvent struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"event_id"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null" json:"organization_id"`
	AggregateType  string     `gorm:"type:varchar(50);not null" json:"aggregate_type"`
	AggregateID    uuid.UUID  `gorm:"type:uuid;not null" json:"aggregate_id"`
	EventType      string     `gorm:"type:varchar(100);not null" json:"event_type"`
	Payload        []byte     `gorm:"type:jsonb;not null" json:"payload"`
	Traceparent    string     `gorm:"type:varchar(55)" json:"traceparent,omitempty"`
	Tracestate     string     `gorm:"type:text" json:"tracestate,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}

// AppointmentEvent is the payload of every appointment.* event
type AppointmentEvent struct {
	AppointmentID   uuid.UUID         `json:"appointment_id"`
	OrganizationID  uuid.UUID         `json:"organization_id"`
	DoctorID        uuid.UUID         `json:"doctor_id"`
	PatientID       uuid.UUID         `json:"patient_id"`
	Date            string            `json:"date"`
	StartTime       string            `json:"start_time"`
	DurationMinutes int               `json:"duration_minutes"`
	Status          AppointmentStatus `json:"status"`
	ActorID         uuid.UUID         `json:"actor_id"`
}
