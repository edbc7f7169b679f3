package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID   string `json:"doctor_id" validate:"required,uuid"`
	PatientID  string `json:"patient_id" validate:"omitempty,uuid"`
	LocationID string `json:"location_id" validate:"omitempty,uuid"`
	ServiceID  string `json:"service_id" validate:"omitempty,uuid"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime  string `json:"start_time" validate:"required"`
	Notes      string `json:"notes" validate:"max=1000"`
}

type RescheduleAppointmentRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	OrganizationID  uuid.UUID  `json:"organization_id"`
	DoctorID        uuid.UUID  `json:"doctor_id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	LocationID      *uuid.UUID `json:"location_id,omitempty"`
	ServiceID       *uuid.UUID `json:"service_id,omitempty"`
	Date            string     `json:"date"`
	StartTime       string     `json:"start_time"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// SlotUnavailableDetails tells the client why a slot was refused
type SlotUnavailableDetails struct {
	Reason               string `json:"reason"`
	RequiredAdvanceHours int    `json:"required_advance_hours,omitempty"`
}
