package entity

import "github.com/google/uuid"

// ScheduleFilter is a domain-level filter for querying weekly schedules.
// Used by repository layer to avoid coupling with delivery DTOs.
type ScheduleFilter struct {
	OrganizationID uuid.UUID
	DoctorID       *uuid.UUID
	LocationID     *uuid.UUID
	ServiceID      *uuid.UUID // doctors offering the service
	ActiveOnly     bool
}

// AppointmentFilter selects appointments in an inclusive date range
type AppointmentFilter struct {
	OrganizationID uuid.UUID
	DoctorID       *uuid.UUID
	StartDate      string // Format: YYYY-MM-DD
	EndDate        string // Format: YYYY-MM-DD
	ExcludeID      *uuid.UUID
}
