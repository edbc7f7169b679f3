package entity

import "github.com/google/uuid"

// AvailabilityLevel buckets the number of free slots on a day
type AvailabilityLevel string

const (
	AvailabilityNone   AvailabilityLevel = "none"
	AvailabilityLow    AvailabilityLevel = "low"
	AvailabilityMedium AvailabilityLevel = "medium"
	AvailabilityHigh   AvailabilityLevel = "high"
)

// Reasons a candidate slot cannot be booked
const (
	ReasonSlotConflict           = "slot_conflict"
	ReasonAdvanceBookingRequired = "advance_booking_required"
	ReasonTimeAlreadyPassed      = "time_already_passed"
)

// AvailabilityQuery is the input of an availability computation.
// StartDate and EndDate are inclusive, format YYYY-MM-DD.
type AvailabilityQuery struct {
	OrganizationID   uuid.UUID
	StartDate        string
	EndDate          string
	ServiceID        *uuid.UUID
	DoctorID         *uuid.UUID
	LocationID       *uuid.UUID
	UserRole         Role
	UseStandardRules bool
}

// TimeSlot is one bookable unit for one doctor
type TimeSlot struct {
	Time                 string    `json:"time"`
	DoctorID             uuid.UUID `json:"doctorId"`
	DurationMinutes      int       `json:"durationMinutes"`
	Available            bool      `json:"available"`
	UnavailableReason    string    `json:"unavailableReason,omitempty"`
	RequiredAdvanceHours int       `json:"requiredAdvanceHours,omitempty"`
}

// DayAvailability summarizes one calendar date
type DayAvailability struct {
	Date              string            `json:"date"`
	DayName           string            `json:"dayName"`
	Slots             []TimeSlot        `json:"slots"`
	TotalSlots        int               `json:"totalSlots"`
	AvailableSlots    int               `json:"availableSlots"`
	AvailabilityLevel AvailabilityLevel `json:"availabilityLevel"`
	IsToday           bool              `json:"isToday"`
	IsTomorrow        bool              `json:"isTomorrow"`
	IsWeekend         bool              `json:"isWeekend"`
}
