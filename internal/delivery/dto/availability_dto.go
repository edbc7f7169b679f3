package dto

// Request DTOs

// AvailabilityRequest mirrors the query string of GET /availability
type AvailabilityRequest struct {
	OrganizationID   string `validate:"required,uuid"`
	StartDate        string `validate:"required"`
	EndDate          string `validate:"required"`
	ServiceID        string `validate:"omitempty,uuid"`
	DoctorID         string `validate:"omitempty,uuid"`
	LocationID       string `validate:"omitempty,uuid"`
	UserRole         string
	UseStandardRules bool
}

// Response DTOs

type TimeSlotResponse struct {
	Time                 string `json:"time"`
	DoctorID             string `json:"doctorId"`
	DurationMinutes      int    `json:"durationMinutes"`
	Available            bool   `json:"available"`
	UnavailableReason    string `json:"unavailableReason,omitempty"`
	RequiredAdvanceHours int    `json:"requiredAdvanceHours,omitempty"`
}

type DayAvailabilityResponse struct {
	DayName           string             `json:"dayName"`
	Slots             []TimeSlotResponse `json:"slots"`
	TotalSlots        int                `json:"totalSlots"`
	AvailableSlots    int                `json:"availableSlots"`
	AvailabilityLevel string             `json:"availabilityLevel"`
	IsToday           bool               `json:"isToday"`
	IsTomorrow        bool               `json:"isTomorrow"`
	IsWeekend         bool               `json:"isWeekend"`
}

// AvailabilityResponse is keyed by date (YYYY-MM-DD)
type AvailabilityResponse map[string]DayAvailabilityResponse
