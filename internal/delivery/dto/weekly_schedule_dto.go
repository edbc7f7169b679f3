package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type WeeklyScheduleRequest struct {
	DoctorID   string  `json:"doctor_id" validate:"required,uuid"`
	LocationID *string `json:"location_id" validate:"omitempty,uuid"`
	DayOfWeek  *int    `json:"day_of_week" validate:"required,gte=0,lte=6"`
	StartTime  string  `json:"start_time" validate:"required"`
	EndTime    string  `json:"end_time" validate:"required"`
	IsActive   *bool   `json:"is_active"`
}

// Response DTOs

type WeeklyScheduleResponse struct {
	ID         uuid.UUID  `json:"id"`
	DoctorID   uuid.UUID  `json:"doctor_id"`
	LocationID *uuid.UUID `json:"location_id,omitempty"`
	DayOfWeek  int        `json:"day_of_week"`
	StartTime  string     `json:"start_time"`
	EndTime    string     `json:"end_time"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type WeeklyScheduleListResponse struct {
	Schedules []WeeklyScheduleResponse `json:"schedules"`
	Total     int                      `json:"total"`
}
