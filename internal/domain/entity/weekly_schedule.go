package entity

import (
	"time"

	"github.com/google/uuid"
)

// WeeklySchedule is a recurring availability template for one doctor.
// DayOfWeek follows time.Weekday: 0 = Sunday.
type WeeklySchedule struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"organization_id"`
	DoctorID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"doctor_id"`
	LocationID     *uuid.UUID `gorm:"type:uuid;index" json:"location_id,omitempty"`
	DayOfWeek      int        `gorm:"not null" json:"day_of_week"`
	StartTime      string     `gorm:"type:time;not null" json:"start_time"`
	EndTime        string     `gorm:"type:time;not null" json:"end_time"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WeeklySchedule) TableName() string {
	return "weekly_schedules"
}
