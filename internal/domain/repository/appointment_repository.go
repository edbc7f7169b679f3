package repository

import (
	"context"

	"medbook/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, organizationID, id uuid.UUID) (*entity.Appointment, error)
	// FindBlocking returns appointments in a blocking status within the filter's date range
	FindBlocking(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	Reschedule(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	Cancel(ctx context.Context, db *gorm.DB, organizationID, id uuid.UUID) (int64, error)
}
