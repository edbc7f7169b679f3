package repository

import (
	"context"

	"medbook/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WeeklyScheduleRepository interface {
	Create(ctx context.Context, db *gorm.DB, schedule *entity.WeeklySchedule) error
	FindByID(ctx context.Context, db *gorm.DB, organizationID, id uuid.UUID) (*entity.WeeklySchedule, error)
	FindAll(ctx context.Context, db *gorm.DB, filter *entity.ScheduleFilter) ([]entity.WeeklySchedule, error)
	Update(ctx context.Context, db *gorm.DB, schedule *entity.WeeklySchedule) error
	Delete(ctx context.Context, db *gorm.DB, organizationID, id uuid.UUID) (int64, error)
}
