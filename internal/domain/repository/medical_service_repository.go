package repository

import (
	"context"

	"medbook/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MedicalServiceRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, organizationID, id uuid.UUID) (*entity.MedicalService, error)
	FindActive(ctx context.Context, db *gorm.DB, organizationID uuid.UUID) ([]entity.MedicalService, error)
}
