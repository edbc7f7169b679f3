package repository

import (
	"context"
	"errors"

	"medbook/internal/domain/entity"
	domainRepo "medbook/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type medicalServiceRepository struct{}

func NewMedicalServiceRepository() domainRepo.MedicalServiceRepository {
	return &medicalServiceRepository{}
}

func (r *medicalServiceRepository) FindByID(ctx context.Context, db *gorm.DB, organizationID, id uuid.UUID) (*entity.MedicalService, error) {
	var service entity.MedicalService
	err := db.WithContext(ctx).Where("id = ? AND organization_id = ?", id, organizationID).First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &service, nil
}

func (r *medicalServiceRepository) FindActive(ctx context.Context, db *gorm.DB, organizationID uuid.UUID) ([]entity.MedicalService, error) {
	var services []entity.MedicalService
	err := db.WithContext(ctx).
		Where("organization_id = ? AND is_active = ?", organizationID, true).
		Order("name ASC").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}
