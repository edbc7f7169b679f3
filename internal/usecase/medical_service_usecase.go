package usecase

import (
	"context"

	"medbook/internal/converter"
	"medbook/internal/delivery/dto"
	"medbook/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type MedicalServiceUsecase interface {
	ListServices(ctx context.Context, organizationID uuid.UUID) (*dto.MedicalServiceListResponse, error)
}

type medicalServiceUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	serviceRepo repository.MedicalServiceRepository
}

func NewMedicalServiceUsecase(db *gorm.DB, log *logrus.Logger, serviceRepo repository.MedicalServiceRepository) MedicalServiceUsecase {
	return &medicalServiceUsecase{
		db:          db,
		log:         log,
		serviceRepo: serviceRepo,
	}
}

func (u *medicalServiceUsecase) ListServices(ctx context.Context, organizationID uuid.UUID) (*dto.MedicalServiceListResponse, error) {
	services, err := u.serviceRepo.FindActive(ctx, u.db, organizationID)
	if err != nil {
		u.log.Warnf("Failed to list services for org %s: %+v", organizationID, err)
		return nil, err
	}
	return converter.MedicalServicesToResponse(services), nil
}
