package repository

import (
	"context"
	"errors"

	"medbook/internal/domain/entity"
	domainRepo "medbook/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type organizationRepository struct{}

func NewOrganizationRepository() domainRepo.OrganizationRepository {
	return &organizationRepository{}
}

func (r *organizationRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Organization, error) {
	var organization entity.Organization
	err := db.WithContext(ctx).Where("id = ?", id).First(&organization).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &organization, nil
}

type memberRepository struct{}

func NewMemberRepository() domainRepo.MemberRepository {
	return &memberRepository{}
}

func (r *memberRepository) FindMembership(ctx context.Context, db *gorm.DB, organizationID, userID uuid.UUID) (*entity.OrganizationMember, error) {
	var member entity.OrganizationMember
	err := db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ? AND is_active = ?", organizationID, userID, true).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}
