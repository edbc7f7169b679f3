package repository

import (
	"context"

	"medbook/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrganizationRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Organization, error)
}

type MemberRepository interface {
	// FindMembership returns nil when the user is not an active member
	FindMembership(ctx context.Context, db *gorm.DB, organizationID, userID uuid.UUID) (*entity.OrganizationMember, error)
}
