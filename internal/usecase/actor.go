package usecase

import (
	"context"
	"errors"
	"fmt"

	"medbook/internal/delivery/http/middleware"
	"medbook/internal/domain/entity"
	"medbook/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrUserNotInContext     = errors.New("user not found in context")
	ErrInvalidIdentifier    = errors.New("invalid identifier")
)

// Postgres error codes the usecases translate
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgExclusionViolation  = "23P01"
)

// txFunc runs fn inside a transaction
type txFunc func(ctx context.Context, fn func(tx *gorm.DB) error) error

func gormTx(db *gorm.DB) txFunc {
	return func(ctx context.Context, fn func(tx *gorm.DB) error) error {
		return db.WithContext(ctx).Transaction(fn)
	}
}

// resolveActorRole returns the caller's role inside an organization.
// Anonymous callers and non-members are patients.
func resolveActorRole(ctx context.Context, db *gorm.DB, memberRepo repository.MemberRepository, organizationID uuid.UUID) (entity.Role, error) {
	if role, ok := middleware.GetOrgRoleFromContext(ctx, organizationID); ok {
		return role, nil
	}

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return entity.RolePatient, nil
	}

	member, err := memberRepo.FindMembership(ctx, db, organizationID, userID)
	if err != nil {
		return "", fmt.Errorf("resolve membership of %s: %w", userID, err)
	}
	if member == nil || !member.Role.IsValid() {
		return entity.RolePatient, nil
	}
	return member.Role, nil
}

// effectiveRole lets privileged callers preview another role's view.
// A non-privileged caller cannot select a more permissive rule family.
func effectiveRole(resolved entity.Role, requested string) entity.Role {
	if requested == "" || !resolved.IsPrivileged() {
		return resolved
	}
	if role, ok := entity.ParseRole(requested); ok {
		return role
	}
	// unknown names fall back to the standard rules in the calculator
	return entity.Role(requested)
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func parseOptionalUUID(value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
