package middleware

import (
	"context"
	"net/http"

	"medbook/internal/domain/entity"
	"medbook/internal/domain/repository"
	"medbook/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type orgRole struct {
	organizationID uuid.UUID
	role           entity.Role
}

// OrgRoleMiddleware authorizes org-scoped routes against organization_members
type OrgRoleMiddleware struct {
	db         *gorm.DB
	log        *logrus.Logger
	memberRepo repository.MemberRepository
}

func NewOrgRoleMiddleware(db *gorm.DB, log *logrus.Logger, memberRepo repository.MemberRepository) *OrgRoleMiddleware {
	return &OrgRoleMiddleware{
		db:         db,
		log:        log,
		memberRepo: memberRepo,
	}
}

// RequireOrgRole must run after Authenticate on a route with an {organizationId} variable.
// The resolved role is stored in the context for the usecases.
func (m *OrgRoleMiddleware) RequireOrgRole(allowed func(entity.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			organizationID, err := uuid.Parse(mux.Vars(r)["organizationId"])
			if err != nil {
				response.BadRequest(w, "Invalid organization ID")
				return
			}

			userID, ok := GetUserIDFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "User information not found")
				return
			}

			member, err := m.memberRepo.FindMembership(r.Context(), m.db, organizationID, userID)
			if err != nil {
				m.log.Warnf("Failed to resolve membership of %s in %s: %+v", userID, organizationID, err)
				response.InternalServerError(w, "Failed to resolve organization role")
				return
			}
			if member == nil || !allowed(member.Role) {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			ctx := ContextWithOrgRole(r.Context(), organizationID, member.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScheduleManager admits staff, admins and superadmins
func (m *OrgRoleMiddleware) RequireScheduleManager(next http.Handler) http.Handler {
	return m.RequireOrgRole(entity.Role.CanManageSchedules)(next)
}

// RequireStaff admits every privileged role
func (m *OrgRoleMiddleware) RequireStaff(next http.Handler) http.Handler {
	return m.RequireOrgRole(entity.Role.IsPrivileged)(next)
}

func ContextWithOrgRole(ctx context.Context, organizationID uuid.UUID, role entity.Role) context.Context {
	return context.WithValue(ctx, OrgRoleKey, orgRole{organizationID: organizationID, role: role})
}

// GetOrgRoleFromContext returns the role resolved for organizationID, if any
func GetOrgRoleFromContext(ctx context.Context, organizationID uuid.UUID) (entity.Role, bool) {
	value, ok := ctx.Value(OrgRoleKey).(orgRole)
	if !ok || value.organizationID != organizationID {
		return "", false
	}
	return value.role, true
}
