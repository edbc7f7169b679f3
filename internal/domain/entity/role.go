package entity

import "strings"

// Role represents a member's role inside an organization
type Role string

const (
	RolePatient    Role = "patient"
	RoleStaff      Role = "staff"
	RoleDoctor     Role = "doctor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// ParseRole normalizes a role name. Unknown names are rejected.
func ParseRole(name string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(name)))
	if !role.IsValid() {
		return "", false
	}
	return role, true
}

func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleStaff, RoleDoctor, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsPrivileged reports whether the role books on behalf of others
func (r Role) IsPrivileged() bool {
	switch r {
	case RoleStaff, RoleDoctor, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanManageSchedules reports whether the role may edit weekly templates
func (r Role) CanManageSchedules() bool {
	switch r {
	case RoleStaff, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}
