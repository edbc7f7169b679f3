package availability

import (
	"math"
	"time"

	"medbook/internal/domain/entity"
)

// RuleSet is a booking-window policy.
type RuleSet int

const (
	// StandardRules require the slot to start at least the advance notice after now.
	StandardRules RuleSet = iota
	// PrivilegedRules only refuse slots that already started.
	PrivilegedRules
)

var roleRules = map[entity.Role]RuleSet{
	entity.RolePatient:    StandardRules,
	entity.RoleStaff:      PrivilegedRules,
	entity.RoleDoctor:     PrivilegedRules,
	entity.RoleAdmin:      PrivilegedRules,
	entity.RoleSuperAdmin: PrivilegedRules,
}

// RuleFor maps a role to its rule family. forceStandard substitutes the
// standard family regardless of role. Unknown roles get standard rules.
func RuleFor(role entity.Role, forceStandard bool) RuleSet {
	if forceStandard {
		return StandardRules
	}
	if rule, ok := roleRules[role]; ok {
		return rule
	}
	return StandardRules
}

func (r RuleSet) String() string {
	if r == PrivilegedRules {
		return "privileged"
	}
	return "standard"
}

// check returns the reason a slot starting at slotStart is outside the booking
// window, or "" when it is bookable.
func (r RuleSet) check(slotStart, now time.Time, advance time.Duration) (string, int) {
	if r == PrivilegedRules {
		if !slotStart.After(now) {
			return entity.ReasonTimeAlreadyPassed, 0
		}
		return "", 0
	}
	if slotStart.Sub(now) < advance {
		return entity.ReasonAdvanceBookingRequired, int(math.Ceil(advance.Hours()))
	}
	return "", 0
}
