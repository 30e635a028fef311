package risk

import (
	"errors"

	"rentaldesk/internal/domain/user"
)

var (
	ErrInvalidTier      = errors.New("invalid approval tier")
	ErrInsufficientTier = errors.New("approver tier is below the required tier")
)

// Tier is the minimum authority level needed to move a request out of
// AWAITING_APPROVAL.
type Tier int

const (
	TierNone Tier = iota
	TierSupervisor
	TierManager
	TierSeniorManager
)

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "NONE"
	case TierSupervisor:
		return "SUPERVISOR"
	case TierManager:
		return "MANAGER"
	case TierSeniorManager:
		return "SENIOR_MANAGER"
	default:
		return "UNKNOWN"
	}
}

func ParseTier(s string) (Tier, error) {
	switch s {
	case "NONE":
		return TierNone, nil
	case "SUPERVISOR":
		return TierSupervisor, nil
	case "MANAGER":
		return TierManager, nil
	case "SENIOR_MANAGER":
		return TierSeniorManager, nil
	default:
		return TierNone, ErrInvalidTier
	}
}

// Covers reports whether an approver holding this tier satisfies the
// required tier.
func (t Tier) Covers(required Tier) bool {
	return t >= required
}

// TierForRole maps the staff role hierarchy onto approval tiers.
func TierForRole(r user.Role) Tier {
	switch r {
	case user.RoleSupervisor:
		return TierSupervisor
	case user.RoleManager:
		return TierManager
	case user.RoleSeniorManager, user.RoleAdmin:
		return TierSeniorManager
	default:
		return TierNone
	}
}

// Assessment is the evaluator's verdict over one conflict set.
type Assessment struct {
	RequiresApproval   bool
	Tier               Tier
	RevenueImpactCents int64
	AffectedCustomers  int
	CriticalConflicts  int
}
