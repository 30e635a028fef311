package user

import "math"

type Role string

const (
	RoleStaff         Role = "staff"
	RoleSupervisor    Role = "supervisor"
	RoleManager       Role = "manager"
	RoleSeniorManager Role = "senior_manager"
	RoleAdmin         Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleStaff, RoleSupervisor, RoleManager, RoleSeniorManager, RoleAdmin:
		return true
	default:
		return false
	}
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

// SaleAuthorityLimitCents is the highest item price a role may convert to
// "for sale" on its own authority.
func (r Role) SaleAuthorityLimitCents() int64 {
	switch r {
	case RoleStaff:
		return 100_000
	case RoleSupervisor:
		return 500_000
	case RoleManager:
		return 2_000_000
	case RoleSeniorManager, RoleAdmin:
		return math.MaxInt64
	default:
		return 0
	}
}
