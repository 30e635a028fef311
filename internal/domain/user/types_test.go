//go:build unit

package user_test

import (
	"math"
	"testing"

	"rentaldesk/internal/domain/user"

	"github.com/stretchr/testify/assert"
)

func TestSaleAuthorityLimitCents(t *testing.T) {
	cases := []struct {
		role     user.Role
		expected int64
	}{
		{user.RoleStaff, 100_000},
		{user.RoleSupervisor, 500_000},
		{user.RoleManager, 2_000_000},
		{user.RoleSeniorManager, math.MaxInt64},
		{user.RoleAdmin, math.MaxInt64},
	}

	for _, tc := range cases {
		t.Run(tc.role.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.role.SaleAuthorityLimitCents())
		})
	}
}

func TestNewRole(t *testing.T) {
	role, err := user.NewRole("manager")
	assert.NoError(t, err)
	assert.Equal(t, user.RoleManager, role)

	_, err = user.NewRole("intern")
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}
