//go:build unit

package risk_test

import (
	"testing"

	"rentaldesk/internal/domain/conflict"
	"rentaldesk/internal/domain/failsafe"
	"rentaldesk/internal/domain/risk"
	"rentaldesk/internal/domain/user"
	"rentaldesk/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildConflicts(t *testing.T, mutates ...func(*builder.ConflictBuilder)) []*conflict.Conflict {
	t.Helper()
	out := make([]*conflict.Conflict, 0, len(mutates))
	for _, mutate := range mutates {
		c, err := builder.NewConflictBuilder().With(mutate).BuildDomain()
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

func TestEvaluate(t *testing.T) {
	cfg := failsafe.DefaultConfig()
	noLimit := user.RoleAdmin.SaleAuthorityLimitCents()

	t.Run("no conflicts and low value needs no approval", func(t *testing.T) {
		a := risk.Evaluate(nil, 200_000, noLimit, cfg)
		assert.False(t, a.RequiresApproval)
		assert.Equal(t, risk.TierNone, a.Tier)
		assert.Zero(t, a.RevenueImpactCents)
		assert.Zero(t, a.AffectedCustomers)
	})

	t.Run("critical conflict escalates to manager", func(t *testing.T) {
		conflicts := buildConflicts(t, func(b *builder.ConflictBuilder) {
			b.Severity = conflict.SeverityCritical
		})
		a := risk.Evaluate(conflicts, 200_000, noLimit, cfg)
		assert.True(t, a.RequiresApproval)
		assert.Equal(t, risk.TierManager, a.Tier)
		assert.Equal(t, 1, a.CriticalConflicts)
	})

	t.Run("revenue over threshold escalates to manager", func(t *testing.T) {
		conflicts := buildConflicts(t, func(b *builder.ConflictBuilder) {
			b.ImpactCents = cfg.RevenueThresholdCents + 1
		})
		a := risk.Evaluate(conflicts, 200_000, noLimit, cfg)
		assert.True(t, a.RequiresApproval)
		assert.Equal(t, risk.TierManager, a.Tier)
	})

	t.Run("revenue exactly at threshold does not fire", func(t *testing.T) {
		conflicts := buildConflicts(t, func(b *builder.ConflictBuilder) {
			b.ImpactCents = cfg.RevenueThresholdCents
		})
		a := risk.Evaluate(conflicts, 200_000, noLimit, cfg)
		assert.False(t, a.RequiresApproval)
	})

	t.Run("more than three distinct customers escalates to supervisor", func(t *testing.T) {
		distinct := func(b *builder.ConflictBuilder) {
			id := uuid.New()
			b.CustomerID = &id
			b.ImpactCents = 0
		}
		conflicts := buildConflicts(t, distinct, distinct, distinct, distinct)
		a := risk.Evaluate(conflicts, 200_000, noLimit, cfg)
		assert.True(t, a.RequiresApproval)
		assert.Equal(t, risk.TierSupervisor, a.Tier)
		assert.Equal(t, 4, a.AffectedCustomers)
	})

	t.Run("same customer counted once", func(t *testing.T) {
		shared := uuid.New()
		repeat := func(b *builder.ConflictBuilder) {
			b.CustomerID = &shared
			b.ImpactCents = 0
		}
		conflicts := buildConflicts(t, repeat, repeat, repeat, repeat, repeat)
		a := risk.Evaluate(conflicts, 200_000, noLimit, cfg)
		assert.Equal(t, 1, a.AffectedCustomers)
		assert.False(t, a.RequiresApproval)
	})

	t.Run("high value item escalates to manager", func(t *testing.T) {
		a := risk.Evaluate(nil, cfg.HighValueThresholdCents+1, noLimit, cfg)
		assert.True(t, a.RequiresApproval)
		assert.Equal(t, risk.TierManager, a.Tier)
	})

	t.Run("value above actor authority escalates to senior manager", func(t *testing.T) {
		staffLimit := user.RoleStaff.SaleAuthorityLimitCents()
		a := risk.Evaluate(nil, staffLimit+1, staffLimit, cfg)
		assert.True(t, a.RequiresApproval)
		assert.Equal(t, risk.TierSeniorManager, a.Tier)
	})

	t.Run("first fired rule fixes the tier", func(t *testing.T) {
		// Customer rule fires (supervisor) alongside the authority rule
		// (senior manager); the customer rule comes first in order.
		distinct := func(b *builder.ConflictBuilder) {
			id := uuid.New()
			b.CustomerID = &id
			b.ImpactCents = 0
		}
		conflicts := buildConflicts(t, distinct, distinct, distinct, distinct)
		staffLimit := user.RoleStaff.SaleAuthorityLimitCents()
		a := risk.Evaluate(conflicts, staffLimit+1, staffLimit, cfg)
		assert.True(t, a.RequiresApproval)
		assert.Equal(t, risk.TierSupervisor, a.Tier)
	})
}

func TestTierForRole(t *testing.T) {
	assert.Equal(t, risk.TierNone, risk.TierForRole(user.RoleStaff))
	assert.Equal(t, risk.TierSupervisor, risk.TierForRole(user.RoleSupervisor))
	assert.Equal(t, risk.TierManager, risk.TierForRole(user.RoleManager))
	assert.Equal(t, risk.TierSeniorManager, risk.TierForRole(user.RoleSeniorManager))
	assert.Equal(t, risk.TierSeniorManager, risk.TierForRole(user.RoleAdmin))
}

func TestTierCovers(t *testing.T) {
	assert.True(t, risk.TierSeniorManager.Covers(risk.TierManager))
	assert.True(t, risk.TierManager.Covers(risk.TierManager))
	assert.False(t, risk.TierSupervisor.Covers(risk.TierManager))
	assert.True(t, risk.TierNone.Covers(risk.TierNone))
}
