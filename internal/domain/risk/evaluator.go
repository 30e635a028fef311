package risk

import (
	"rentaldesk/internal/domain/conflict"
	"rentaldesk/internal/domain/failsafe"
)

// Evaluate aggregates a conflict set into an approval decision. Rules run in
// a fixed order; the first rule that fires fixes the tier, while
// RequiresApproval is the OR of every rule.
func Evaluate(
	conflicts []*conflict.Conflict,
	itemValueCents int64,
	actorAuthorityLimitCents int64,
	cfg failsafe.Config,
) Assessment {
	a := Assessment{Tier: TierNone}

	customers := make(map[string]struct{})
	for _, c := range conflicts {
		a.RevenueImpactCents += c.ImpactCents()
		if c.Severity() == conflict.SeverityCritical {
			a.CriticalConflicts++
		}
		if id := c.CustomerID(); id != nil {
			customers[id.String()] = struct{}{}
		}
	}
	a.AffectedCustomers = len(customers)

	rules := []struct {
		fired bool
		tier  Tier
	}{
		{a.CriticalConflicts > 0, TierManager},
		{a.RevenueImpactCents > cfg.RevenueThresholdCents, TierManager},
		{a.AffectedCustomers > cfg.CustomerThreshold, TierSupervisor},
		{itemValueCents > cfg.HighValueThresholdCents, TierManager},
		{actorAuthorityLimitCents < itemValueCents, TierSeniorManager},
	}

	for _, r := range rules {
		if !r.fired {
			continue
		}
		a.RequiresApproval = true
		if a.Tier == TierNone {
			a.Tier = r.tier
		}
	}

	return a
}
