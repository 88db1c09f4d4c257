package payment

// PickRule chooses the rule that prices a sale: among active rules for the
// tier, a tier+category match beats a tier-only match. Returns nil when no
// rule applies.
func PickRule(rules []CommissionRule, tier, category string) *CommissionRule {
	var tierOnly *CommissionRule
	for i := range rules {
		r := &rules[i]
		if !r.Active || r.Tier != tier {
			continue
		}
		if r.Category != "" {
			if category != "" && r.Category == category {
				return r
			}
			continue
		}
		if tierOnly == nil {
			tierOnly = r
		}
	}
	return tierOnly
}

// Commission computes the fee for a sale under rule:
// saleCents*bps/10000 + flat, clamped to [min, max] where set.
func Commission(rule *CommissionRule, saleCents int64) int64 {
	if rule == nil || saleCents <= 0 {
		return 0
	}
	fee := saleCents*int64(rule.PercentBps)/10000 + rule.FlatFeeCents
	if rule.MinCents > 0 && fee < rule.MinCents {
		fee = rule.MinCents
	}
	if rule.MaxCents > 0 && fee > rule.MaxCents {
		fee = rule.MaxCents
	}
	if fee < 0 {
		fee = 0
	}
	return fee
}
