package payment

import "testing"

func TestPickRulePrefersCategoryMatch(t *testing.T) {
	rules := []CommissionRule{
		{ID: "r-any", Tier: "gold", Active: true, PercentBps: 300},
		{ID: "r-suv", Tier: "gold", Category: "suv", Active: true, PercentBps: 200},
		{ID: "r-off", Tier: "gold", Category: "sedan", Active: false, PercentBps: 100},
		{ID: "r-silver", Tier: "silver", Active: true, PercentBps: 500},
	}

	if r := PickRule(rules, "gold", "suv"); r == nil || r.ID != "r-suv" {
		t.Fatalf("want r-suv, got %+v", r)
	}
	if r := PickRule(rules, "gold", "coupe"); r == nil || r.ID != "r-any" {
		t.Fatalf("want tier-only fallback r-any, got %+v", r)
	}
	if r := PickRule(rules, "gold", "sedan"); r == nil || r.ID != "r-any" {
		t.Fatalf("inactive category rule must not match, got %+v", r)
	}
	if r := PickRule(rules, "standard", ""); r != nil {
		t.Fatalf("no rule for tier: want nil, got %+v", r)
	}
}

func TestCommission(t *testing.T) {
	cases := []struct {
		name string
		rule *CommissionRule
		sale int64
		want int64
	}{
		{"nil rule", nil, 100_000, 0},
		{"percent only", &CommissionRule{PercentBps: 250}, 100_000, 2_500},
		{"percent plus flat", &CommissionRule{PercentBps: 250, FlatFeeCents: 500}, 100_000, 3_000},
		{"floor applies", &CommissionRule{PercentBps: 100, MinCents: 5_000}, 100_000, 5_000},
		{"cap applies", &CommissionRule{PercentBps: 1_000, MaxCents: 4_000}, 100_000, 4_000},
		{"zero sale", &CommissionRule{PercentBps: 250}, 0, 0},
		{"negative sale", &CommissionRule{PercentBps: 250}, -100, 0},
		{"truncates fraction", &CommissionRule{PercentBps: 333}, 999, 33},
	}
	for _, tc := range cases {
		if got := Commission(tc.rule, tc.sale); got != tc.want {
			t.Fatalf("%s: Commission = %d, want %d", tc.name, got, tc.want)
		}
	}
}
