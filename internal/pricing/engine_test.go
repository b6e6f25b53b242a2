package pricing

import "testing"

func TestEffectivePriceFirstMatch(t *testing.T) {
	tiers := []Tier{
		{MinQty: 1, MaxQty: 4, DiscountPercent: 10},
		{MinQty: 5, MaxQty: 0, DiscountPercent: 20},
	}
	cases := []struct {
		qty  int
		want Money
	}{
		{qty: 4, want: 900},
		{qty: 5, want: 800},
		{qty: 0, want: 1000},
	}
	for _, tc := range cases {
		if got := EffectivePrice(1000, tc.qty, tiers); got != tc.want {
			t.Fatalf("qty %d: expected %d, got %d", tc.qty, tc.want, got)
		}
	}
}

func TestEffectivePriceNoTiers(t *testing.T) {
	if got := EffectivePrice(1250, 7, nil); got != 1250 {
		t.Fatalf("expected base price 1250, got %d", got)
	}
}

func TestEffectivePriceNoMatchReturnsBase(t *testing.T) {
	tiers := []Tier{{MinQty: 10, MaxQty: 20, DiscountPercent: 50}}
	if got := EffectivePrice(1000, 5, tiers); got != 1000 {
		t.Fatalf("expected base price when below first tier, got %d", got)
	}
}

func TestEffectivePriceUnboundedTier(t *testing.T) {
	tiers := []Tier{{MinQty: 50, MaxQty: 0, DiscountPercent: 25}}
	if got := EffectivePrice(5000, 50, tiers); got != 3750 {
		t.Fatalf("expected 3750 at the tier boundary, got %d", got)
	}
	if got := EffectivePrice(5000, 1050, tiers); got != 3750 {
		t.Fatalf("expected 3750 far past the boundary, got %d", got)
	}
}

func TestEffectivePriceRounding(t *testing.T) {
	// 999 * 0.85 = 849.15 -> 849; 999 * 0.875 = 874.125 -> 874; 995 * 0.5 = 497.5 -> 498
	cases := []struct {
		unit    Money
		percent float64
		want    Money
	}{
		{unit: 999, percent: 15, want: 849},
		{unit: 999, percent: 12.5, want: 874},
		{unit: 995, percent: 50, want: 498},
	}
	for _, tc := range cases {
		tiers := []Tier{{MinQty: 1, MaxQty: 0, DiscountPercent: tc.percent}}
		if got := EffectivePrice(tc.unit, 1, tiers); got != tc.want {
			t.Fatalf("unit %d at %.2f%%: expected %d, got %d", tc.unit, tc.percent, tc.want, got)
		}
	}
}

func TestLineTotal(t *testing.T) {
	tiers := []Tier{
		{MinQty: 10, MaxQty: 49, DiscountPercent: 15},
		{MinQty: 50, MaxQty: 0, DiscountPercent: 25},
	}
	if got := LineTotal(5000, 60, tiers); got != 225000 {
		t.Fatalf("expected row total 225000, got %d", got)
	}
	if got := LineTotal(5000, 0, tiers); got != 0 {
		t.Fatalf("expected zero total for zero quantity, got %d", got)
	}
}
