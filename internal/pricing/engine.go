package pricing

import "math"

// Money represents a monetary value stored in minor units.
type Money = int64

// Tier maps a quantity range to a percentage discount. MaxQty of zero means
// the range is unbounded above.
type Tier struct {
	MinQty          int     `json:"minQty"`
	MaxQty          int     `json:"maxQty"`
	DiscountPercent float64 `json:"discountPercent"`
}

// Matches reports whether the tier applies to the given quantity.
func (t Tier) Matches(qty int) bool {
	return qty >= t.MinQty && (t.MaxQty == 0 || qty <= t.MaxQty)
}

// EffectivePrice returns the unit price after applying the first matching
// tier. Tiers are scanned in stored order, so callers must only pass
// sanitized (min-quantity ascending) tier lists. When no tier matches, or the
// quantity is below one, the base price is returned unchanged.
//
// Rounding is half-away-from-zero to the nearest cent, matching the storefront
// preview calculation. Both sides must agree on this rule: the previewed price
// is a promise about what checkout charges.
func EffectivePrice(unitPrice Money, qty int, tiers []Tier) Money {
	if len(tiers) == 0 || qty < 1 {
		return unitPrice
	}
	for _, t := range tiers {
		if t.Matches(qty) {
			return Money(math.Round(float64(unitPrice) * (1 - t.DiscountPercent/100)))
		}
	}
	return unitPrice
}

// LineTotal computes the row total for a quantity at its effective unit
// price. Discounts never blend across lines; each line is priced on its own.
func LineTotal(unitPrice Money, qty int, tiers []Tier) Money {
	if qty < 1 {
		return 0
	}
	return EffectivePrice(unitPrice, qty, tiers) * Money(qty)
}
