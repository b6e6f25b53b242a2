package pricing

import (
	"math"
	"sort"
)

// Sanitize normalises raw tier configuration into a well-formed tier list.
// This is the only place untrusted feed input is cleaned; Resolve and
// EffectivePrice trust their input already passed through here.
//
// Rules, applied per tier:
//   - MinQty is floored at 1 (a tier can never match a zero quantity).
//   - MaxQty is floored at 0 (0 denotes the unbounded sentinel).
//   - A discount outside [0,100] drops the tier silently.
//   - A bounded MaxQty below MinQty drops the tier silently.
//
// Surviving tiers are sorted ascending by MinQty, which makes first-match
// scanning deterministic even when an administrator entered them out of
// order or with overlapping ranges. Sanitize is idempotent.
func Sanitize(raw []Tier) []Tier {
	out := make([]Tier, 0, len(raw))
	for _, t := range raw {
		minQty := t.MinQty
		if minQty < 1 {
			minQty = 1
		}
		maxQty := t.MaxQty
		if maxQty < 0 {
			maxQty = 0
		}
		if t.DiscountPercent < 0 || t.DiscountPercent > 100 {
			continue
		}
		if maxQty > 0 && maxQty < minQty {
			continue
		}
		out = append(out, Tier{
			MinQty:          minQty,
			MaxQty:          maxQty,
			DiscountPercent: math.Round(t.DiscountPercent*100) / 100,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MinQty < out[j].MinQty
	})
	return out
}
