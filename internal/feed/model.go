package feed

import (
	"time"

	"github.com/rahatbaksh/bulk-order-api/internal/pricing"
)

// Scope names the precedence level a feed applies at.
const (
	ScopeGlobal  = "global"
	ScopeProduct = "product"
)

// Enabled flag values. Anything other than "yes" excludes the feed from
// resolution entirely.
const (
	EnabledYes = "yes"
	EnabledNo  = "no"
)

// Feed is a named, scoped configuration of discount tiers.
type Feed struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Scope      string         `json:"scope"`
	ProductID  int64          `json:"productId,omitempty"`
	VariantIDs []int64        `json:"variantIds,omitempty"`
	Enabled    string         `json:"enabled"`
	Tiers      []pricing.Tier `json:"tiers"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// Active reports whether the feed participates in tier resolution.
func (f Feed) Active() bool {
	return f.Enabled == EnabledYes && len(f.Tiers) > 0
}
