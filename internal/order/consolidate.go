package order

import "errors"

// PaymentKind distinguishes one-time purchases from recurring subscriptions.
// A single order never mixes the two.
type PaymentKind string

const (
	KindOneTime      PaymentKind = "onetime"
	KindSubscription PaymentKind = "subscription"
)

var (
	// ErrEmptyOrder is returned when no line survives consolidation.
	ErrEmptyOrder = errors.New("order has no purchasable lines")
	// ErrMixedPaymentKinds is returned when one-time and subscription lines
	// appear in the same order.
	ErrMixedPaymentKinds = errors.New("order mixes one-time and subscription lines")
)

// Line is one raw row of a bulk order as submitted by the storefront. The
// unit price is the base catalog price the storefront was shown; discounts
// are never taken from the client.
type Line struct {
	ProductID      int64       `json:"productId"`
	VariantID      int64       `json:"variantId"`
	Quantity       int         `json:"quantity"`
	Kind           PaymentKind `json:"paymentKind"`
	UnitPriceCents int64       `json:"unitPriceCents"`
}

// Consolidate collapses raw storefront rows into the canonical line set that
// gets priced and submitted to the cart.
//
// Rows without a variant or with a non-positive quantity are dropped, not
// rejected; the storefront renders empty quantity inputs as zero rows.
// One-time rows for the same variant merge by summing quantities.
// Subscription rows are pinned to quantity one and duplicates collapse, since
// a recurring plan cannot be purchased in bulk. Output preserves the order of
// first appearance.
func Consolidate(lines []Line) ([]Line, error) {
	merged := make([]Line, 0, len(lines))
	index := make(map[int64]int, len(lines))
	var kind PaymentKind
	for _, l := range lines {
		if l.VariantID == 0 || l.Quantity < 1 {
			continue
		}
		if l.Kind == "" {
			l.Kind = KindOneTime
		}
		if kind == "" {
			kind = l.Kind
		} else if l.Kind != kind {
			return nil, ErrMixedPaymentKinds
		}
		if l.Kind == KindSubscription {
			l.Quantity = 1
		}
		if at, seen := index[l.VariantID]; seen {
			if l.Kind == KindOneTime {
				merged[at].Quantity += l.Quantity
			}
			continue
		}
		index[l.VariantID] = len(merged)
		merged = append(merged, l)
	}
	if len(merged) == 0 {
		return nil, ErrEmptyOrder
	}
	return merged, nil
}
