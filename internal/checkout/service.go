package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/rahatbaksh/bulk-order-api/internal/cart"
	"github.com/rahatbaksh/bulk-order-api/internal/events"
	"github.com/rahatbaksh/bulk-order-api/internal/lock"
	"github.com/rahatbaksh/bulk-order-api/internal/obs"
	"github.com/rahatbaksh/bulk-order-api/internal/order"
	"github.com/rahatbaksh/bulk-order-api/internal/pricing"
)

// ErrAttemptInProgress is returned when the session already has a checkout in
// flight. The second attempt is rejected, never queued behind the first.
var ErrAttemptInProgress = errors.New("checkout: attempt already in progress for session")

// TierSource provides the authoritative bulk pricing configuration for a
// batch of products.
type TierSource interface {
	LoadBulkPricing(ctx context.Context, productIDs []int64) (pricing.Data, error)
}

// CartFactory opens a cart client bound to one storefront session. A nil
// return means the cart capability is absent.
type CartFactory func(sessionID string) cart.Client

// Input is one checkout attempt as posted by the storefront.
type Input struct {
	SessionID string       `json:"sessionId" validate:"required"`
	Lines     []order.Line `json:"lines" validate:"required,dive"`
}

// PricedLine is one consolidated line after authoritative re-pricing.
type PricedLine struct {
	ProductID      int64 `json:"productId"`
	VariantID      int64 `json:"variantId"`
	Quantity       int   `json:"quantity"`
	UnitPriceCents int64 `json:"unitPriceCents"`
	EffectiveCents int64 `json:"effectiveUnitPriceCents"`
	LineTotalCents int64 `json:"lineTotalCents"`
}

// Output is the successful checkout response.
type Output struct {
	RedirectURL     string       `json:"redirectUrl"`
	GrandTotalCents int64        `json:"grandTotalCents"`
	Items           []PricedLine `json:"items"`
}

// Service runs the whole bulk checkout flow: consolidation, authoritative
// re-pricing against the current feed configuration, serial submission to the
// cart, and redirect construction.
type Service struct {
	Tiers         TierSource
	NewCart       CartFactory
	Locks         lock.Locker
	Events        *events.Bus
	Destination   string
	SettleDelay   time.Duration
	RedirectDelay time.Duration
	LockTTL       time.Duration
	Logger        zerolog.Logger
}

// Checkout runs a complete attempt for one session. Concurrent attempts for
// the same session are rejected with ErrAttemptInProgress before any cart
// mutation happens.
func (s *Service) Checkout(ctx context.Context, in Input) (Output, error) {
	if s == nil || s.Tiers == nil || s.NewCart == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	if in.SessionID == "" {
		return Output{}, errors.New("checkout: session id is required")
	}

	var out Output
	run := func(ctx context.Context) error {
		var err error
		out, err = s.run(ctx, in)
		return err
	}

	ttl := s.LockTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	err := s.Locks.TryWithLock(ctx, "checkout:session:"+in.SessionID, ttl, run)
	if errors.Is(err, lock.ErrHeld) {
		return Output{}, ErrAttemptInProgress
	}
	return out, err
}

func (s *Service) run(ctx context.Context, in Input) (Output, error) {
	lines, err := order.Consolidate(in.Lines)
	if err != nil {
		s.observe(ctx, in.SessionID, resultFor(err), err)
		return Output{}, err
	}

	productIDs := make([]int64, 0, len(lines))
	seen := make(map[int64]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		productIDs = append(productIDs, l.ProductID)
	}
	data, err := s.Tiers.LoadBulkPricing(ctx, productIDs)
	if err != nil {
		s.observe(ctx, in.SessionID, "pricing_error", err)
		return Output{}, fmt.Errorf("checkout: load pricing: %w", err)
	}

	priced := make([]PricedLine, 0, len(lines))
	items := make([]cart.Item, 0, len(lines))
	var grand int64
	for _, l := range lines {
		base := l.UnitPriceCents
		tiers := pricing.Resolve(data, l.ProductID, l.VariantID)
		effective := pricing.EffectivePrice(base, l.Quantity, tiers)
		if obs.DiscountApplicationTotal != nil {
			obs.DiscountApplicationTotal.WithLabelValues(strconv.FormatBool(effective != base)).Inc()
		}
		total := effective * int64(l.Quantity)
		grand += total
		priced = append(priced, PricedLine{
			ProductID:      l.ProductID,
			VariantID:      l.VariantID,
			Quantity:       l.Quantity,
			UnitPriceCents: base,
			EffectiveCents: effective,
			LineTotalCents: total,
		})
		items = append(items, cart.Item{
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: effective,
		})
	}

	client := s.NewCart(in.SessionID)
	if client == nil {
		s.observe(ctx, in.SessionID, "cart_unavailable", cart.ErrUnavailable)
		return Output{}, cart.ErrUnavailable
	}

	seq := &Sequencer{
		Cart:          client,
		Destination:   s.Destination,
		SettleDelay:   s.SettleDelay,
		RedirectDelay: s.RedirectDelay,
	}
	redirect, err := seq.Run(ctx, items)
	if err != nil {
		if obs.CheckoutItemsSubmitted != nil {
			var itemErr *ItemError
			if errors.As(err, &itemErr) {
				obs.CheckoutItemsSubmitted.Add(float64(itemErr.Index))
			}
		}
		s.observe(ctx, in.SessionID, resultFor(err), err)
		return Output{}, err
	}
	if obs.CheckoutItemsSubmitted != nil {
		obs.CheckoutItemsSubmitted.Add(float64(len(items)))
	}

	out := Output{RedirectURL: redirect, GrandTotalCents: grand, Items: priced}
	s.emit(ctx, events.TopicCheckoutCompleted, in.SessionID, map[string]any{
		"lines":           len(priced),
		"grandTotalCents": grand,
	})
	if obs.CheckoutAttemptTotal != nil {
		obs.CheckoutAttemptTotal.WithLabelValues("completed").Inc()
	}
	return out, nil
}

// observe records a failed attempt in the log, metrics and the event stream.
func (s *Service) observe(ctx context.Context, sessionID, result string, cause error) {
	s.Logger.Warn().Str("session_id", sessionID).Str("result", result).Err(cause).Msg("checkout attempt failed")
	if obs.CheckoutAttemptTotal != nil {
		obs.CheckoutAttemptTotal.WithLabelValues(result).Inc()
	}
	s.emit(ctx, events.TopicCheckoutFailed, sessionID, map[string]any{
		"result": result,
		"cause":  cause.Error(),
	})
}

func (s *Service) emit(ctx context.Context, topic, sessionID string, payload any) {
	if s.Events == nil {
		return
	}
	if _, err := s.Events.Emit(ctx, topic, sessionID, payload); err != nil {
		s.Logger.Error().Err(err).Str("topic", topic).Msg("emit checkout event")
	}
}

func resultFor(err error) string {
	var itemErr *ItemError
	switch {
	case errors.Is(err, order.ErrEmptyOrder):
		return "empty_order"
	case errors.Is(err, order.ErrMixedPaymentKinds):
		return "mixed_payment_kind"
	case errors.Is(err, cart.ErrUnavailable):
		return "cart_unavailable"
	case errors.Is(err, ErrDestinationMissing):
		return "destination_missing"
	case errors.As(err, &itemErr):
		return "item_submission_failed"
	default:
		return "error"
	}
}
