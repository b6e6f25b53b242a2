package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rahatbaksh/bulk-order-api/internal/cart"
)

// ErrDestinationMissing is returned when no checkout destination URL is
// configured. This is a deployment fault, not a retryable condition.
var ErrDestinationMissing = errors.New("checkout: destination url not configured")

// ItemError reports which consolidated item failed to reach the cart.
// Items before Index are already committed in the external cart; there is no
// rollback, the caller surfaces the partial state instead.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("checkout: item %d submission failed: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// SeqState tracks the sequencer through one checkout attempt.
type SeqState int

const (
	SeqIdle SeqState = iota
	SeqSubmitting
	SeqRedirecting
	SeqDone
	SeqFailed
)

func (s SeqState) String() string {
	switch s {
	case SeqIdle:
		return "idle"
	case SeqSubmitting:
		return "submitting"
	case SeqRedirecting:
		return "redirecting"
	case SeqDone:
		return "done"
	case SeqFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Sequencer drives one checkout attempt: consolidated items go to the cart
// strictly one at a time, then the cart token is read and appended to the
// destination URL. A Sequencer value is owned by a single attempt and is not
// reusable; a failed attempt restarts from item zero with a fresh Sequencer.
//
// The cart's consistency under concurrent mutation is unknown, so serial
// submission with a settle pause after each accepted item is a correctness
// requirement here, not tuning.
type Sequencer struct {
	Cart          cart.Client
	Destination   string
	SettleDelay   time.Duration
	RedirectDelay time.Duration

	state  SeqState
	cursor int
}

// State reports the current attempt state.
func (s *Sequencer) State() SeqState { return s.state }

// FailedAt returns the cursor of the failing item, valid only in SeqFailed.
func (s *Sequencer) FailedAt() int { return s.cursor }

// Run submits every item in order and returns the redirect URL. On the first
// rejected item it stops with an *ItemError and never resubmits; earlier
// items stay committed in the cart.
func (s *Sequencer) Run(ctx context.Context, items []cart.Item) (string, error) {
	if s.Cart == nil {
		s.state = SeqFailed
		return "", cart.ErrUnavailable
	}
	if strings.TrimSpace(s.Destination) == "" {
		s.state = SeqFailed
		return "", ErrDestinationMissing
	}
	for i, item := range items {
		s.state = SeqSubmitting
		s.cursor = i
		if err := s.Cart.AddItem(ctx, item); err != nil {
			s.state = SeqFailed
			return "", &ItemError{Index: i, Err: err}
		}
		if err := s.pause(ctx, s.SettleDelay); err != nil {
			s.state = SeqFailed
			return "", &ItemError{Index: i, Err: err}
		}
	}
	s.state = SeqRedirecting
	if err := s.pause(ctx, s.RedirectDelay); err != nil {
		s.state = SeqFailed
		return "", err
	}
	token, err := s.Cart.Token(ctx)
	if err != nil {
		// The cart is populated; a missing token only loses cart pinning.
		token = ""
	}
	s.state = SeqDone
	return AppendToken(s.Destination, token), nil
}

// pause waits for the settle delay, aborting early on context cancellation.
func (s *Sequencer) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// AppendToken attaches the cart token to the destination URL, picking the
// query separator based on whether the URL already carries one.
func AppendToken(destination, token string) string {
	if token == "" {
		return destination
	}
	sep := "?"
	if strings.Contains(destination, "?") {
		sep = "&"
	}
	return destination + sep + "cart_hash=" + url.QueryEscape(token)
}
