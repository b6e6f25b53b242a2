package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/rahatbaksh/bulk-order-api/internal/pricing"
)

// ErrNotFound is returned when a feed id does not exist.
var ErrNotFound = errors.New("feed: not found")

// Queries is the persistence surface the store needs. Implemented by
// PGQueries in production and by struct fakes in tests.
type Queries interface {
	ListFeeds(ctx context.Context) ([]Feed, error)
	GetFeed(ctx context.Context, id int64) (Feed, error)
	InsertFeed(ctx context.Context, f Feed) (Feed, error)
	UpdateFeed(ctx context.Context, f Feed) (Feed, error)
	SetFeedEnabled(ctx context.Context, id int64, enabled string) error
	GlobalFeeds(ctx context.Context) ([]Feed, error)
	FeedsByProducts(ctx context.Context, productIDs []int64) ([]Feed, error)
}

// Store loads bulk pricing configuration and memoizes the global feed for the
// process lifetime. Feeds that are disabled or tierless never leave the
// store. Feed ordering is by id ascending, which fixes the winner when more
// than one product feed covers the same variant.
type Store struct {
	Q Queries

	mu         sync.RWMutex
	globalMemo []pricing.Tier
	memoSet    bool
}

// LoadBulkPricing fetches the global tier list and the product feeds for the
// given batch in one query per scope. The global scope is served from the
// memo after first population; Reset discards it.
func (s *Store) LoadBulkPricing(ctx context.Context, productIDs []int64) (pricing.Data, error) {
	if s == nil || s.Q == nil {
		return pricing.Data{}, errors.New("feed: store not configured")
	}
	global, err := s.globalTiers(ctx)
	if err != nil {
		return pricing.Data{}, err
	}
	data := pricing.Data{Global: global, Product: map[int64][]pricing.ProductFeed{}}
	if len(productIDs) == 0 {
		return data, nil
	}
	rows, err := s.Q.FeedsByProducts(ctx, productIDs)
	if err != nil {
		return pricing.Data{}, err
	}
	for _, f := range rows {
		if !f.Active() {
			continue
		}
		data.Product[f.ProductID] = append(data.Product[f.ProductID], pricing.ProductFeed{
			VariantIDs: f.VariantIDs,
			Tiers:      f.Tiers,
		})
	}
	return data, nil
}

// Reset drops the global memo; the next load repopulates it. Called after
// every feed write.
func (s *Store) Reset() {
	s.mu.Lock()
	s.globalMemo = nil
	s.memoSet = false
	s.mu.Unlock()
}

func (s *Store) globalTiers(ctx context.Context) ([]pricing.Tier, error) {
	s.mu.RLock()
	if s.memoSet {
		memo := s.globalMemo
		s.mu.RUnlock()
		return memo, nil
	}
	s.mu.RUnlock()

	rows, err := s.Q.GlobalFeeds(ctx)
	if err != nil {
		return nil, err
	}
	var tiers []pricing.Tier
	for _, f := range rows {
		if f.Active() {
			tiers = f.Tiers
			break
		}
	}

	s.mu.Lock()
	s.globalMemo = tiers
	s.memoSet = true
	s.mu.Unlock()
	return tiers, nil
}
