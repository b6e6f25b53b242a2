package feed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rahatbaksh/bulk-order-api/internal/feed"
	"github.com/rahatbaksh/bulk-order-api/internal/pricing"
)

type fakeQueries struct {
	feeds       []feed.Feed
	globalCalls int
	batchCalls  int
	lastBatch   []int64
	err         error
}

func (f *fakeQueries) ListFeeds(context.Context) ([]feed.Feed, error) {
	return f.feeds, f.err
}

func (f *fakeQueries) GetFeed(_ context.Context, id int64) (feed.Feed, error) {
	for _, fd := range f.feeds {
		if fd.ID == id {
			return fd, nil
		}
	}
	return feed.Feed{}, feed.ErrNotFound
}

func (f *fakeQueries) InsertFeed(_ context.Context, fd feed.Feed) (feed.Feed, error) {
	if f.err != nil {
		return feed.Feed{}, f.err
	}
	fd.ID = int64(len(f.feeds) + 1)
	f.feeds = append(f.feeds, fd)
	return fd, nil
}

func (f *fakeQueries) UpdateFeed(_ context.Context, fd feed.Feed) (feed.Feed, error) {
	for i, existing := range f.feeds {
		if existing.ID == fd.ID {
			f.feeds[i] = fd
			return fd, nil
		}
	}
	return feed.Feed{}, feed.ErrNotFound
}

func (f *fakeQueries) SetFeedEnabled(_ context.Context, id int64, enabled string) error {
	for i, existing := range f.feeds {
		if existing.ID == id {
			f.feeds[i].Enabled = enabled
			return nil
		}
	}
	return feed.ErrNotFound
}

func (f *fakeQueries) GlobalFeeds(context.Context) ([]feed.Feed, error) {
	f.globalCalls++
	if f.err != nil {
		return nil, f.err
	}
	var out []feed.Feed
	for _, fd := range f.feeds {
		if fd.Scope == feed.ScopeGlobal {
			out = append(out, fd)
		}
	}
	return out, nil
}

func (f *fakeQueries) FeedsByProducts(_ context.Context, productIDs []int64) ([]feed.Feed, error) {
	f.batchCalls++
	f.lastBatch = productIDs
	if f.err != nil {
		return nil, f.err
	}
	wanted := map[int64]bool{}
	for _, id := range productIDs {
		wanted[id] = true
	}
	var out []feed.Feed
	for _, fd := range f.feeds {
		if fd.Scope == feed.ScopeProduct && wanted[fd.ProductID] {
			out = append(out, fd)
		}
	}
	return out, nil
}

func tiers(pct float64) []pricing.Tier {
	return []pricing.Tier{{MinQty: 1, MaxQty: 0, DiscountPercent: pct}}
}

func TestLoadBulkPricingAssemblesScopes(t *testing.T) {
	q := &fakeQueries{feeds: []feed.Feed{
		{ID: 1, Scope: feed.ScopeGlobal, Enabled: feed.EnabledYes, Tiers: tiers(5)},
		{ID: 2, Scope: feed.ScopeProduct, ProductID: 10, Enabled: feed.EnabledYes, Tiers: tiers(15)},
		{ID: 3, Scope: feed.ScopeProduct, ProductID: 10, VariantIDs: []int64{7}, Enabled: feed.EnabledYes, Tiers: tiers(30)},
	}}
	s := &feed.Store{Q: q}

	data, err := s.LoadBulkPricing(context.Background(), []int64{10, 11})
	require.NoError(t, err)
	require.Equal(t, tiers(5), data.Global)
	require.Len(t, data.Product[10], 2)
	require.Equal(t, tiers(15), data.Product[10][0].Tiers, "feeds keep id-ascending order")
	require.Equal(t, []int64{10, 11}, q.lastBatch)
	require.Equal(t, 1, q.batchCalls, "one batched query per scope")
}

func TestLoadBulkPricingExcludesInactiveFeeds(t *testing.T) {
	q := &fakeQueries{feeds: []feed.Feed{
		{ID: 1, Scope: feed.ScopeGlobal, Enabled: feed.EnabledNo, Tiers: tiers(5)},
		{ID: 2, Scope: feed.ScopeProduct, ProductID: 10, Enabled: feed.EnabledYes},
		{ID: 3, Scope: feed.ScopeProduct, ProductID: 10, Enabled: "maybe", Tiers: tiers(9)},
	}}
	s := &feed.Store{Q: q}

	data, err := s.LoadBulkPricing(context.Background(), []int64{10})
	require.NoError(t, err)
	require.Empty(t, data.Global, "disabled global feed is excluded")
	require.Empty(t, data.Product[10], "tierless and non-yes feeds are excluded")
}

func TestGlobalMemoCachesAcrossLoads(t *testing.T) {
	q := &fakeQueries{feeds: []feed.Feed{
		{ID: 1, Scope: feed.ScopeGlobal, Enabled: feed.EnabledYes, Tiers: tiers(5)},
	}}
	s := &feed.Store{Q: q}

	for range 3 {
		_, err := s.LoadBulkPricing(context.Background(), nil)
		require.NoError(t, err)
	}
	require.Equal(t, 1, q.globalCalls, "global feed is memoized after first load")

	s.Reset()
	_, err := s.LoadBulkPricing(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 2, q.globalCalls, "reset drops the memo")
}

func TestLoadBulkPricingPropagatesErrors(t *testing.T) {
	q := &fakeQueries{err: errors.New("db down")}
	s := &feed.Store{Q: q}
	_, err := s.LoadBulkPricing(context.Background(), []int64{1})
	require.Error(t, err)
}
