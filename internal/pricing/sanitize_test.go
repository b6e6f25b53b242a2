package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeDropsInvalidTiers(t *testing.T) {
	raw := []Tier{
		{MinQty: 5, MaxQty: 3, DiscountPercent: 10},  // degenerate range
		{MinQty: 1, MaxQty: 0, DiscountPercent: 150}, // discount out of bounds
		{MinQty: 1, MaxQty: 0, DiscountPercent: -5},
		{MinQty: 2, MaxQty: 9, DiscountPercent: 12.5},
	}
	got := Sanitize(raw)
	require.Equal(t, []Tier{{MinQty: 2, MaxQty: 9, DiscountPercent: 12.5}}, got)
}

func TestSanitizeClampsAndSorts(t *testing.T) {
	raw := []Tier{
		{MinQty: 50, MaxQty: 0, DiscountPercent: 25},
		{MinQty: 0, MaxQty: -3, DiscountPercent: 5},
		{MinQty: 10, MaxQty: 49, DiscountPercent: 15},
	}
	got := Sanitize(raw)
	require.Equal(t, []Tier{
		{MinQty: 1, MaxQty: 0, DiscountPercent: 5},
		{MinQty: 10, MaxQty: 49, DiscountPercent: 15},
		{MinQty: 50, MaxQty: 0, DiscountPercent: 25},
	}, got)
}

func TestSanitizeRoundsPercentToCents(t *testing.T) {
	got := Sanitize([]Tier{{MinQty: 1, MaxQty: 0, DiscountPercent: 12.345}})
	require.Len(t, got, 1)
	require.Equal(t, 12.35, got[0].DiscountPercent)
}

func TestSanitizeIdempotent(t *testing.T) {
	raw := []Tier{
		{MinQty: 0, MaxQty: 0, DiscountPercent: 33.333},
		{MinQty: 7, MaxQty: 2, DiscountPercent: 10},
		{MinQty: 4, MaxQty: 8, DiscountPercent: 101},
		{MinQty: 3, MaxQty: 6, DiscountPercent: 20},
	}
	once := Sanitize(raw)
	twice := Sanitize(once)
	require.Equal(t, once, twice)
}

func TestSanitizeEmpty(t *testing.T) {
	require.Empty(t, Sanitize(nil))
	require.Empty(t, Sanitize([]Tier{}))
}
