package preview_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rahatbaksh/bulk-order-api/internal/preview"
	"github.com/rahatbaksh/bulk-order-api/internal/pricing"
)

func postPreview(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/preview", strings.NewReader(body))
	rec := httptest.NewRecorder()
	preview.Preview(rec, req)
	return rec
}

func TestPreviewComputesTotals(t *testing.T) {
	rec := postPreview(t, `{"lines":[
		{"unitPriceCents": 5000, "quantity": 60, "tiers": [
			{"minQty": 10, "maxQty": 49, "discountPercent": 15},
			{"minQty": 50, "maxQty": 0, "discountPercent": 25}
		]},
		{"unitPriceCents": 1000, "quantity": 2, "tiers": []}
	]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Lines           []preview.Result `json:"lines"`
		GrandTotalCents int64            `json:"grandTotalCents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.EqualValues(t, 3750, body.Lines[0].EffectiveCents)
	require.EqualValues(t, 225000, body.Lines[0].LineTotalCents)
	require.EqualValues(t, 1000, body.Lines[1].EffectiveCents)
	require.EqualValues(t, 227000, body.GrandTotalCents)
}

// Preview and checkout price through the same engine; the equality below is
// the contract the storefront relies on.
func TestPreviewMatchesEngineForSameTriples(t *testing.T) {
	tiers := []pricing.Tier{
		{MinQty: 2, MaxQty: 9, DiscountPercent: 12.5},
		{MinQty: 10, MaxQty: 0, DiscountPercent: 33.33},
	}
	for _, qty := range []int{1, 2, 9, 10, 500} {
		rec := postPreview(t, func() string {
			payload, _ := json.Marshal(map[string]any{
				"lines": []preview.Line{{UnitPriceCents: 999, Quantity: qty, Tiers: tiers}},
			})
			return string(payload)
		}())
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Lines []preview.Result `json:"lines"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, pricing.EffectivePrice(999, qty, tiers), body.Lines[0].EffectiveCents, "qty %d", qty)
		require.Equal(t, pricing.LineTotal(999, qty, tiers), body.Lines[0].LineTotalCents, "qty %d", qty)
	}
}

func TestPreviewSanitizesRawTiers(t *testing.T) {
	rec := postPreview(t, `{"lines":[
		{"unitPriceCents": 1000, "quantity": 5, "tiers": [
			{"minQty": 1, "maxQty": 0, "discountPercent": 150},
			{"minQty": 5, "maxQty": 3, "discountPercent": 10}
		]}
	]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Lines []preview.Result `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.EqualValues(t, 1000, body.Lines[0].EffectiveCents, "invalid tiers never discount")
}

func TestPreviewRejectsBadBody(t *testing.T) {
	rec := postPreview(t, `{`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
