package preview

import (
	"encoding/json"
	"net/http"

	"github.com/rahatbaksh/bulk-order-api/internal/common"
	"github.com/rahatbaksh/bulk-order-api/internal/pricing"
)

// Line is one (price, quantity, tiers) triple to evaluate.
type Line struct {
	UnitPriceCents pricing.Money  `json:"unitPriceCents"`
	Quantity       int            `json:"quantity"`
	Tiers          []pricing.Tier `json:"tiers"`
}

// Result is the evaluated line.
type Result struct {
	UnitPriceCents pricing.Money `json:"unitPriceCents"`
	Quantity       int           `json:"quantity"`
	EffectiveCents pricing.Money `json:"effectiveUnitPriceCents"`
	LineTotalCents pricing.Money `json:"lineTotalCents"`
}

// Preview handles POST /api/v1/pricing/preview. It runs the same engine the
// checkout path uses, so the previewed totals are exactly what checkout will
// charge for the same triples.
func Preview(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Lines []Line `json:"lines"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid json", nil)
		return
	}
	results := make([]Result, 0, len(in.Lines))
	var grand pricing.Money
	for _, line := range in.Lines {
		tiers := pricing.Sanitize(line.Tiers)
		effective := pricing.EffectivePrice(line.UnitPriceCents, line.Quantity, tiers)
		total := pricing.LineTotal(line.UnitPriceCents, line.Quantity, tiers)
		grand += total
		results = append(results, Result{
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			EffectiveCents: effective,
			LineTotalCents: total,
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"lines":           results,
		"grandTotalCents": grand,
	})
}
