package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/rahatbaksh/bulk-order-api/internal/cart"
	"github.com/rahatbaksh/bulk-order-api/internal/common"
	"github.com/rahatbaksh/bulk-order-api/internal/order"
)

// Handler exposes the checkout endpoint.
type Handler struct {
	Service  *Service
	Validate *validator.Validate
}

// Create handles POST /api/v1/checkout.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid json", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "request failed validation", err.Error())
			return
		}
	}
	out, err := h.Service.Checkout(r.Context(), in)
	if err != nil {
		writeCheckoutError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, out)
}

func writeCheckoutError(w http.ResponseWriter, err error) {
	var itemErr *ItemError
	switch {
	case errors.Is(err, order.ErrEmptyOrder):
		common.JSONError(w, http.StatusUnprocessableEntity, "EMPTY_ORDER", "no purchasable lines in order", nil)
	case errors.Is(err, order.ErrMixedPaymentKinds):
		common.JSONError(w, http.StatusUnprocessableEntity, "MIXED_PAYMENT_KIND", "an order is either all one-time or all subscription", nil)
	case errors.Is(err, cart.ErrUnavailable):
		common.JSONError(w, http.StatusServiceUnavailable, "CART_UNAVAILABLE", "cart service is unavailable", nil)
	case errors.Is(err, ErrDestinationMissing):
		common.JSONError(w, http.StatusInternalServerError, "CHECKOUT_DESTINATION_MISSING", "checkout destination url is not configured", nil)
	case errors.Is(err, ErrAttemptInProgress):
		common.JSONError(w, http.StatusConflict, "CHECKOUT_IN_PROGRESS", "a checkout attempt is already running for this session", nil)
	case errors.As(err, &itemErr):
		common.JSONError(w, http.StatusBadGateway, "ITEM_SUBMISSION_FAILED", "the cart rejected an item; earlier items may already be in the cart", map[string]any{
			"index":   itemErr.Index,
			"partial": itemErr.Index > 0,
		})
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout failed", nil)
	}
}
