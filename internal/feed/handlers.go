package feed

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/rahatbaksh/bulk-order-api/internal/common"
	"github.com/rahatbaksh/bulk-order-api/internal/events"
	"github.com/rahatbaksh/bulk-order-api/internal/obs"
	"github.com/rahatbaksh/bulk-order-api/internal/pricing"
)

// Handler exposes feed administration endpoints. It is the sole writer of
// feed data; every write passes through pricing.Sanitize, so resolution only
// ever sees well-formed tiers.
type Handler struct {
	Store    *Store
	Validate *validator.Validate
	Events   *events.Bus
	// OnChange runs after every successful write, for cache invalidation.
	OnChange func(r *http.Request)
}

// WriteInput is the create/update payload. Invalid tier rows are dropped
// during sanitization, never rejected.
type WriteInput struct {
	Name       string         `json:"name" validate:"required"`
	Scope      string         `json:"scope" validate:"required,oneof=global product"`
	ProductID  int64          `json:"productId" validate:"required_if=Scope product"`
	VariantIDs []int64        `json:"variantIds"`
	Enabled    *bool          `json:"enabled"`
	Tiers      []pricing.Tier `json:"tiers"`
}

// List handles GET /api/v1/admin/feeds.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "feed store not configured", nil)
		return
	}
	feeds, err := h.Store.Q.ListFeeds(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "list feeds", nil)
		return
	}
	if feeds == nil {
		feeds = []Feed{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": feeds})
}

// Get handles GET /api/v1/admin/feeds/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.feedID(w, r)
	if !ok {
		return
	}
	f, err := h.Store.Q.GetFeed(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": f})
}

// Create handles POST /api/v1/admin/feeds.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	f, err := h.Store.Q.InsertFeed(r.Context(), h.toFeed(in, 0))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.changed(r, "create", f)
	common.JSON(w, http.StatusCreated, map[string]any{"data": f})
}

// Update handles PUT /api/v1/admin/feeds/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.feedID(w, r)
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	f, err := h.Store.Q.UpdateFeed(r.Context(), h.toFeed(in, id))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.changed(r, "update", f)
	common.JSON(w, http.StatusOK, map[string]any{"data": f})
}

// Disable handles DELETE /api/v1/admin/feeds/{id}. Feeds are soft disabled,
// never removed; a disabled feed drops out of resolution entirely.
func (h *Handler) Disable(w http.ResponseWriter, r *http.Request) {
	id, ok := h.feedID(w, r)
	if !ok {
		return
	}
	if err := h.Store.Q.SetFeedEnabled(r.Context(), id, EnabledNo); err != nil {
		h.writeError(w, err)
		return
	}
	h.changed(r, "disable", Feed{ID: id})
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": id, "enabled": EnabledNo}})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (WriteInput, bool) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "feed store not configured", nil)
		return WriteInput{}, false
	}
	var in WriteInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid json", nil)
		return WriteInput{}, false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "request failed validation", err.Error())
			return WriteInput{}, false
		}
	}
	return in, true
}

func (h *Handler) toFeed(in WriteInput, id int64) Feed {
	enabled := EnabledYes
	if in.Enabled != nil && !*in.Enabled {
		enabled = EnabledNo
	}
	f := Feed{
		ID:         id,
		Name:       in.Name,
		Scope:      in.Scope,
		Enabled:    enabled,
		Tiers:      pricing.Sanitize(in.Tiers),
		VariantIDs: in.VariantIDs,
	}
	if in.Scope == ScopeProduct {
		f.ProductID = in.ProductID
	} else {
		f.VariantIDs = nil
	}
	return f
}

// changed invalidates the memoized global scope, bumps metrics, emits the
// domain event and runs the cache hook.
func (h *Handler) changed(r *http.Request, op string, f Feed) {
	h.Store.Reset()
	if obs.FeedWriteTotal != nil {
		obs.FeedWriteTotal.WithLabelValues(op).Inc()
	}
	if h.Events != nil {
		topic := events.TopicFeedUpdated
		if op == "disable" {
			topic = events.TopicFeedDeleted
		}
		_, _ = h.Events.Emit(r.Context(), topic, strconv.FormatInt(f.ID, 10), map[string]any{
			"op":    op,
			"scope": f.Scope,
		})
	}
	if h.OnChange != nil {
		h.OnChange(r)
	}
}

func (h *Handler) feedID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "feed store not configured", nil)
		return 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ID", "feed id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "feed not found", nil)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "feed storage error", nil)
}
