package catalog

import (
	"net/http"

	"github.com/rahatbaksh/bulk-order-api/internal/common"
)

// Handler exposes public catalog endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Products handles GET /api/v1/products?search=.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	products, err := h.service.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		common.JSONError(w, http.StatusBadGateway, "SEARCH_FAILED", "product search failed", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"products": products})
}

// Catalog handles GET /api/v1/catalog?page=&perPage=&search=.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	result, err := h.service.List(r.Context(), page, perPage, r.URL.Query().Get("search"))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog listing failed", nil)
		return
	}
	common.JSON(w, http.StatusOK, result)
}
