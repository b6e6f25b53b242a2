package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rahatbaksh/bulk-order-api/internal/obs"
	"github.com/rahatbaksh/bulk-order-api/internal/pricing"
)

// MinSearchLen is the shortest search term that hits the database. Shorter
// terms return an empty result without touching storage.
const MinSearchLen = 2

// SearchLimit caps product search results.
const SearchLimit = 20

// MaxPerPage caps catalog page size.
const MaxPerPage = 100

// Variant is one purchasable variation of a product. Each variant carries the
// tier list that resolution picked for it, so clients can price locally.
type Variant struct {
	ID             int64          `json:"id"`
	VariationTitle string         `json:"variationTitle"`
	UnitPriceCents int64          `json:"unitPriceCents"`
	SKU            string         `json:"sku,omitempty"`
	StockStatus    string         `json:"stockStatus"`
	PaymentKind    string         `json:"paymentKind"`
	ManageStock    bool           `json:"manageStock"`
	Available      int            `json:"available"`
	BulkTiers      []pricing.Tier `json:"bulkTiers"`
}

// Product is the catalog payload with embedded variants.
type Product struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Thumbnail  string    `json:"thumbnail,omitempty"`
	Categories []string  `json:"categories"`
	Variants   []Variant `json:"variants"`
}

// ListResult is one catalog page.
type ListResult struct {
	Products   []Product `json:"products"`
	Page       int       `json:"page"`
	PerPage    int       `json:"perPage"`
	TotalPages int       `json:"totalPages"`
}

type queryProvider interface {
	SearchProducts(ctx context.Context, term string, limit int) ([]Product, error)
	CountProducts(ctx context.Context, term string) (int64, error)
	ListProducts(ctx context.Context, term string, limit, offset int) ([]Product, error)
}

// TierSource provides bulk pricing configuration for a product batch.
type TierSource interface {
	LoadBulkPricing(ctx context.Context, productIDs []int64) (pricing.Data, error)
}

// Service assembles catalog responses: product rows, their variants, and the
// resolved bulk tiers per variant.
type Service struct {
	queries queryProvider
	tiers   TierSource
	cache   *Cache
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries queryProvider
	Tiers   TierSource
	Cache   *Cache
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries are required")
	}
	return &Service{queries: cfg.Queries, tiers: cfg.Tiers, cache: cfg.Cache}, nil
}

// Search returns up to SearchLimit products matching the term, with resolved
// bulk tiers attached to every variant. Terms below MinSearchLen short-circuit
// to an empty list.
func (s *Service) Search(ctx context.Context, term string) ([]Product, error) {
	term = strings.TrimSpace(term)
	if len(term) < MinSearchLen {
		return []Product{}, nil
	}
	products, err := s.queries.SearchProducts(ctx, term, SearchLimit)
	if err != nil {
		s.countSearch("error")
		return nil, fmt.Errorf("catalog: search products: %w", err)
	}
	if err := s.attachTiers(ctx, products); err != nil {
		s.countSearch("error")
		return nil, err
	}
	s.countSearch("ok")
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// List returns one catalog page ordered by product id descending. perPage is
// clamped to [1,MaxPerPage]; a search term below MinSearchLen is ignored.
func (s *Service) List(ctx context.Context, page, perPage int, term string) (ListResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	term = strings.TrimSpace(term)
	if len(term) < MinSearchLen {
		term = ""
	}

	cacheKey := ""
	if s.cache != nil {
		cacheKey = s.cache.VersionedKey(ctx, fmt.Sprintf("list:p%d:n%d:q%s", page, perPage, term))
		var cached ListResult
		if ok, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
			s.countSearch("cache_hit")
			return cached, nil
		}
	}

	total, err := s.queries.CountProducts(ctx, term)
	if err != nil {
		return ListResult{}, fmt.Errorf("catalog: count products: %w", err)
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	products, err := s.queries.ListProducts(ctx, term, perPage, (page-1)*perPage)
	if err != nil {
		return ListResult{}, fmt.Errorf("catalog: list products: %w", err)
	}
	if err := s.attachTiers(ctx, products); err != nil {
		return ListResult{}, err
	}
	if products == nil {
		products = []Product{}
	}

	result := ListResult{Products: products, Page: page, PerPage: perPage, TotalPages: totalPages}
	if s.cache != nil && cacheKey != "" {
		_ = s.cache.SetJSON(ctx, cacheKey, result)
	}
	return result, nil
}

// InvalidateCache drops every cached catalog page. Ran when feed
// configuration changes, since cached pages embed resolved tiers.
func (s *Service) InvalidateCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx)
	}
}

// attachTiers resolves the bulk tier list for every variant in one batched
// configuration load.
func (s *Service) attachTiers(ctx context.Context, products []Product) error {
	if s.tiers == nil || len(products) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	data, err := s.tiers.LoadBulkPricing(ctx, ids)
	if err != nil {
		return fmt.Errorf("catalog: load bulk pricing: %w", err)
	}
	for pi := range products {
		for vi := range products[pi].Variants {
			tiers := pricing.Resolve(data, products[pi].ID, products[pi].Variants[vi].ID)
			if tiers == nil {
				tiers = []pricing.Tier{}
			}
			products[pi].Variants[vi].BulkTiers = tiers
		}
	}
	return nil
}

func (s *Service) countSearch(result string) {
	if obs.CatalogSearchTotal != nil {
		obs.CatalogSearchTotal.WithLabelValues(result).Inc()
	}
}
