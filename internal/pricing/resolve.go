package pricing

// ProductFeed is one product-scoped tier configuration. An empty VariantIDs
// slice means the feed covers every variant of its product.
type ProductFeed struct {
	VariantIDs []int64 `json:"variantIds"`
	Tiers      []Tier  `json:"tiers"`
}

// Data holds the two scopes of bulk pricing configuration loaded for a batch
// of products. Product feeds are kept in load order (feed id ascending), which
// fixes the winner when more than one feed matches the same variant.
type Data struct {
	Global  []Tier                  `json:"global"`
	Product map[int64][]ProductFeed `json:"product"`
}

// Resolve picks the single tier list that applies to a product variant.
// Product-scoped feeds always win over the global feed regardless of their
// tier content, and the first feed covering the variant wins over later ones.
// No merging happens between feeds.
//
// A product id that was never loaded into data degrades to the global scope,
// so callers must pre-register every product they intend to resolve.
func Resolve(data Data, productID, variantID int64) []Tier {
	for _, feed := range data.Product[productID] {
		if len(feed.VariantIDs) == 0 || containsID(feed.VariantIDs, variantID) {
			return feed.Tiers
		}
	}
	return data.Global
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
