package models

import "time"

// PriceUnknown is the placeholder used when a source page carries no
// usable price for a listing.
const PriceUnknown = "N/A"

// Deal is a single normalized promotional listing produced by a source
// fetcher. Immutable once built.
type Deal struct {
	Title         string `json:"title"`
	Link          string `json:"link"`
	Price         string `json:"price"`
	OriginalPrice string `json:"original_price,omitempty"`
	Source        string `json:"source"`
	Category      string `json:"category,omitempty"`
}

// DealsRequest is the body of the parameterized aggregation endpoint.
// Stores defaults to the full catalog set when omitted; categories are
// free-form keys forwarded to the category feed.
type DealsRequest struct {
	Country    string   `json:"country" validate:"required,oneof=US"`
	Zip        string   `json:"zip" validate:"required,len=5,digits"`
	Stores     []string `json:"stores" default:"[\"amazon\",\"walmart\",\"target\",\"slickdeals\"]" validate:"max=8,dive,oneof=amazon walmart target slickdeals"`
	Categories []string `json:"categories" validate:"max=8,dive,min=1,max=64,printascii"`
}

// DealsResponse is the aggregated payload. Every requested store and
// category key is present, failed sources included (as empty slices).
type DealsResponse struct {
	Slickdeals    []Deal            `json:"slickdeals"`
	StoreDeals    map[string][]Deal `json:"store_deals"`
	CategoryDeals map[string][]Deal `json:"category_deals"`
	Timestamp     string            `json:"timestamp"`
}

// Snapshot is the cacheable default aggregated view served by the
// parameter-less endpoint.
type Snapshot struct {
	Discounts   []Deal    `json:"discounts"`
	GeneratedAt time.Time `json:"generated_at"`
}
