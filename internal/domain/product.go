package domain

import "storefront/internal/price"

// Product is a catalog entry. Price keeps the catalog's string form for display and
// persistence; PriceCents is derived from it once, at the catalog boundary.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	PriceCents  int64  `json:"-"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Image       string `json:"image,omitempty"`
}

// NormalizePrice sets PriceCents from Price. Unparsable prices count as zero.
func (p *Product) NormalizePrice() {
	p.PriceCents = price.ParseCents(p.Price)
}
