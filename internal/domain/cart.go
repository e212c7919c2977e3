package domain

import "storefront/internal/price"

// CartLine is one product in the cart. Quantity is at least 1 while the line exists.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

// TotalCents is the line price in minor units, saturating instead of overflowing.
func (l CartLine) TotalCents() int64 {
	return price.MulCents(l.PriceCents, l.Quantity)
}

// Cart is a read-only view of the cart store with its derived aggregates.
type Cart struct {
	Lines      []CartLine `json:"lines"`
	ItemCount  int        `json:"itemCount"`
	TotalCents int64      `json:"totalCents"`
}

// Total formats TotalCents as a two-decimal string.
func (c Cart) Total() string {
	return price.FormatCents(c.TotalCents)
}
