package catalog

import (
	"bytes"
	"encoding/json"

	"storefront/internal/domain"
)

// flexString accepts a JSON string, number or null. The mock API is untyped and has
// served prices and ids both ways.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			*f = ""
			return nil
		}
		*f = flexString(n.String())
	}
	return nil
}

type wireProduct struct {
	ID          flexString `json:"id"`
	Name        flexString `json:"name"`
	Price       flexString `json:"price"`
	Description flexString `json:"description"`
	Category    flexString `json:"category"`
	Image       flexString `json:"image"`
}

func (w wireProduct) toDomain() domain.Product {
	p := domain.Product{
		ID:          string(w.ID),
		Name:        string(w.Name),
		Price:       string(w.Price),
		Description: string(w.Description),
		Category:    string(w.Category),
		Image:       string(w.Image),
	}
	p.NormalizePrice()
	return p
}

type createRequest struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Image       string `json:"image,omitempty"`
}
