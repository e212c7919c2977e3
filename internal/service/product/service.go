package product

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/price"
)

type catalog interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type Service struct {
	catalog catalog
}

func New(catalog catalog) *Service {
	return &Service{catalog: catalog}
}

type CreateInput struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Image       string `json:"image,omitempty"`
}

// List returns the catalog, keeping only products whose name contains query
// (case-insensitive). A blank query returns everything.
func (s *Service) List(ctx context.Context, query string) ([]domain.Product, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return products, nil
	}
	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.catalog.Get(ctx, strings.TrimSpace(id))
}

// Create validates in and sends it to the catalog. Every field but the image is
// required; the price may use a comma as decimal separator and must be positive.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	p := domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Image:       strings.TrimSpace(in.Image),
	}
	switch {
	case p.Name == "":
		return nil, domain.Invalid("name", "required")
	case strings.TrimSpace(in.Price) == "":
		return nil, domain.Invalid("price", "required")
	case p.Description == "":
		return nil, domain.Invalid("description", "required")
	case p.Category == "":
		return nil, domain.Invalid("category", "required")
	}

	normalized, err := price.Normalize(in.Price)
	if err != nil {
		if errors.Is(err, price.ErrInvalid) {
			return nil, domain.Invalid("price", "must be a number greater than zero")
		}
		return nil, err
	}
	p.Price = normalized
	p.NormalizePrice()

	return s.catalog.Create(ctx, p)
}
