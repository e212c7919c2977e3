package category

import (
	"context"
	"sort"
	"strings"

	"storefront/internal/domain"
)

type productLister interface {
	List(ctx context.Context) ([]domain.Product, error)
}

type Service struct {
	products productLister
}

func New(products productLister) *Service {
	return &Service{products: products}
}

// List returns the distinct product categories sorted by name. Category names are
// compared case-insensitively; the first spelling seen wins. Uncategorized products
// are not counted.
func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var result []domain.Category
	for _, p := range products {
		name := strings.TrimSpace(p.Category)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if i, ok := index[key]; ok {
			result[i].ProductCount++
			continue
		}
		index[key] = len(result)
		result = append(result, domain.Category{Name: name, ProductCount: 1})
	}

	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result, nil
}
