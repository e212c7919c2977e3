package product

import (
	"context"

	"storefront/internal/domain"
)

// Repository is the database-backed product catalog. It satisfies catalog.Catalog.
type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product domain.Product) (*domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
