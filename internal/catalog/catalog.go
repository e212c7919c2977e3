// Package catalog reaches the remote product collection.
package catalog

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"storefront/internal/domain"
)

// ErrUnavailable is returned while the circuit breaker refuses calls.
var ErrUnavailable = errors.New("catalog unavailable")

// Catalog is the remote product source. Every call fails independently and is never
// retried; callers decide whether to try again. Returned products have PriceCents set.
type Catalog interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// StatusError is a non-success HTTP response other than 404.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}
