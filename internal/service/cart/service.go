package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"
)

type Service struct {
	store   cartStore
	catalog productGetter
}

// MaxAddQuantity caps the units a single addProduct action may add.
const MaxAddQuantity = 99

type cartStore interface {
	AddQuantity(product domain.Product, n int)
	RemoveProductFromCart(productID string)
	IncreaseQuantity(productID string)
	DecreaseQuantity(productID string)
	ClearCart()
	Snapshot() domain.Cart
}

type productGetter interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

func New(store cartStore, catalog productGetter) *Service {
	return &Service{store: store, catalog: catalog}
}

type UpdateInput struct {
	Actions []UpdateAction `json:"actions"`
}

type UpdateAction struct {
	Action    string `json:"action"`
	ProductID string `json:"productId,omitempty"`
	// Quantity only applies to addProduct; zero means one.
	Quantity int `json:"quantity,omitempty"`
}

func (s *Service) Get(_ context.Context) domain.Cart {
	return s.store.Snapshot()
}

// AddProduct looks the product up in the catalog and adds one unit of it.
func (s *Service) AddProduct(ctx context.Context, productID string) (domain.Cart, error) {
	return s.Update(ctx, UpdateInput{Actions: []UpdateAction{{Action: "addProduct", ProductID: productID}}})
}

func (s *Service) Remove(_ context.Context, productID string) domain.Cart {
	s.store.RemoveProductFromCart(strings.TrimSpace(productID))
	return s.store.Snapshot()
}

func (s *Service) Increase(_ context.Context, productID string) domain.Cart {
	s.store.IncreaseQuantity(strings.TrimSpace(productID))
	return s.store.Snapshot()
}

func (s *Service) Decrease(_ context.Context, productID string) domain.Cart {
	s.store.DecreaseQuantity(strings.TrimSpace(productID))
	return s.store.Snapshot()
}

func (s *Service) Clear(_ context.Context) domain.Cart {
	s.store.ClearCart()
	return s.store.Snapshot()
}

// Update applies a batch of actions in order. Every action is validated, and every
// product it adds is fetched, before the cart is touched; a bad batch changes nothing.
func (s *Service) Update(ctx context.Context, in UpdateInput) (domain.Cart, error) {
	if len(in.Actions) == 0 {
		return domain.Cart{}, domain.Invalid("actions", "required")
	}

	steps := make([]func(), 0, len(in.Actions))
	for _, action := range in.Actions {
		step, err := s.resolve(ctx, action)
		if err != nil {
			return domain.Cart{}, err
		}
		steps = append(steps, step)
	}
	for _, step := range steps {
		step()
	}
	return s.store.Snapshot(), nil
}

func (s *Service) resolve(ctx context.Context, action UpdateAction) (func(), error) {
	id := strings.TrimSpace(action.ProductID)
	name := strings.ToLower(strings.TrimSpace(action.Action))
	if name != "clear" && id == "" {
		return nil, domain.Invalid("productId", "required")
	}

	switch name {
	case "addproduct":
		if action.Quantity < 0 || action.Quantity > MaxAddQuantity {
			return nil, domain.Invalid("quantity", fmt.Sprintf("must be between 1 and %d", MaxAddQuantity))
		}
		qty := action.Quantity
		if qty == 0 {
			qty = 1
		}
		if s.catalog == nil {
			return nil, errors.New("catalog unavailable")
		}
		product, err := s.catalog.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		p := *product
		return func() { s.store.AddQuantity(p, qty) }, nil
	case "removeproduct":
		return func() { s.store.RemoveProductFromCart(id) }, nil
	case "increasequantity":
		return func() { s.store.IncreaseQuantity(id) }, nil
	case "decreasequantity":
		return func() { s.store.DecreaseQuantity(id) }, nil
	case "clear":
		return s.store.ClearCart, nil
	default:
		return nil, domain.Invalid("action", "unsupported action "+action.Action)
	}
}
