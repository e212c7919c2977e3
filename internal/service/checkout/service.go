package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	applog "storefront/internal/logger"
	"storefront/internal/price"
)

type cartDrainer interface {
	Drain() domain.Cart
}

type Service struct {
	cart   cartDrainer
	logger *logrus.Logger
	now    func() time.Time
	newID  func() string
}

func New(cart cartDrainer, logger *logrus.Logger) *Service {
	return &Service{
		cart:   cart,
		logger: applog.OrDiscard(logger),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

type Input struct {
	Name          string               `json:"name"`
	Address       string               `json:"address"`
	City          string               `json:"city"`
	ZipCode       string               `json:"zipCode"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
}

// PlaceOrder validates the shipping details, takes the whole cart and turns it into an
// order. The cart is emptied in the same step, so a failed validation leaves it intact.
func (s *Service) PlaceOrder(_ context.Context, in Input) (*domain.Order, error) {
	shipping := domain.Shipping{
		Name:    strings.TrimSpace(in.Name),
		Address: strings.TrimSpace(in.Address),
		City:    strings.TrimSpace(in.City),
		ZipCode: strings.TrimSpace(in.ZipCode),
	}
	switch {
	case shipping.Name == "":
		return nil, domain.Invalid("name", "required")
	case shipping.Address == "":
		return nil, domain.Invalid("address", "required")
	case shipping.City == "":
		return nil, domain.Invalid("city", "required")
	case shipping.ZipCode == "":
		return nil, domain.Invalid("zipCode", "required")
	}

	method := domain.PaymentMethod(strings.ToLower(strings.TrimSpace(string(in.PaymentMethod))))
	switch method {
	case "":
		method = domain.PaymentCreditCard
	case domain.PaymentCreditCard, domain.PaymentPix:
	default:
		return nil, domain.Invalid("paymentMethod", "must be credit_card or pix")
	}

	snap := s.cart.Drain()
	if len(snap.Lines) == 0 {
		return nil, domain.Invalid("cart", "is empty")
	}

	order := &domain.Order{
		ID:            s.newID(),
		Shipping:      shipping,
		PaymentMethod: method,
		Lines:         snap.Lines,
		ItemCount:     snap.ItemCount,
		TotalCents:    snap.TotalCents,
		CreatedAt:     s.now().UTC(),
	}
	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"items":    order.ItemCount,
		"total":    price.FormatCents(order.TotalCents),
		"payment":  string(order.PaymentMethod),
		"city":     order.Shipping.City,
	}).Info("checkout: order placed")
	return order, nil
}
