package seed

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	applog "storefront/internal/logger"
)

type productWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Products is the demo catalog. Fixed ids keep Apply idempotent.
var Products = []domain.Product{
	{
		ID:          "6f1c2a52-8f51-4d0e-9a3b-0c1d2e3f4a01",
		Name:        "Camiseta Básica",
		Price:       "29.99",
		Description: "Camiseta de algodão macio",
		Category:    "Roupas",
		Image:       "https://picsum.photos/seed/shirt/400",
	},
	{
		ID:          "6f1c2a52-8f51-4d0e-9a3b-0c1d2e3f4a02",
		Name:        "Caneca de Cerâmica",
		Price:       "10.00",
		Description: "Caneca de 300ml",
		Category:    "Casa",
		Image:       "https://picsum.photos/seed/mug/400",
	},
	{
		ID:          "6f1c2a52-8f51-4d0e-9a3b-0c1d2e3f4a03",
		Name:        "Fone de Ouvido",
		Price:       "149.90",
		Description: "Fone sem fio com cancelamento de ruído",
		Category:    "Eletrônicos",
		Image:       "https://picsum.photos/seed/headphones/400",
	},
	{
		ID:          "6f1c2a52-8f51-4d0e-9a3b-0c1d2e3f4a04",
		Name:        "Luminária de Mesa",
		Price:       "89.50",
		Description: "Luminária LED com braço articulado",
		Category:    "Casa",
	},
}

// Apply upserts the demo products for manual testing.
func Apply(ctx context.Context, products productWriter, logger *logrus.Logger) error {
	logger = applog.OrDiscard(logger)
	for _, p := range Products {
		saved, err := products.Upsert(ctx, p)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
		logger.Debugf("seed: product id=%s name=%q", saved.ID, saved.Name)
	}
	logger.Infof("seed: %d products upserted", len(Products))
	return nil
}
