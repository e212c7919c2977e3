package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	applog "storefront/internal/logger"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *logrus.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *logrus.Logger) Repository {
	return &postgresRepo{pool: pool, logger: applog.OrDiscard(logger)}
}

const selectColumns = `id::text, name, price, COALESCE(description, ''), COALESCE(category, ''), COALESCE(image, '')`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT ` + selectColumns + `
FROM products
ORDER BY created_at ASC, id ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Errorf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Errorf("product repo: list rows error=%v", err)
		return nil, err
	}
	r.logger.Debugf("product repo: list count=%d", len(result))
	return result, nil
}

func (r *postgresRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
SELECT ` + selectColumns + `
FROM products
WHERE id = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debugf("product repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Errorf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Create(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.ID = ""
	return r.Upsert(ctx, product)
}

// Upsert inserts product, or replaces every field of the row with the same id.
// An empty id gets a fresh UUID.
func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if _, err := uuid.Parse(product.ID); err != nil {
		return nil, fmt.Errorf("product repo: invalid id %q: %w", product.ID, err)
	}
	const q = `
INSERT INTO products (id, name, price, description, category, image)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    price = EXCLUDED.price,
    description = EXCLUDED.description,
    category = EXCLUDED.category,
    image = EXCLUDED.image
RETURNING ` + selectColumns + `
`
	res, err := scanProduct(r.pool.QueryRow(ctx, q,
		product.ID,
		product.Name,
		product.Price,
		product.Description,
		product.Category,
		product.Image,
	))
	if err != nil {
		r.logger.Errorf("product repo: upsert id=%s error=%v", product.ID, err)
		return nil, err
	}
	r.logger.Infof("product repo: upserted id=%s name=%q", res.ID, res.Name)
	return &res, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Category, &p.Image); err != nil {
		return domain.Product{}, err
	}
	p.NormalizePrice()
	return p, nil
}
