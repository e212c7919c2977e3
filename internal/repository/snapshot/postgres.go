package snapshot

import (
	"context"
	"errors"

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
	if logger == nil {
		logger = applog.Discard()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `
SELECT payload
FROM cart_snapshots
WHERE key = $1
`
	var payload []byte
	if err := r.pool.QueryRow(ctx, q, key).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Errorf("snapshot repo: get key=%s error=%v", key, err)
		return nil, err
	}
	return payload, nil
}

func (r *postgresRepo) Set(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO cart_snapshots (key, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET
    payload = EXCLUDED.payload,
    updated_at = EXCLUDED.updated_at
`
	if _, err := r.pool.Exec(ctx, q, key, value); err != nil {
		r.logger.Errorf("snapshot repo: set key=%s error=%v", key, err)
		return err
	}
	r.logger.Debugf("snapshot repo: set key=%s bytes=%d", key, len(value))
	return nil
}
