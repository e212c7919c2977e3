package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	applog "storefront/internal/logger"
)

type redisRepo struct {
	rdb    *redis.Client
	prefix string
	logger *logrus.Logger
}

// NewRedis stores blobs as plain string values under prefix+key.
func NewRedis(rdb *redis.Client, prefix string, logger *logrus.Logger) Repository {
	if logger == nil {
		logger = applog.Discard()
	}
	return &redisRepo{rdb: rdb, prefix: prefix, logger: logger}
}

// ConnectRedis builds a client from either a redis:// URL or a host:port address and
// pings it, retrying with exponential backoff up to attempts times.
func ConnectRedis(ctx context.Context, addr string, db, attempts int, logger *logrus.Logger) (*redis.Client, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         addr,
			DB:           db,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}
	}
	rdb := redis.NewClient(opts)

	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			logger.Infof("snapshot redis: connected addr=%s db=%d", opts.Addr, opts.DB)
			return rdb, nil
		}

		backoff := time.Duration(1<<i) * 100 * time.Millisecond
		if backoff > 5*time.Second {
			backoff = 5 * time.Second
		}
		logger.Warnf("snapshot redis: ping attempt %d/%d failed: %v", i+1, attempts, err)
		select {
		case <-ctx.Done():
			rdb.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	rdb.Close()
	return nil, fmt.Errorf("connect redis after %d attempts: %w", attempts, err)
}

func (r *redisRepo) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		r.logger.Errorf("snapshot redis: get key=%s error=%v", key, err)
		return nil, errors.Wrapf(err, "redis get %q", key)
	}
	return b, nil
}

func (r *redisRepo) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		r.logger.Errorf("snapshot redis: set key=%s error=%v", key, err)
		return errors.Wrapf(err, "redis set %q", key)
	}
	r.logger.Debugf("snapshot redis: set key=%s bytes=%d", key, len(value))
	return nil
}
