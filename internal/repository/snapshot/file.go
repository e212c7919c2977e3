package snapshot

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"storefront/internal/domain"
)

type fileRepo struct {
	dir string
}

// NewFile stores each key as one file under dir. Writes go to a temp file that is
// renamed over the target, so readers never see a partial blob.
func NewFile(dir string) (Repository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create snapshot dir %s", dir)
	}
	return &fileRepo{dir: dir}, nil
}

func (r *fileRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(r.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrapf(err, "read snapshot %q", key)
	}
	return b, nil
}

func (r *fileRepo) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(r.dir, ".snapshot-*")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write snapshot %q", key)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "sync snapshot %q", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close snapshot %q", key)
	}
	if err := os.Rename(tmp.Name(), r.path(key)); err != nil {
		return errors.Wrapf(err, "replace snapshot %q", key)
	}
	return nil
}

// Keys such as "@ProdutosApp:cart" are not safe file names; hex keeps them reversible.
func (r *fileRepo) path(key string) string {
	return filepath.Join(r.dir, hex.EncodeToString([]byte(key))+".json")
}
