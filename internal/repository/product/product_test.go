package product

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	"storefront/internal/migrate"
)

func TestPostgres_CreateListAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool, nil); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	created, err := repo.Create(ctx, domain.Product{
		ID:       "ignored",
		Name:     "Shirt",
		Price:    "29.99",
		Category: "clothes",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.ID == "ignored" || created.PriceCents != 2999 {
		t.Fatalf("unexpected created product %+v", created)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 product, got %d", len(list))
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Shirt" || got.Category != "clothes" || got.Description != "" {
		t.Fatalf("unexpected product %+v", got)
	}

	if _, err := repo.Get(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
}

func TestPostgres_Upsert(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool, nil); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	const id = "00000000-0000-0000-0000-000000000001"

	p, err := repo.Upsert(ctx, domain.Product{ID: id, Name: "Mug", Price: "10.00"})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if p.ID != id {
		t.Fatalf("expected id to be preserved, got %s", p.ID)
	}

	updated, err := repo.Upsert(ctx, domain.Product{ID: id, Name: "Big Mug", Price: "12.50", Description: "new desc"})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.Name != "Big Mug" || updated.Description != "new desc" || updated.PriceCents != 1250 {
		t.Fatalf("unexpected updated product %+v", updated)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE products, cart_snapshots`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
