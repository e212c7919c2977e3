package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"storefront/internal/domain"
)

type stubBlobs struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
	sets   [][]byte

	getCalled chan struct{}
	release   chan struct{}
}

func newStubBlobs() *stubBlobs {
	return &stubBlobs{data: map[string][]byte{}}
}

func (s *stubBlobs) Get(_ context.Context, key string) ([]byte, error) {
	if s.getCalled != nil {
		close(s.getCalled)
	}
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (s *stubBlobs) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets = append(s.sets, value)
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	return nil
}

func (s *stubBlobs) setCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sets)
}

func (s *stubBlobs) stored(t *testing.T, key string) []domain.CartLine {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data[key]
	if !ok {
		t.Fatalf("nothing stored under %q", key)
	}
	lines, err := Decode(b)
	if err != nil {
		t.Fatalf("decode stored snapshot: %v", err)
	}
	return lines
}

func newLoadedStore(t *testing.T, blobs *stubBlobs) *Store {
	t.Helper()
	store := NewStore(blobs, Options{})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close(context.Background())
	})
	return store
}

var (
	shirt = domain.Product{ID: "p1", Name: "Shirt", Price: "29.99", Category: "clothes"}
	mug   = domain.Product{ID: "p2", Name: "Mug", Price: "10.00"}
	odd   = domain.Product{ID: "p3", Name: "Mystery", Price: "abc"}
)

func quantities(lines []domain.CartLine) map[string]int {
	out := make(map[string]int, len(lines))
	for _, l := range lines {
		out[l.ID] = l.Quantity
	}
	return out
}

func TestStoreAddToCartMergesRepeatedProducts(t *testing.T) {
	store := newLoadedStore(t, newStubBlobs())

	for _, p := range []domain.Product{shirt, mug, shirt, shirt, mug, odd} {
		store.AddToCart(p)
	}

	lines := store.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	want := map[string]int{"p1": 3, "p2": 2, "p3": 1}
	if diff := cmp.Diff(want, quantities(lines)); diff != "" {
		t.Fatalf("quantities mismatch (-want +got):\n%s", diff)
	}
	if lines[0].ID != "p1" || lines[1].ID != "p2" || lines[2].ID != "p3" {
		t.Fatalf("insertion order not preserved: %+v", lines)
	}
	if store.ItemCount() != 6 {
		t.Fatalf("expected item count 6, got %d", store.ItemCount())
	}
}

func TestStoreDecreaseToZeroRemovesLine(t *testing.T) {
	store := newLoadedStore(t, newStubBlobs())
	store.AddToCart(shirt)
	store.AddToCart(mug)

	store.DecreaseQuantity("p1")

	lines := store.Lines()
	if len(lines) != 1 || lines[0].ID != "p2" {
		t.Fatalf("expected only p2 left, got %+v", lines)
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			t.Fatalf("zero quantity line left behind: %+v", l)
		}
	}
}

func TestStorePersistenceRoundTrip(t *testing.T) {
	blobs := newStubBlobs()
	store := newLoadedStore(t, blobs)
	store.AddToCart(mug)
	store.AddToCart(shirt)
	store.AddToCart(odd)
	store.IncreaseQuantity("p2")
	store.AddToCart(shirt)
	store.DecreaseQuantity("p3")
	store.Flush()

	reloaded := newLoadedStore(t, blobs)

	if diff := cmp.Diff(store.Lines(), reloaded.Lines()); diff != "" {
		t.Fatalf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
	if reloaded.Total() != store.Total() {
		t.Fatalf("total changed across reload: %d vs %d", reloaded.Total(), store.Total())
	}
}

func TestStoreTotalTreatsInvalidPriceAsZero(t *testing.T) {
	store := newLoadedStore(t, newStubBlobs())
	store.AddToCart(mug)
	store.AddToCart(mug)
	store.AddToCart(odd)
	store.AddToCart(odd)
	store.AddToCart(odd)

	if got := store.Total(); got != 2000 {
		t.Fatalf("expected total 2000 cents, got %d", got)
	}
	if got := store.ItemCount(); got != 5 {
		t.Fatalf("expected 5 items, got %d", got)
	}
}

func TestStoreUnknownIDsAreNoOps(t *testing.T) {
	blobs := newStubBlobs()
	store := newLoadedStore(t, blobs)
	store.AddToCart(shirt)
	store.Flush()
	before := store.Lines()
	saves := blobs.setCount()

	store.RemoveProductFromCart("nonexistent")
	store.IncreaseQuantity("nonexistent")
	store.DecreaseQuantity("nonexistent")
	store.Flush()

	if diff := cmp.Diff(before, store.Lines()); diff != "" {
		t.Fatalf("cart changed (-before +after):\n%s", diff)
	}
	if blobs.setCount() != saves {
		t.Fatalf("no-op mutations should not be persisted")
	}
}

func TestStoreClearCart(t *testing.T) {
	blobs := newStubBlobs()
	store := newLoadedStore(t, blobs)
	store.AddToCart(shirt)
	store.AddToCart(mug)
	store.IncreaseQuantity("p2")

	store.ClearCart()
	store.Flush()

	if store.ItemCount() != 0 || store.Total() != 0 || len(store.Lines()) != 0 {
		t.Fatalf("cart not empty after clear: %+v", store.Snapshot())
	}
	if got := blobs.stored(t, DefaultKey); len(got) != 0 {
		t.Fatalf("expected empty persisted cart, got %+v", got)
	}
}

func TestStoreScenario(t *testing.T) {
	store := newLoadedStore(t, newStubBlobs())

	store.AddToCart(domain.Product{ID: "p1", Name: "Shirt", Price: "29.99"})
	store.AddToCart(domain.Product{ID: "p1", Name: "Shirt", Price: "29.99"})
	snap := store.Snapshot()
	if len(snap.Lines) != 1 || snap.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected cart: %+v", snap.Lines)
	}
	if snap.ItemCount != 2 || snap.TotalCents != 5998 || snap.Total() != "59.98" {
		t.Fatalf("unexpected aggregates: count=%d total=%d", snap.ItemCount, snap.TotalCents)
	}

	store.DecreaseQuantity("p1")
	if store.ItemCount() != 1 || store.Total() != 2999 {
		t.Fatalf("unexpected aggregates after decrease: count=%d total=%d", store.ItemCount(), store.Total())
	}

	store.DecreaseQuantity("p1")
	if len(store.Lines()) != 0 {
		t.Fatalf("expected empty cart, got %+v", store.Lines())
	}
}

func TestStoreRemoveProduct(t *testing.T) {
	store := newLoadedStore(t, newStubBlobs())
	store.AddToCart(shirt)
	store.AddToCart(mug)
	store.AddToCart(odd)

	store.RemoveProductFromCart("p2")

	lines := store.Lines()
	if len(lines) != 2 || lines[0].ID != "p1" || lines[1].ID != "p3" {
		t.Fatalf("unexpected lines after remove: %+v", lines)
	}
}

func TestStoreLoadDegradesToEmpty(t *testing.T) {
	cases := map[string]*stubBlobs{
		"missing":   newStubBlobs(),
		"malformed": {data: map[string][]byte{DefaultKey: []byte(`{not json`)}},
		"get error": {data: map[string][]byte{}, getErr: errors.New("disk on fire")},
	}
	for name, blobs := range cases {
		t.Run(name, func(t *testing.T) {
			store := NewStore(blobs, Options{})
			defer store.Close(context.Background())

			if err := store.Load(context.Background()); err != nil {
				t.Fatalf("Load should not fail, got %v", err)
			}
			if !store.Ready() {
				t.Fatalf("expected ready, got %s", store.State())
			}
			if len(store.Lines()) != 0 {
				t.Fatalf("expected empty cart, got %+v", store.Lines())
			}
		})
	}
}

func TestStoreLoadOnlyOnce(t *testing.T) {
	store := newLoadedStore(t, newStubBlobs())
	if err := store.Load(context.Background()); !errors.Is(err, ErrAlreadyLoaded) {
		t.Fatalf("expected ErrAlreadyLoaded, got %v", err)
	}
}

func TestStoreUsesCustomKey(t *testing.T) {
	blobs := newStubBlobs()
	store := NewStore(blobs, Options{Key: "cart:test"})
	defer store.Close(context.Background())
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	store.AddToCart(shirt)
	store.Flush()

	if got := blobs.stored(t, "cart:test"); len(got) != 1 {
		t.Fatalf("expected one line under custom key, got %+v", got)
	}
}

func TestStoreReplaysMutationsMadeBeforeLoad(t *testing.T) {
	persisted, err := Encode([]domain.CartLine{
		{Product: shirt, Quantity: 2},
		{Product: mug, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	blobs := newStubBlobs()
	blobs.data[DefaultKey] = persisted
	blobs.getCalled = make(chan struct{})
	blobs.release = make(chan struct{})

	store := NewStore(blobs, Options{})
	defer store.Close(context.Background())

	loadErr := make(chan error, 1)
	go func() {
		loadErr <- store.Load(context.Background())
	}()
	<-blobs.getCalled

	if store.State() != StateLoading {
		t.Fatalf("expected loading, got %s", store.State())
	}
	store.AddToCart(shirt)
	store.AddToCart(odd)
	store.RemoveProductFromCart("p2")
	if store.ItemCount() != 2 {
		t.Fatalf("pre-ready mutations should apply to memory, got %d items", store.ItemCount())
	}
	store.Flush()
	if blobs.setCount() != 0 {
		t.Fatalf("nothing may be saved before the persisted cart is read")
	}

	close(blobs.release)
	if err := <-loadErr; err != nil {
		t.Fatalf("Load: %v", err)
	}
	store.Flush()

	want := map[string]int{"p1": 3, "p2": 1, "p3": 1}
	if diff := cmp.Diff(want, quantities(store.Lines())); diff != "" {
		t.Fatalf("replayed cart mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(store.Lines(), blobs.stored(t, DefaultKey)); diff != "" {
		t.Fatalf("persisted cart mismatch (-memory +stored):\n%s", diff)
	}
}

func TestStoreSaveFailureKeepsMemory(t *testing.T) {
	blobs := newStubBlobs()
	blobs.setErr = errors.New("quota exceeded")
	store := newLoadedStore(t, blobs)

	store.AddToCart(shirt)
	store.Flush()

	if blobs.setCount() == 0 {
		t.Fatalf("expected a save attempt")
	}
	if store.ItemCount() != 1 {
		t.Fatalf("in-memory cart must survive a failed save, got %d items", store.ItemCount())
	}
}

func TestStoreConcurrentAdds(t *testing.T) {
	blobs := newStubBlobs()
	store := newLoadedStore(t, blobs)

	const n = 50
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			store.AddToCart(shirt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent adds: %v", err)
	}
	store.Flush()

	lines := store.Lines()
	if len(lines) != 1 || lines[0].Quantity != n {
		t.Fatalf("expected one line with quantity %d, got %+v", n, lines)
	}
	if got := blobs.stored(t, DefaultKey); len(got) != 1 || got[0].Quantity != n {
		t.Fatalf("persisted cart should hold the latest state, got %+v", got)
	}
}

func TestStoreCloseFlushesPendingSave(t *testing.T) {
	blobs := newStubBlobs()
	store := NewStore(blobs, Options{})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	store.AddToCart(mug)
	if err := store.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := blobs.stored(t, DefaultKey); len(got) != 1 {
		t.Fatalf("expected pending save written on close, got %+v", got)
	}
}

func TestStoreDrain(t *testing.T) {
	blobs := newStubBlobs()
	store := newLoadedStore(t, blobs)
	store.AddToCart(shirt)
	store.AddToCart(shirt)
	store.AddToCart(mug)

	got := store.Drain()
	store.Flush()

	if got.ItemCount != 3 || got.TotalCents != 6998 || len(got.Lines) != 2 {
		t.Fatalf("unexpected drained cart %+v", got)
	}
	if store.ItemCount() != 0 {
		t.Fatalf("expected empty cart after drain")
	}
	if stored := blobs.stored(t, DefaultKey); len(stored) != 0 {
		t.Fatalf("expected empty persisted cart, got %+v", stored)
	}

	if empty := store.Drain(); len(empty.Lines) != 0 || empty.ItemCount != 0 {
		t.Fatalf("draining an empty cart should return nothing, got %+v", empty)
	}
}

func TestStoreAddQuantitySavesOnce(t *testing.T) {
	blobs := newStubBlobs()
	store := newLoadedStore(t, blobs)

	store.AddQuantity(shirt, 50)
	store.AddQuantity(shirt, 0)
	store.AddQuantity(mug, -3)
	store.Flush()

	if diff := cmp.Diff(map[string]int{"p1": 50}, quantities(store.Lines())); diff != "" {
		t.Fatalf("quantities mismatch (-want +got):\n%s", diff)
	}
	if got := blobs.setCount(); got != 1 {
		t.Fatalf("expected one save, got %d", got)
	}
	if store.Total() != 149950 {
		t.Fatalf("unexpected total %d", store.Total())
	}
}

func TestStoreTotalNeverOverflows(t *testing.T) {
	store := newLoadedStore(t, newStubBlobs())

	huge := domain.Product{ID: "h1", Name: "Yacht", Price: "50000000000000000"}
	store.AddToCart(huge)
	store.AddToCart(huge)
	if got := store.Total(); got != 0 {
		t.Fatalf("out-of-range price must count as zero, got %d", got)
	}

	top := domain.Product{ID: "h2", Name: "Island", Price: "10000000000"}
	store.AddQuantity(top, 99)
	store.AddQuantity(top, 99)
	if got, want := store.Total(), int64(198)*1_000_000_000_000; got != want {
		t.Fatalf("Total = %d, want %d", got, want)
	}
}

func TestStoreJournalLimit(t *testing.T) {
	blobs := newStubBlobs()
	blobs.getCalled = make(chan struct{})
	blobs.release = make(chan struct{})

	store := NewStore(blobs, Options{JournalLimit: 2})
	defer store.Close(context.Background())

	loadErr := make(chan error, 1)
	go func() {
		loadErr <- store.Load(context.Background())
	}()
	<-blobs.getCalled

	store.AddToCart(shirt)
	store.AddToCart(mug)
	store.AddToCart(odd)
	if store.ItemCount() != 3 {
		t.Fatalf("pre-ready mutations should apply to memory, got %d items", store.ItemCount())
	}

	close(blobs.release)
	if err := <-loadErr; err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := map[string]int{"p1": 1, "p2": 1}
	if diff := cmp.Diff(want, quantities(store.Lines())); diff != "" {
		t.Fatalf("replayed cart mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreLoadGivesUpWhenContextEnds(t *testing.T) {
	blobs := newStubBlobs()
	blobs.data[DefaultKey] = []byte(`[{"id":"p1","name":"Shirt","price":"29.99","quantity":4}]`)
	blobs.getCalled = make(chan struct{})
	blobs.release = make(chan struct{})
	defer close(blobs.release)

	store := NewStore(blobs, Options{})
	defer store.Close(context.Background())
	store.AddToCart(mug)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := store.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !store.Ready() {
		t.Fatalf("store should be ready after a timed-out load")
	}
	if diff := cmp.Diff(map[string]int{"p2": 1}, quantities(store.Lines())); diff != "" {
		t.Fatalf("cart mismatch (-want +got):\n%s", diff)
	}
}
