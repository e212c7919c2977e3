// Package cart owns the in-memory shopping cart and keeps it synchronized with a
// key-value blob store.
//
// Mutations apply to memory immediately and never fail. Persistence is best effort: each
// effective mutation hands a full snapshot to a background writer that coalesces pending
// snapshots, so the blob store eventually holds the latest cart.
//
// Mutations issued before Load completes are applied to the empty cart and remembered.
// Nothing is written until the persisted cart has been read; the stored lines then
// replace memory and the remembered mutations are replayed on top of them.
package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	applog "storefront/internal/logger"
	"storefront/internal/price"
)

// DefaultKey is the storage key the cart is persisted under.
const DefaultKey = "@ProdutosApp:cart"

// ErrAlreadyLoaded is returned by Load when it has already been called.
var ErrAlreadyLoaded = errors.New("cart: load already called")

// State is the load lifecycle of a Store: unloaded, loading, then ready for good.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

type blobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// DefaultJournalLimit is the number of pre-ready mutations remembered for replay.
const DefaultJournalLimit = 1000

// Options configures NewStore. Zero values pick the defaults.
type Options struct {
	// Key defaults to DefaultKey.
	Key string
	// SaveTimeout bounds a single background write. Defaults to 5s.
	SaveTimeout time.Duration
	// JournalLimit caps the mutations remembered while loading. Defaults to
	// DefaultJournalLimit; mutations past it still apply to memory but are not replayed.
	JournalLimit int
	Logger       *logrus.Logger
}

// Store is the single owner of the cart. It is safe for concurrent use; each operation
// is one critical section, so readers observe mutations in call order.
type Store struct {
	blobs  blobStore
	key    string
	logger *logrus.Logger
	saver  *saver

	mu           sync.Mutex
	state        State
	lines        []domain.CartLine
	journal      []mutation
	journalLimit int
	journalFull  bool
}

// NewStore returns an unloaded store persisting to blobs. It starts the background
// writer; call Load to read the persisted cart and Close to stop the writer.
func NewStore(blobs blobStore, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 5 * time.Second
	}
	if opts.JournalLimit <= 0 {
		opts.JournalLimit = DefaultJournalLimit
	}
	logger := applog.OrDiscard(opts.Logger)

	s := &Store{
		blobs:        blobs,
		key:          opts.Key,
		logger:       logger,
		journalLimit: opts.JournalLimit,
	}
	s.saver = newSaver(func(ctx context.Context, data []byte) error {
		return blobs.Set(ctx, s.key, data)
	}, opts.SaveTimeout, logger)
	return s
}

// Load reads the persisted cart. A missing, unreadable or malformed snapshot leaves the
// cart empty and still counts as success. It may be called once.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUnloaded {
		s.mu.Unlock()
		return ErrAlreadyLoaded
	}
	s.state = StateLoading
	s.mu.Unlock()

	persisted := s.readPersisted(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = persisted
	replayed := 0
	for _, m := range s.journal {
		if s.applyLocked(m) {
			replayed++
		}
	}
	s.journal = nil
	s.state = StateReady
	if replayed > 0 {
		s.scheduleSaveLocked()
	}
	s.logger.Infof("cart store: ready key=%s lines=%d replayed=%d", s.key, len(s.lines), replayed)
	return nil
}

// readPersisted stops waiting when ctx is done, even if the blob store does not.
func (s *Store) readPersisted(ctx context.Context) []domain.CartLine {
	type result struct {
		b   []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		b, err := s.blobs.Get(ctx, s.key)
		ch <- result{b: b, err: err}
	}()

	var b []byte
	var err error
	select {
	case r := <-ch:
		b, err = r.b, r.err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Infof("cart store: no snapshot key=%s, starting empty", s.key)
		} else {
			s.logger.Warnf("cart store: load key=%s failed, starting empty: %v", s.key, err)
		}
		return nil
	}
	lines, err := Decode(b)
	if err != nil {
		s.logger.Warnf("cart store: snapshot key=%s is malformed, starting empty: %v", s.key, err)
		return nil
	}
	return lines
}

// AddToCart increments the line for product.ID, or appends a new line with quantity 1.
func (s *Store) AddToCart(product domain.Product) {
	s.AddQuantity(product, 1)
}

// AddQuantity behaves like n calls to AddToCart applied as one mutation, so only one
// snapshot is saved. n below 1 is a no-op.
func (s *Store) AddQuantity(product domain.Product, n int) {
	product.NormalizePrice()
	s.mutate(mutation{kind: opAdd, product: product, id: product.ID, count: n})
}

// RemoveProductFromCart deletes the line for productID if present.
func (s *Store) RemoveProductFromCart(productID string) {
	s.mutate(mutation{kind: opRemove, id: productID})
}

// IncreaseQuantity adds one to an existing line. Unknown ids are ignored.
func (s *Store) IncreaseQuantity(productID string) {
	s.mutate(mutation{kind: opIncrease, id: productID})
}

// DecreaseQuantity subtracts one from an existing line, removing it when it reaches zero.
func (s *Store) DecreaseQuantity(productID string) {
	s.mutate(mutation{kind: opDecrease, id: productID})
}

// ClearCart removes every line.
func (s *Store) ClearCart() {
	s.mutate(mutation{kind: opClear})
}

// Drain returns the cart and empties it in a single step, so no concurrent mutation can
// slip in between reading the lines and clearing them.
func (s *Store) Drain() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshotLocked()
	s.mutateLocked(mutation{kind: opClear})
	return snap
}

func (s *Store) mutate(m mutation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutateLocked(m)
}

func (s *Store) mutateLocked(m mutation) {
	if !s.applyLocked(m) {
		return
	}
	if s.state != StateReady {
		if len(s.journal) >= s.journalLimit {
			if !s.journalFull {
				s.logger.Warnf("cart store: journal full limit=%d, later mutations will not survive load", s.journalLimit)
				s.journalFull = true
			}
			return
		}
		s.journal = append(s.journal, m)
		return
	}
	s.scheduleSaveLocked()
}

func (s *Store) scheduleSaveLocked() {
	data, err := Encode(s.lines)
	if err != nil {
		s.logger.Errorf("cart store: encode snapshot: %v", err)
		return
	}
	s.saver.schedule(data)
}

// ItemCount is the sum of all quantities.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return itemCount(s.lines)
}

// Total is the cart value in minor units.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return total(s.lines)
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartLine(nil), s.lines...)
}

// Snapshot returns the lines and aggregates taken under one lock.
func (s *Store) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() domain.Cart {
	return domain.Cart{
		Lines:      append([]domain.CartLine{}, s.lines...),
		ItemCount:  itemCount(s.lines),
		TotalCents: total(s.lines),
	}
}

// State reports where the store is in its load lifecycle.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready reports whether Load has finished and saves are enabled.
func (s *Store) Ready() bool {
	return s.State() == StateReady
}

// Flush waits until every save scheduled so far has been attempted.
func (s *Store) Flush() {
	s.saver.flush()
}

// Close writes the last pending snapshot and stops the background writer. Mutations
// after Close still apply to memory but are no longer persisted.
func (s *Store) Close(ctx context.Context) error {
	return s.saver.close(ctx)
}

func itemCount(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func total(lines []domain.CartLine) int64 {
	var sum int64
	for _, l := range lines {
		sum = price.AddCents(sum, l.TotalCents())
	}
	return sum
}
