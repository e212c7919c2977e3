package cart

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// saver writes cart snapshots in the background. Only the newest pending snapshot is
// kept: if several mutations happen while a write is in flight, the next write carries
// the latest state and the intermediate ones are skipped. Failures are logged only.
type saver struct {
	write   func(ctx context.Context, data []byte) error
	timeout time.Duration
	logger  *logrus.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending []byte
	queued  uint64
	written uint64
	closed  bool

	done chan struct{}
}

func newSaver(write func(ctx context.Context, data []byte) error, timeout time.Duration, logger *logrus.Logger) *saver {
	s := &saver{
		write:   write,
		timeout: timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

func (s *saver) schedule(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Warnf("cart store: save dropped after close bytes=%d", len(data))
		return
	}
	s.pending = data
	s.queued++
	s.cond.Broadcast()
}

// flush blocks until every snapshot scheduled before the call has been attempted.
func (s *saver) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.queued
	for s.written < target {
		s.cond.Wait()
	}
}

// close stops accepting snapshots and waits for the pending one to be written.
func (s *saver) close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *saver) run() {
	defer close(s.done)

	s.mu.Lock()
	for {
		for s.pending == nil && !s.closed {
			s.cond.Wait()
		}
		if s.pending == nil {
			s.mu.Unlock()
			return
		}
		data, seq := s.pending, s.queued
		s.pending = nil
		s.mu.Unlock()

		s.save(data)

		s.mu.Lock()
		s.written = seq
		s.cond.Broadcast()
	}
}

func (s *saver) save(data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.write(ctx, data); err != nil {
		s.logger.Errorf("cart store: save failed bytes=%d error=%v", len(data), err)
		return
	}
	s.logger.Debugf("cart store: saved bytes=%d", len(data))
}
