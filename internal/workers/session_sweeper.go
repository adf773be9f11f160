package workers

import (
	"context"
	"sync"
	"time"

	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/internal/service"
	"github.com/tvsaude/auth-service/internal/store"
)

// defaultSweepInterval applies when the configured interval is zero or
// negative.
const defaultSweepInterval = time.Minute

// SessionSweeper periodically flips expired sessions to inactive in the
// persistent store and evicts them from the in-memory cache. Expiry is also
// enforced lazily on every session validation, so the sweeper only bounds
// how long dead rows stay flagged active, it is not load-bearing for
// correctness.
type SessionSweeper struct {
	sessions store.SessionRepository
	cache    *service.SessionCache
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// NewSessionSweeper creates a sweeper that runs every interval. The job is
// idle until Start is called.
func NewSessionSweeper(sessions store.SessionRepository, cache *service.SessionCache, interval time.Duration, logger *logger.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	return &SessionSweeper{
		sessions: sessions,
		cache:    cache,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start implements [Worker]. It stops any previously running sweep loop,
// then launches a background goroutine that sweeps every interval. The
// goroutine exits when ctx is cancelled or Stop is called.
func (s *SessionSweeper) Start(ctx context.Context) {
	s.Stop()

	s.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		t := time.NewTicker(s.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				s.sweep(jobCtx)
			}
		}
	}()
}

// Stop implements [Worker]. It cancels the sweep goroutine's context and
// blocks until the goroutine has fully exited. Safe to call when the
// sweeper is not running (no-op in that case).
func (s *SessionSweeper) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// sweep runs one expiry pass over the store and the cache.
func (s *SessionSweeper) sweep(ctx context.Context) {
	now := s.now()

	expired, err := s.sessions.ExpireSessions(ctx, now)
	if err != nil {
		s.logger.Err(err).Msg("session expiry sweep failed")
		return
	}

	evicted := s.cache.EvictExpired(now)

	if expired > 0 || evicted > 0 {
		s.logger.Debug().
			Int64("expired", expired).
			Int("evicted", evicted).
			Msg("session sweep completed")
	}
}
