package status

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mkovalev/playsquad/internal/events"
	"github.com/mkovalev/playsquad/internal/storage/repository"
)

// DefaultOptimisticTTL bounds how long an optimistic local write is trusted
// without a confirming change-feed event. After the TTL the entry is
// discarded and the next read falls back to the default.
const DefaultOptimisticTTL = 30 * time.Second

// entry is one in-memory status value. Optimistic entries were written
// locally and are awaiting feed confirmation.
type entry struct {
	status     Status
	optimistic bool
	writtenAt  time.Time
}

// Store is the process-wide manual status map. It is seeded once per
// session from persisted storage, then updated by the remote change feed
// and by local optimistic writes.
//
// Writes race with feed confirmation by design: last write wins at the map
// level and the feed is trusted to converge the state. Persistence
// failures on local writes are logged, never rolled back, and never
// surfaced to the caller synchronously.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	seeded  map[string]bool

	// self is the bound session identity, set by the first SeedOnce call.
	self string

	repo          repository.StatusRepository
	dispatcher    *events.Dispatcher
	logger        *slog.Logger
	optimisticTTL time.Duration

	now func() time.Time
}

// StoreConfig configures a Store.
type StoreConfig struct {
	Repository    repository.StatusRepository
	Dispatcher    *events.Dispatcher
	Logger        *slog.Logger
	OptimisticTTL time.Duration
}

// NewStore creates a manual status store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.OptimisticTTL <= 0 {
		cfg.OptimisticTTL = DefaultOptimisticTTL
	}

	return &Store{
		entries:       make(map[string]entry),
		seeded:        make(map[string]bool),
		repo:          cfg.Repository,
		dispatcher:    cfg.Dispatcher,
		logger:        cfg.Logger,
		optimisticTTL: cfg.OptimisticTTL,
		now:           time.Now,
	}, nil
}

// SeedOnce performs the one-time session seed for userID: a single "set to
// online if absent" persistence write, then loads the persisted value into
// the map. Repeated calls for the same identifier are no-ops, so callers
// may invoke it from every render path. The first seeded identity becomes
// the store's bound identity for SetMine and Shutdown.
func (s *Store) SeedOnce(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	s.mu.Lock()
	if s.seeded[userID] {
		s.mu.Unlock()
		return nil
	}
	// Mark before the write so concurrent callers cannot double-seed.
	s.seeded[userID] = true
	if s.self == "" {
		s.self = userID
	}
	s.mu.Unlock()

	if err := s.repo.Seed(ctx, userID); err != nil {
		return fmt.Errorf("seed status for %s: %w", userID, err)
	}

	row, err := s.repo.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("read seeded status for %s: %w", userID, err)
	}
	if row != nil {
		if st, perr := Parse(row.Status); perr == nil {
			s.mu.Lock()
			s.entries[userID] = entry{status: st, writtenAt: s.now()}
			s.mu.Unlock()
		} else {
			s.logger.Warn("ignoring malformed persisted status",
				"user_id", userID, "status", row.Status)
		}
	}

	return nil
}

// ApplyRemoteChange applies a change-feed event. A deleted row removes the
// map entry, which readers treat as "fall back to default", not as
// offline. Feed values unconditionally overwrite any optimistic entry.
func (s *Store) ApplyRemoteChange(userID string, st Status, deleted bool) {
	s.mu.Lock()
	if deleted {
		delete(s.entries, userID)
	} else {
		s.entries[userID] = entry{status: st, writtenAt: s.now()}
	}
	s.mu.Unlock()

	if s.dispatcher != nil {
		if deleted {
			s.dispatcher.Dispatch(events.Event{Type: events.StatusDeleted, UserID: userID})
		} else {
			s.dispatcher.Dispatch(events.Event{Type: events.StatusChanged, UserID: userID, Status: string(st)})
		}
	}
}

// SetMine sets the bound identity's status. The optimistic value is
// immediately visible to readers; persistence is best-effort and a failure
// leaves the optimistic value in place for the feed to reconcile.
func (s *Store) SetMine(ctx context.Context, st Status) error {
	if !st.Valid() {
		return fmt.Errorf("invalid status %q", st)
	}

	s.mu.Lock()
	self := s.self
	if self == "" {
		s.mu.Unlock()
		return fmt.Errorf("no bound identity: call SeedOnce first")
	}
	s.entries[self] = entry{status: st, optimistic: true, writtenAt: s.now()}
	s.mu.Unlock()

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(events.Event{Type: events.StatusChanged, UserID: self, Status: string(st)})
	}

	if err := s.repo.Upsert(ctx, self, string(st)); err != nil {
		s.logger.Warn("status persistence failed; keeping optimistic value",
			"user_id", self, "status", st, "error", err)
	}

	return nil
}

// Get returns the manual status for userID and whether an entry exists.
// Optimistic entries older than the TTL are discarded: the feed never
// confirmed them, so the next read falls back to the default.
func (s *Store) Get(userID string) (Status, bool) {
	s.mu.RLock()
	e, ok := s.entries[userID]
	ttl := s.optimisticTTL
	s.mu.RUnlock()
	if !ok {
		return "", false
	}

	if e.optimistic && s.now().Sub(e.writtenAt) > ttl {
		s.mu.Lock()
		// Re-check under the write lock; the feed may have confirmed.
		if cur, still := s.entries[userID]; still && cur.optimistic && s.now().Sub(cur.writtenAt) > s.optimisticTTL {
			delete(s.entries, userID)
			s.mu.Unlock()
			s.logger.Debug("discarded unconfirmed optimistic status", "user_id", userID)
			return "", false
		}
		s.mu.Unlock()
		return s.Get(userID)
	}

	return e.status, true
}

// SetOptimisticTTL changes the unconfirmed-write lifetime at runtime.
// Non-positive values restore the default. Existing entries are judged
// against the new bound on their next read.
func (s *Store) SetOptimisticTTL(d time.Duration) {
	if d <= 0 {
		d = DefaultOptimisticTTL
	}
	s.mu.Lock()
	s.optimisticTTL = d
	s.mu.Unlock()
}

// Shutdown handles identity loss. It issues one fire-and-forget persisted
// write marking the outgoing identity offline so no zombie "online" row
// outlives the session, then clears all local state. The write's failure
// is logged and otherwise ignored; the map is cleared regardless.
func (s *Store) Shutdown(ctx context.Context) {
	s.mu.RLock()
	self := s.self
	s.mu.RUnlock()

	if self != "" {
		if err := s.repo.Upsert(ctx, self, string(Offline)); err != nil {
			s.logger.Warn("failed to write offline status on shutdown",
				"user_id", self, "error", err)
		}
	}

	s.mu.Lock()
	s.self = ""
	s.entries = make(map[string]entry)
	s.seeded = make(map[string]bool)
	s.mu.Unlock()
}
