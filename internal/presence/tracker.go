// Package presence tracks which users are currently connected to the
// real-time presence channel. Membership is ephemeral: it lives only as
// long as the channel connection and is never persisted.
package presence

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mkovalev/playsquad/internal/events"
)

// State is the tracker's position in its connection lifecycle.
type State int

const (
	Disconnected State = iota
	Connecting
	Synced
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Synced:
		return "synced"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Conn is the tracker's handle on the live channel transport. AnnounceLeave
// must be called before Close: a bare disconnect leaves remote observers
// believing this member is still present until a server-side timeout.
type Conn interface {
	AnnounceLeave(ctx context.Context) error
	Close() error
}

// Tracker is the process-wide reactive store of channel membership.
// State machine: Disconnected -> Connecting -> Synced. Entering Synced
// replaces the member set atomically from the channel snapshot; later
// join/leave events mutate it incrementally.
type Tracker struct {
	mu      sync.RWMutex
	state   State
	members map[string]struct{}
	conn    Conn

	dispatcher *events.Dispatcher
	logger     *slog.Logger
}

// NewTracker creates a tracker in the Disconnected state.
func NewTracker(dispatcher *events.Dispatcher, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		state:      Disconnected,
		members:    make(map[string]struct{}),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// BeginConnect records the channel transport and moves to Connecting.
func (t *Tracker) BeginConnect(conn Conn) {
	t.mu.Lock()
	t.conn = conn
	t.state = Connecting
	t.mu.Unlock()
	t.logger.Debug("presence channel connecting")
}

// Sync replaces the member set wholesale from the channel's membership
// snapshot and enters Synced. Replacement rather than merge avoids stale
// entries after a missed event.
func (t *Tracker) Sync(memberIDs []string) {
	members := make(map[string]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = struct{}{}
	}

	t.mu.Lock()
	t.members = members
	t.state = Synced
	t.mu.Unlock()

	t.logger.Debug("presence synced", "members", len(memberIDs))
	if t.dispatcher != nil {
		t.dispatcher.Dispatch(events.Event{Type: events.PresenceSynced, Members: memberIDs})
	}
}

// HandleJoin records a member joining the channel.
func (t *Tracker) HandleJoin(userID string) {
	t.mu.Lock()
	t.members[userID] = struct{}{}
	t.mu.Unlock()

	if t.dispatcher != nil {
		t.dispatcher.Dispatch(events.Event{Type: events.PresenceJoined, UserID: userID})
	}
}

// HandleLeave records a member leaving the channel.
func (t *Tracker) HandleLeave(userID string) {
	t.mu.Lock()
	delete(t.members, userID)
	t.mu.Unlock()

	if t.dispatcher != nil {
		t.dispatcher.Dispatch(events.Event{Type: events.PresenceLeft, UserID: userID})
	}
}

// Contains reports whether userID is currently in the member set.
func (t *Tracker) Contains(userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.members[userID]
	return ok
}

// Members returns a sorted copy of the member set.
func (t *Tracker) Members() []string {
	t.mu.RLock()
	ids := make([]string, 0, len(t.members))
	for id := range t.members {
		ids = append(ids, id)
	}
	t.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// State returns the tracker's current lifecycle state.
func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Disconnect tears the channel down: announce departure first, then close
// the transport, then clear the member set and return to Disconnected.
// The leave-then-close order is a correctness requirement, not an
// optimization. A failed leave announcement is logged and teardown
// continues; local state is cleared regardless.
func (t *Tracker) Disconnect(ctx context.Context) error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	var closeErr error
	if conn != nil {
		if err := conn.AnnounceLeave(ctx); err != nil {
			t.logger.Warn("presence leave announcement failed", "error", err)
		}
		closeErr = conn.Close()
	}

	t.mu.Lock()
	t.members = make(map[string]struct{})
	t.state = Disconnected
	t.mu.Unlock()

	t.logger.Debug("presence channel disconnected")
	if t.dispatcher != nil {
		t.dispatcher.Dispatch(events.Event{Type: events.PresenceSynced, Members: nil})
	}

	if closeErr != nil {
		return fmt.Errorf("close presence channel: %w", closeErr)
	}
	return nil
}
