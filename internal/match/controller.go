package match

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mkovalev/playsquad/internal/events"
)

// FetchError is the typed error held in controller state when a candidate
// fetch fails. The view consumes it; it never panics the process.
type FetchError struct {
	ViewerID string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch candidates for %s: %v", e.ViewerID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Controller owns the scored candidate list for one session. Fetch cadence
// is driven by identity changes and explicit refetches; display ordering
// is driven by live presence/status ticks through Derive. The two cadences
// are deliberately decoupled: re-ranking on a presence blip is cheap,
// re-fetching scores is not.
type Controller struct {
	source   CandidateSource
	statuses StatusReader
	logger   *slog.Logger

	// gen invalidates in-flight fetches: a response is applied only if
	// its generation is still current.
	gen atomic.Uint64

	mu sync.RWMutex

	// retainOnError keeps the last-known-good list when a fetch fails
	// instead of clearing it. Mutable at runtime via SetRetainOnError.
	retainOnError bool

	viewerID string
	raw      []ScoredCandidate
	loading  bool
	err      error
	fetched  bool

	notify chan struct{}
}

// ControllerConfig configures a Controller.
type ControllerConfig struct {
	Source   CandidateSource
	Statuses StatusReader
	Logger   *slog.Logger

	// RetainOnError keeps the previous list on fetch failure. Default
	// false: clear to empty plus error flag.
	RetainOnError bool
}

// NewController creates a controller.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("candidate source is required")
	}
	if cfg.Statuses == nil {
		return nil, fmt.Errorf("status reader is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{
		source:        cfg.Source,
		statuses:      cfg.Statuses,
		logger:        cfg.Logger,
		retainOnError: cfg.RetainOnError,
		notify:        make(chan struct{}, 1),
	}, nil
}

// Fetch starts a candidate fetch for viewerID. An empty viewerID
// short-circuits to an empty, non-loading, non-error state without issuing
// a request. Starting a fetch supersedes any in-flight one: the stale
// response is discarded when it eventually resolves, never applied.
func (c *Controller) Fetch(ctx context.Context, viewerID string) {
	gen := c.gen.Add(1)

	if viewerID == "" {
		c.mu.Lock()
		c.viewerID = ""
		c.raw = nil
		c.loading = false
		c.err = nil
		c.fetched = false
		c.mu.Unlock()
		c.wake()
		return
	}

	c.mu.Lock()
	c.viewerID = viewerID
	c.loading = true
	c.err = nil
	c.mu.Unlock()
	c.wake()

	go c.run(ctx, gen, viewerID)
}

// Refetch re-issues the fetch for the current identity, superseding any
// in-flight request. With no identity bound it is a no-op.
func (c *Controller) Refetch(ctx context.Context) {
	c.mu.RLock()
	viewerID := c.viewerID
	c.mu.RUnlock()
	if viewerID == "" {
		return
	}
	c.Fetch(ctx, viewerID)
}

func (c *Controller) run(ctx context.Context, gen uint64, viewerID string) {
	list, err := c.source.Candidates(ctx, viewerID)

	c.mu.Lock()
	if gen != c.gen.Load() {
		c.mu.Unlock()
		c.logger.Debug("discarding stale candidate fetch", "viewer_id", viewerID)
		return
	}

	c.loading = false
	if err != nil {
		c.err = &FetchError{ViewerID: viewerID, Err: err}
		if !c.retainOnError {
			c.raw = nil
			c.fetched = false
		}
		c.mu.Unlock()
		c.wake()
		c.logger.Warn("candidate fetch failed", "viewer_id", viewerID, "error", err)
		return
	}

	c.raw = list
	c.fetched = true
	c.err = nil
	c.mu.Unlock()
	c.wake()
}

// Results returns the filtered, sorted view of the cached list. It is a
// pure re-derivation and never triggers a fetch.
func (c *Controller) Results(opts Options) []ScoredCandidate {
	c.mu.RLock()
	raw := make([]ScoredCandidate, len(c.raw))
	copy(raw, c.raw)
	c.mu.RUnlock()

	return Derive(raw, opts, c.statuses)
}

// SetRetainOnError changes the fetch-failure policy at runtime. It applies
// to fetches that resolve after the call.
func (c *Controller) SetRetainOnError(retain bool) {
	c.mu.Lock()
	c.retainOnError = retain
	c.mu.Unlock()
}

// ViewerID returns the identity the cached list was fetched for, or the
// empty string when none is bound.
func (c *Controller) ViewerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewerID
}

// Loading reports whether a fetch is in flight.
func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err returns the fetch error held in state, or nil.
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// IsEmpty reports whether a completed, successful fetch produced no
// candidates.
func (c *Controller) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetched && !c.loading && c.err == nil && len(c.raw) == 0
}

// Updates signals that the derived view may have changed: a fetch
// completed, or a presence/status tick arrived. Consumers re-read Results;
// the channel carries no data and coalesces bursts.
func (c *Controller) Updates() <-chan struct{} {
	return c.notify
}

func (c *Controller) wake() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// OnEvent implements events.Observer: any presence or status tick wakes
// consumers to re-derive.
func (c *Controller) OnEvent(events.Event) error {
	c.wake()
	return nil
}

// Name implements events.Observer.
func (c *Controller) Name() string { return "match-controller" }

// ShouldHandle implements events.Observer.
func (c *Controller) ShouldHandle(t events.Type) bool {
	switch t {
	case events.PresenceSynced, events.PresenceJoined, events.PresenceLeft,
		events.StatusChanged, events.StatusDeleted:
		return true
	default:
		return false
	}
}
