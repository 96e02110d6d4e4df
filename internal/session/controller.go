package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/kickoff/internal/state"
	"github.com/five82/kickoff/internal/timeline"
	"github.com/five82/kickoff/internal/timetable"
)

// Phase is the lifecycle position of the search session.
type Phase int

const (
	Idle Phase = iota
	Running
	Stopping
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "idle"
	}
}

// DefaultPollTimeout bounds a single status check.
const DefaultPollTimeout = 2 * time.Second

// Snapshot is a copy of the session state for renderers.
type Snapshot struct {
	Phase          Phase
	TourName       string
	Window         timeline.Window
	Attempts       int
	SolutionsCount int
	Busy           bool
	ResultsVisible bool
	LastPoll       time.Time
	LastError      error
	// WindowErr is set while the session's day window could not be read.
	// Window then stays empty and no solution can be selected.
	WindowErr      error
}

// TriggerLabel is the caption of the start/stop control.
func (s Snapshot) TriggerLabel() string {
	if s.Phase == Idle {
		return "Start"
	}
	return "Stop"
}

// Controller drives one backend search session. Start, Stop and LoadExisting
// share a single in-flight slot; Poll runs independently of it. Store writes
// happen under mu together with the snapshot fields they belong to.
type Controller struct {
	backend     timetable.Backend
	store       *state.Store
	log         zerolog.Logger
	pollTimeout time.Duration

	busy atomic.Bool

	mu   sync.Mutex
	snap Snapshot
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithPollTimeout overrides DefaultPollTimeout.
func WithPollTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.pollTimeout = d
		}
	}
}

// New builds an idle controller writing solutions into store.
func New(backend timetable.Backend, store *state.Store, opts ...Option) *Controller {
	c := &Controller{
		backend:     backend,
		store:       store,
		log:         zerolog.Nop(),
		pollTimeout: DefaultPollTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.snap
	snap.Busy = c.busy.Load()
	return snap
}

// View returns the session and store state as one consistent pair.
func (c *Controller) View() (Snapshot, state.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.snap
	snap.Busy = c.busy.Load()
	return snap, c.store.Snapshot()
}

// Store returns the solution store the controller writes to.
func (c *Controller) Store() *state.Store {
	return c.store
}

// DismissError clears the last recorded transport error.
func (c *Controller) DismissError() {
	c.mu.Lock()
	c.snap.LastError = nil
	c.mu.Unlock()
}

// Start validates req and launches a search. Invalid requests are never sent.
func (c *Controller) Start(ctx context.Context, req timetable.SearchRequest) error {
	if err := validate(req); err != nil {
		return err
	}
	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.busy.Store(false)

	c.mu.Lock()
	phase := c.snap.Phase
	c.mu.Unlock()
	if phase != Idle {
		return ErrSessionActive
	}

	c.log.Info().Str("tour", req.TourName).Int("fields", len(req.Fields)).Int("teams", len(req.Teams)).Msg("starting search")
	resp, err := c.backend.StartSearch(ctx, req)
	if err != nil {
		err = fmt.Errorf("start search: %w", err)
		c.fail(err)
		return err
	}

	window, werr := timeline.WindowFromTimestamps(resp.DayStart, resp.DayEnd)
	if werr != nil {
		werr = fmt.Errorf("session day window: %w", werr)
		c.log.Error().Err(werr).Msg("solutions cannot be drawn")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Load(resp.Solutions, resp.Teams)
	c.snap.Phase = Running
	c.snap.TourName = resp.TourName
	c.snap.Window = window
	c.snap.WindowErr = werr
	c.snap.Attempts = resp.Attempts
	c.snap.SolutionsCount = len(resp.Solutions)
	c.snap.ResultsVisible = true
	c.snap.LastError = nil
	c.log.Info().Str("tour", resp.TourName).Int("solutions", len(resp.Solutions)).Msg("search started")
	return nil
}

// Stop cancels the running search. On failure the session stays Running.
func (c *Controller) Stop(ctx context.Context) error {
	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.busy.Store(false)

	c.mu.Lock()
	if c.snap.Phase == Idle {
		c.mu.Unlock()
		return ErrNoSession
	}
	c.snap.Phase = Stopping
	c.mu.Unlock()

	c.log.Info().Msg("stopping search")
	if err := c.backend.StopSearch(ctx); err != nil {
		err = fmt.Errorf("stop search: %w", err)
		c.mu.Lock()
		c.snap.Phase = Running
		c.mu.Unlock()
		c.fail(err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Phase = Idle
	c.snap.ResultsVisible = false
	c.snap.LastError = nil
	c.log.Info().Msg("search stopped")
	return nil
}

// LoadExisting fetches every solution found so far and replaces the stored
// sequence. The team directory is kept.
func (c *Controller) LoadExisting(ctx context.Context) error {
	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.busy.Store(false)

	resp, err := c.backend.FetchSolutions(ctx)
	if err != nil {
		err = fmt.Errorf("load solutions: %w", err)
		c.fail(err)
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.ReplaceSolutions(resp.Solutions)
	c.snap.SolutionsCount = len(resp.Solutions)
	c.setAttemptsLocked(resp.Attempts)
	c.snap.ResultsVisible = true
	c.snap.LastError = nil
	c.log.Debug().Int("solutions", len(resp.Solutions)).Int("attempts", resp.Attempts).Msg("solutions loaded")
	return nil
}

// Poll checks the backend status once. A failed check changes nothing and
// returns the error. A stop in flight keeps its Stopping phase; the stop's
// own completion decides what follows.
func (c *Controller) Poll(ctx context.Context, withData bool) error {
	pctx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	st, err := c.backend.FetchStatus(pctx, withData)
	if err != nil {
		return fmt.Errorf("poll status: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.LastPoll = time.Now()

	if !st.InProgress() {
		if c.snap.Phase != Stopping {
			c.snap.Phase = Idle
			c.snap.ResultsVisible = false
		}
		return nil
	}

	c.setAttemptsLocked(st.Attempts)
	c.snap.SolutionsCount = st.SolutionsCount
	if c.snap.Phase != Stopping {
		c.snap.Phase = Running
	}
	c.snap.ResultsVisible = true

	if st.HasSessionData() {
		c.store.SetTeams(st.Teams)
		c.snap.TourName = st.TourName
		window, werr := timeline.WindowFromTimestamps(st.DayStart, st.DayEnd)
		switch {
		case werr == nil:
			c.snap.Window = window
			c.snap.WindowErr = nil
		case c.snap.Window.Empty():
			c.snap.WindowErr = fmt.Errorf("session day window: %w", werr)
			c.log.Error().Err(c.snap.WindowErr).Msg("solutions cannot be drawn")
		default:
			// The last readable window stays in effect.
			c.log.Warn().Err(werr).Msg("session day window unreadable")
		}
	}
	return nil
}

// setAttemptsLocked keeps attempts non-decreasing within a running session.
// An idle controller accepts any value as the start of a new count.
func (c *Controller) setAttemptsLocked(n int) {
	if c.snap.Phase == Idle || n > c.snap.Attempts {
		c.snap.Attempts = n
	}
}

func (c *Controller) fail(err error) {
	c.log.Error().Err(err).Msg("request failed")
	c.mu.Lock()
	c.snap.LastError = err
	c.mu.Unlock()
}
