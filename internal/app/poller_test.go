package app

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/kickoff/internal/session"
	"github.com/five82/kickoff/internal/state"
	"github.com/five82/kickoff/internal/timetable"
	"github.com/five82/kickoff/internal/timetable/timetabletest"
)

type callLog struct {
	mu    sync.Mutex
	times []time.Time
}

func (c *callLog) record() {
	c.mu.Lock()
	c.times = append(c.times, time.Now())
	c.mu.Unlock()
}

func (c *callLog) snapshot() []time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Time(nil), c.times...)
}

func TestRunPoller_ReschedulesAfterFailure(t *testing.T) {
	srv := timetabletest.NewServer()
	t.Cleanup(srv.Close)
	srv.FailNext("/status", -1)

	client, err := timetable.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctrl := session.New(client, &state.Store{}, session.WithPollTimeout(100*time.Millisecond))
	before := ctrl.Snapshot()

	const interval = 60 * time.Millisecond
	var calls callLog
	poll := func(ctx context.Context, withData bool) error {
		calls.record()
		return ctrl.Poll(ctx, withData)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()
	if err := RunPoller(ctx, poll, interval, zerolog.Nop()); err != nil {
		t.Fatalf("RunPoller returned error: %v", err)
	}

	times := calls.snapshot()
	if len(times) < 2 {
		t.Fatalf("poll called %d times, want at least 2", len(times))
	}
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < interval {
			t.Fatalf("gap %d = %v, want >= %v", i, gap, interval)
		}
	}
	// The last request may be cut off by the deadline before it reaches the server.
	if got := len(srv.RequestsTo("/status")); got < len(times)-1 || got > len(times) {
		t.Fatalf("status requests = %d, want about %d", got, len(times))
	}
	if after := ctrl.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("state changed after failed polls:\nbefore %#v\nafter  %#v", before, after)
	}
}

func TestRunPoller_WaitsForSlowPoll(t *testing.T) {
	const interval = 20 * time.Millisecond
	var calls callLog
	poll := func(ctx context.Context, _ bool) error {
		calls.record()
		select {
		case <-time.After(3 * interval):
		case <-ctx.Done():
		}
		return errors.New("slow")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	_ = RunPoller(ctx, poll, interval, zerolog.Nop())

	times := calls.snapshot()
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < 4*interval {
			t.Fatalf("gap %d = %v, want poll duration plus interval", i, gap)
		}
	}
}

func TestRunPoller_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := RunPoller(ctx, func(context.Context, bool) error {
		called = true
		return nil
	}, time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatalf("RunPoller returned error: %v", err)
	}
	if called {
		t.Fatal("poll should not run after cancellation")
	}
}

func TestRunPoller_DefaultsInterval(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var calls callLog
	_ = RunPoller(ctx, func(context.Context, bool) error {
		calls.record()
		return nil
	}, 0, zerolog.Nop())
	if n := len(calls.snapshot()); n != 0 {
		t.Fatalf("poll called %d times within 50ms, want 0 with the %v default", n, defaultPollInterval)
	}
}
