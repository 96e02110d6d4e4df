package session

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/five82/kickoff/internal/state"
	"github.com/five82/kickoff/internal/timeline"
	"github.com/five82/kickoff/internal/timetable"
	"github.com/five82/kickoff/internal/timetable/timetabletest"
)

func newController(t *testing.T, opts ...Option) (*Controller, *timetabletest.Server) {
	t.Helper()
	srv := timetabletest.NewServer()
	t.Cleanup(srv.Close)
	client, err := timetable.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return New(client, &state.Store{}, opts...), srv
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func sampleRequest() timetable.SearchRequest {
	return timetable.SearchRequest{
		TourName:  "Spring Cup",
		StadiumID: 1,
		Fields: []timetable.FieldSpec{
			{Format: 5, From: "09:00", To: "21:00", Duration: 60},
			{Format: 7, From: "09:00", To: "21:00", Duration: 60},
		},
		Teams: []int{1, 2, 3, 4},
	}
}

func sampleSession() timetabletest.Session {
	return timetabletest.Session{
		TourName: "Spring Cup",
		Teams:    timetable.TeamDirectory{1: "Lions", 2: "Tigers", 3: "Bears", 4: "Owls"},
		DayStart: "2024-05-01T09:00:00",
		DayEnd:   "2024-05-01T21:00:00",
		Solutions: []timetable.Solution{
			{Sum: 3, Hash: "h1", Games: timetable.FieldSchedule{
				{Field: "Field 1", Games: []timetable.ScheduledGame{{TeamID1: 1, TeamID2: 2, Start: "2024-05-01T10:00:00", End: "2024-05-01T11:00:00"}}},
				{Field: "Field 2", Games: []timetable.ScheduledGame{{TeamID1: 3, TeamID2: 4, Start: "2024-05-01T10:00:00", End: "2024-05-01T11:00:00"}}},
			}},
		},
		Attempts: 5,
	}
}

func TestStart_RejectsFieldFormat(t *testing.T) {
	for _, format := range []int{2, 8} {
		c, srv := newController(t)
		req := sampleRequest()
		req.Fields[1].Format = format

		err := c.Start(testContext(t), req)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("format %d: err = %v, want *ValidationError", format, err)
		}
		if verr.Field != 2 || verr.Format != format {
			t.Fatalf("ValidationError = %+v, want field 2 format %d", verr, format)
		}
		if n := len(srv.Requests()); n != 0 {
			t.Fatalf("format %d: backend saw %d requests, want 0", format, n)
		}
		if snap := c.Snapshot(); snap.Phase != Idle || snap.Busy {
			t.Fatalf("snapshot = %+v, want idle and not busy", snap)
		}
	}
}

func TestStart_Success(t *testing.T) {
	c, srv := newController(t)
	srv.SetSession(sampleSession())

	if err := c.Start(testContext(t), sampleRequest()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	snap := c.Snapshot()
	if snap.Phase != Running || !snap.ResultsVisible || snap.Busy {
		t.Fatalf("snapshot = %+v, want running, visible, not busy", snap)
	}
	if snap.TriggerLabel() != "Stop" {
		t.Fatalf("TriggerLabel = %q, want Stop", snap.TriggerLabel())
	}
	if snap.TourName != "Spring Cup" || snap.Attempts != 5 || snap.SolutionsCount != 1 {
		t.Fatalf("snapshot = %+v, want tour, attempts 5, 1 solution", snap)
	}
	if snap.Window != (timeline.Window{Start: 540, End: 1260}) {
		t.Fatalf("window = %+v, want 540..1260", snap.Window)
	}
	if got := c.Store().Snapshot().Teams.Name(4); got != "Owls" {
		t.Fatalf("team 4 = %q, want Owls", got)
	}

	if err := c.Start(testContext(t), sampleRequest()); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second Start err = %v, want ErrSessionActive", err)
	}
}

func TestStart_TransportFailure(t *testing.T) {
	c, srv := newController(t)
	srv.FailNext("/search-start", 1)

	err := c.Start(testContext(t), sampleRequest())
	if err == nil {
		t.Fatal("expected start failure")
	}
	snap := c.Snapshot()
	if snap.Phase != Idle || snap.Busy || snap.TriggerLabel() != "Start" {
		t.Fatalf("snapshot = %+v, want idle, re-enabled Start trigger", snap)
	}
	if snap.LastError == nil {
		t.Fatal("LastError not recorded")
	}
}

func TestStop(t *testing.T) {
	c, srv := newController(t)
	srv.SetSession(sampleSession())

	if err := c.Stop(testContext(t)); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Stop while idle err = %v, want ErrNoSession", err)
	}
	if err := c.Start(testContext(t), sampleRequest()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	srv.FailNext("/search-stop", 1)
	if err := c.Stop(testContext(t)); err == nil {
		t.Fatal("expected stop failure")
	}
	if snap := c.Snapshot(); snap.Phase != Running || snap.Busy || snap.LastError == nil {
		t.Fatalf("after failed stop = %+v, want running with error", snap)
	}

	if err := c.Stop(testContext(t)); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	snap := c.Snapshot()
	if snap.Phase != Idle || snap.ResultsVisible || snap.TriggerLabel() != "Start" || snap.LastError != nil {
		t.Fatalf("after stop = %+v, want idle, hidden, Start", snap)
	}
}

type blockingBackend struct {
	timetable.Backend
	release chan struct{}
	entered chan struct{}
}

func (b *blockingBackend) StartSearch(ctx context.Context, _ timetable.SearchRequest) (*timetable.StartResponse, error) {
	close(b.entered)
	select {
	case <-b.release:
		return &timetable.StartResponse{TourName: "Cup"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *blockingBackend) FetchSolutions(context.Context) (*timetable.SolutionsResponse, error) {
	return &timetable.SolutionsResponse{}, nil
}

func TestBusyRefusesConcurrentCalls(t *testing.T) {
	backend := &blockingBackend{release: make(chan struct{}), entered: make(chan struct{})}
	c := New(backend, &state.Store{})

	ctx := testContext(t)
	var wg sync.WaitGroup
	wg.Add(1)
	var startErr error
	go func() {
		defer wg.Done()
		startErr = c.Start(ctx, sampleRequest())
	}()
	<-backend.entered

	if !c.Snapshot().Busy {
		t.Fatal("Busy = false while start is in flight")
	}
	if err := c.LoadExisting(testContext(t)); !errors.Is(err, ErrBusy) {
		t.Fatalf("LoadExisting err = %v, want ErrBusy", err)
	}
	if err := c.Stop(testContext(t)); !errors.Is(err, ErrBusy) {
		t.Fatalf("Stop err = %v, want ErrBusy", err)
	}

	close(backend.release)
	wg.Wait()
	if startErr != nil {
		t.Fatalf("Start returned error: %v", startErr)
	}
	if c.Snapshot().Busy {
		t.Fatal("Busy = true after start completed")
	}
}

func TestPoll_UpdatesRunningSession(t *testing.T) {
	c, srv := newController(t)
	sess := sampleSession()
	srv.SetSession(sess)
	srv.SetStatus(timetable.StatusProcess)

	if err := c.Poll(testContext(t), true); err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	snap := c.Snapshot()
	if snap.Phase != Running || !snap.ResultsVisible || snap.TourName != "Spring Cup" {
		t.Fatalf("snapshot = %+v, want resumed running session", snap)
	}
	if snap.Window != (timeline.Window{Start: 540, End: 1260}) {
		t.Fatalf("window = %+v", snap.Window)
	}
	if got := c.Store().Snapshot().Teams.Name(1); got != "Lions" {
		t.Fatalf("team 1 = %q, want Lions", got)
	}
	if snap.LastPoll.IsZero() {
		t.Fatal("LastPoll not set")
	}

	srv.SetAttempts(9)
	if err := c.Poll(testContext(t), false); err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if got := c.Snapshot().Attempts; got != 9 {
		t.Fatalf("attempts = %d, want 9", got)
	}

	srv.SetAttempts(4)
	if err := c.Poll(testContext(t), false); err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if got := c.Snapshot().Attempts; got != 9 {
		t.Fatalf("attempts decreased to %d, want 9", got)
	}

	srv.SetStatus(timetable.StatusStopped)
	if err := c.Poll(testContext(t), false); err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if snap := c.Snapshot(); snap.Phase != Idle || snap.ResultsVisible {
		t.Fatalf("snapshot = %+v, want idle and hidden", snap)
	}
}

func TestPoll_FailureChangesNothing(t *testing.T) {
	c, srv := newController(t)
	srv.SetSession(sampleSession())
	if err := c.Start(testContext(t), sampleRequest()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	before := c.Snapshot()

	srv.FailNext("/status", 1)
	if err := c.Poll(testContext(t), false); err == nil {
		t.Fatal("expected poll error")
	}
	if after := c.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("snapshot changed on failure:\n got %+v\nwant %+v", after, before)
	}
}

func TestPoll_Timeout(t *testing.T) {
	c, srv := newController(t, WithPollTimeout(50*time.Millisecond))
	srv.SetStatusDelay(time.Second)

	start := time.Now()
	err := c.Poll(context.Background(), false)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 900*time.Millisecond {
		t.Fatalf("poll took %v, want bounded by timeout", elapsed)
	}
}

func TestLoadExistingIsIdempotent(t *testing.T) {
	c, srv := newController(t)
	sess := sampleSession()
	sess.Solutions = append(sess.Solutions, timetable.Solution{Sum: 4, Hash: "h2"})
	srv.SetSession(sess)
	c.Store().Load(nil, timetable.TeamDirectory{1: "Lions"})

	if err := c.LoadExisting(testContext(t)); err != nil {
		t.Fatalf("LoadExisting returned error: %v", err)
	}
	first := c.Store().Snapshot()
	firstSnap := c.Snapshot()

	if err := c.LoadExisting(testContext(t)); err != nil {
		t.Fatalf("second LoadExisting returned error: %v", err)
	}
	second := c.Store().Snapshot()

	if !reflect.DeepEqual(first.Solutions, second.Solutions) || !reflect.DeepEqual(first.Teams, second.Teams) {
		t.Fatalf("store differs after second load:\n%+v\n%+v", first, second)
	}
	if len(second.Solutions) != 2 || second.Teams.Name(1) != "Lions" {
		t.Fatalf("store = %+v, want 2 solutions and kept directory", second)
	}
	if firstSnap.SolutionsCount != 2 || firstSnap.Attempts != 5 {
		t.Fatalf("snapshot = %+v, want count 2 attempts 5", firstSnap)
	}
}

func TestEndToEndSelection(t *testing.T) {
	c, srv := newController(t)
	srv.SetSession(sampleSession())
	if err := c.Start(testContext(t), sampleRequest()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	snap := c.Snapshot()

	d, err := c.Store().Select(0, snap.Window, snap.TourName)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if len(d.Timelines) != 4 {
		t.Fatalf("timelines = %d, want 4", len(d.Timelines))
	}
	for _, tl := range d.Timelines {
		if len(tl.Bars) != 1 || tl.Bars[0].Interval != (timeline.Interval{Left: 8, Width: 8}) {
			t.Fatalf("team %d bars = %+v, want one 8/8 bar", tl.TeamID, tl.Bars)
		}
	}
}

func TestStart_UnreadableWindowBlocksSelection(t *testing.T) {
	c, srv := newController(t)
	sess := sampleSession()
	sess.DayStart, sess.DayEnd = "09:00", "21:00"
	srv.SetSession(sess)

	if err := c.Start(testContext(t), sampleRequest()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	snap := c.Snapshot()
	if snap.Phase != Running {
		t.Fatalf("phase = %v, want running", snap.Phase)
	}
	if !errors.Is(snap.WindowErr, timeline.ErrMalformedTimestamp) {
		t.Fatalf("WindowErr = %v, want ErrMalformedTimestamp", snap.WindowErr)
	}
	if _, err := c.Store().Select(0, snap.Window, snap.TourName); !errors.Is(err, state.ErrEmptyWindow) {
		t.Fatalf("Select err = %v, want ErrEmptyWindow", err)
	}

	// A readable window from a later poll clears the error.
	sess.DayStart, sess.DayEnd = "2024-05-01T09:00:00", "2024-05-01T21:00:00"
	srv.SetSession(sess)
	srv.SetStatus(timetable.StatusProcess)
	if err := c.Poll(testContext(t), true); err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	snap = c.Snapshot()
	if snap.WindowErr != nil || snap.Window != (timeline.Window{Start: 540, End: 1260}) {
		t.Fatalf("snapshot = %+v, want window 540..1260 without error", snap)
	}
	if _, err := c.Store().Select(0, snap.Window, snap.TourName); err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
}

func TestPoll_UnreadableWindowKeepsPrevious(t *testing.T) {
	c, srv := newController(t)
	sess := sampleSession()
	srv.SetSession(sess)
	srv.SetStatus(timetable.StatusProcess)
	if err := c.Poll(testContext(t), true); err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}

	sess.DayEnd = "bad"
	srv.SetSession(sess)
	if err := c.Poll(testContext(t), true); err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	snap := c.Snapshot()
	if snap.WindowErr != nil || snap.Window != (timeline.Window{Start: 540, End: 1260}) {
		t.Fatalf("snapshot = %+v, want previous window kept", snap)
	}
}

func TestView_PairsDirectoryWithSession(t *testing.T) {
	c, srv := newController(t)
	srv.SetSession(sampleSession())
	srv.SetStatus(timetable.StatusProcess)
	if err := c.Poll(testContext(t), true); err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}

	snap, store := c.View()
	if snap.TourName != "Spring Cup" || store.Teams.Name(1) != "Lions" {
		t.Fatalf("view = %q / %v, want Spring Cup with its teams", snap.TourName, store.Teams)
	}

	next := sampleSession()
	next.TourName = "Autumn Cup"
	next.Teams = timetable.TeamDirectory{1: "Hawks"}
	srv.SetSession(next)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Poll(context.Background(), true)
	}()
	for {
		snap, store := c.View()
		switch {
		case snap.TourName == "Spring Cup" && store.Teams.Name(1) != "Lions",
			snap.TourName == "Autumn Cup" && store.Teams.Name(1) != "Hawks":
			t.Fatalf("view tore: tour %q with team 1 %q", snap.TourName, store.Teams.Name(1))
		}
		select {
		case <-done:
			return
		default:
		}
	}
}
