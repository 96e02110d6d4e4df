package timetable_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/five82/kickoff/internal/timetable"
	"github.com/five82/kickoff/internal/timetable/timetabletest"
)

func newClient(t *testing.T) (*timetable.Client, *timetabletest.Server) {
	t.Helper()
	srv := timetabletest.NewServer()
	t.Cleanup(srv.Close)
	c, err := timetable.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c, srv
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClient_StartSearchSendsBodyAndDecodesResponse(t *testing.T) {
	t.Parallel()
	c, srv := newClient(t)
	srv.SetSession(timetabletest.Session{
		Teams:    timetable.TeamDirectory{1: "Lions", 2: "Tigers"},
		DayStart: "2024-05-01T09:00:00Z",
		DayEnd:   "2024-05-01T21:00:00Z",
		Solutions: []timetable.Solution{{
			Sum:  3,
			Hash: "abc",
			Games: timetable.FieldSchedule{
				{Field: "B", Games: []timetable.ScheduledGame{{TeamID1: 1, TeamID2: 2, Start: "2024-05-01T10:00:00Z", End: "2024-05-01T11:00:00Z"}}},
				{Field: "A", Games: nil},
			},
		}},
		Attempts: 7,
	})

	resp, err := c.StartSearch(testContext(t), timetable.SearchRequest{
		TourName: "Spring Cup",
		Fields:   []timetable.FieldSpec{{Format: 5, From: "09:00", To: "21:00", Duration: 60}},
		Teams:    []int{1, 2},
	})
	if err != nil {
		t.Fatalf("StartSearch returned error: %v", err)
	}
	if resp.TourName != "Spring Cup" || resp.Attempts != 7 {
		t.Fatalf("StartSearch payload = %#v, want tour Spring Cup attempts 7", resp)
	}
	if len(resp.Solutions) != 1 {
		t.Fatalf("solutions = %d, want 1", len(resp.Solutions))
	}
	games := resp.Solutions[0].Games
	if len(games) != 2 || games[0].Field != "B" || games[1].Field != "A" {
		t.Fatalf("field order = %#v, want B then A", games)
	}
	if resp.Teams.Name(2) != "Tigers" {
		t.Fatalf("team 2 = %q, want Tigers", resp.Teams.Name(2))
	}

	sent, ok := srv.LastSearch()
	if !ok {
		t.Fatal("backend saw no search request")
	}
	if sent.Fields[0].Duration != 60 || sent.Wishes == nil || sent.Games == nil {
		t.Fatalf("sent body = %#v, want dur 60 and empty wish/game arrays", sent)
	}
}

func TestClient_FetchStatusWithData(t *testing.T) {
	t.Parallel()
	c, srv := newClient(t)
	srv.SetSession(timetabletest.Session{TourName: "Cup", Teams: timetable.TeamDirectory{4: "Owls"}, Attempts: 2})
	srv.SetStatus(timetable.StatusProcess)

	plain, err := c.FetchStatus(testContext(t), false)
	if err != nil {
		t.Fatalf("FetchStatus returned error: %v", err)
	}
	if !plain.InProgress() || plain.HasSessionData() {
		t.Fatalf("plain status = %#v, want process without data", plain)
	}

	full, err := c.FetchStatus(testContext(t), true)
	if err != nil {
		t.Fatalf("FetchStatus(with data) returned error: %v", err)
	}
	if !full.HasSessionData() || full.Teams.Name(4) != "Owls" {
		t.Fatalf("data status = %#v, want tour and teams", full)
	}

	reqs := srv.RequestsTo("/status")
	if len(reqs) != 2 {
		t.Fatalf("status requests = %d, want 2", len(reqs))
	}
	if reqs[0].Query != "" || reqs[1].Query != "with-data=1" {
		t.Fatalf("queries = %q, %q; want \"\" and with-data=1", reqs[0].Query, reqs[1].Query)
	}
}

func TestClient_SetsRequestHeaders(t *testing.T) {
	t.Parallel()
	c, srv := newClient(t)

	if _, err := c.FetchSolutions(testContext(t)); err != nil {
		t.Fatalf("FetchSolutions returned error: %v", err)
	}
	if err := c.StopSearch(testContext(t)); err != nil {
		t.Fatalf("StopSearch returned error: %v", err)
	}

	reqs := srv.Requests()
	if len(reqs) != 2 {
		t.Fatalf("requests = %d, want 2", len(reqs))
	}
	if reqs[0].RequestID == reqs[1].RequestID {
		t.Fatalf("request ids repeat: %q", reqs[0].RequestID)
	}
	for _, r := range reqs {
		if _, err := uuid.Parse(r.RequestID); err != nil {
			t.Fatalf("request id %q is not a uuid: %v", r.RequestID, err)
		}
	}
}

func TestClient_ErrorStatusNamesPath(t *testing.T) {
	t.Parallel()
	c, srv := newClient(t)
	srv.FailNext("/get-solutions", 1)

	_, err := c.FetchSolutions(testContext(t))
	if err == nil {
		t.Fatal("expected error for status 500")
	}
	if !strings.Contains(err.Error(), "/get-solutions") || !strings.Contains(err.Error(), "500") {
		t.Fatalf("error = %q, want path and status", err)
	}

	if _, err := c.FetchSolutions(testContext(t)); err != nil {
		t.Fatalf("second FetchSolutions returned error: %v", err)
	}
}

func TestClient_RejectsNon2xxStatus(t *testing.T) {
	t.Parallel()
	for _, code := range []int{http.StatusFound, http.StatusNotModified} {
		t.Run(strconv.Itoa(code), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Location", "/elsewhere")
				w.WriteHeader(code)
			}))
			t.Cleanup(srv.Close)

			noRedirect := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			}}
			c, err := timetable.NewClient(srv.URL, timetable.WithHTTPClient(noRedirect))
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}

			_, err = c.FetchStatus(testContext(t), false)
			if err == nil {
				t.Fatalf("expected error for status %d", code)
			}
			if !strings.Contains(err.Error(), "/status") || !strings.Contains(err.Error(), strconv.Itoa(code)) {
				t.Fatalf("error = %q, want path and status", err)
			}
		})
	}
}

func TestClient_ContextTimeout(t *testing.T) {
	t.Parallel()
	c, srv := newClient(t)
	srv.SetStatusDelay(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.FetchStatus(ctx, false)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestClient_DownloadSolution(t *testing.T) {
	t.Parallel()
	c, srv := newClient(t)
	srv.SetSession(timetabletest.Session{Solutions: []timetable.Solution{{Hash: "h1"}}})
	srv.SetExport([]byte("xlsx-bytes"))

	var buf bytes.Buffer
	name, err := c.DownloadSolution(testContext(t), "h1", &buf)
	if err != nil {
		t.Fatalf("DownloadSolution returned error: %v", err)
	}
	if name != "tournament.xlsx" {
		t.Fatalf("name = %q, want tournament.xlsx", name)
	}
	if buf.String() != "xlsx-bytes" {
		t.Fatalf("body = %q, want xlsx-bytes", buf.String())
	}

	if _, err := c.DownloadSolution(testContext(t), "missing", &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unknown hash")
	}
	if _, err := c.DownloadSolution(testContext(t), "  ", &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for empty hash")
	}
}

func TestClient_SaveAndDeleteEntity(t *testing.T) {
	t.Parallel()
	c, srv := newClient(t)

	coach := timetable.Coach{ID: 9, Name: "Ivanov"}
	if err := c.SaveEntity(testContext(t), coach); err != nil {
		t.Fatalf("SaveEntity returned error: %v", err)
	}
	body, ok := srv.Entity(timetable.KindCoach, 9)
	if !ok {
		t.Fatal("coach not stored")
	}
	if body["name"] != "Ivanov" || body["id"] != "9" || body["tag"] != "coach" {
		t.Fatalf("save body = %v, want name/id/tag strings", body)
	}

	if err := c.DeleteEntity(testContext(t), timetable.KindCoach, 9); err != nil {
		t.Fatalf("DeleteEntity returned error: %v", err)
	}
	err := c.DeleteEntity(testContext(t), timetable.KindCoach, 9)
	var serverErr *timetable.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("err = %v, want *ServerError", err)
	}
	if serverErr.Message != "record not found" {
		t.Fatalf("message = %q, want verbatim server text", serverErr.Message)
	}
}

func TestClient_SaveEntityRejected(t *testing.T) {
	t.Parallel()
	c, srv := newClient(t)
	srv.RejectSaves("Стадион уже существует")

	err := c.SaveEntity(testContext(t), timetable.Division{ID: timetable.NewEntityID, Name: "U12", Format: 5})
	if err == nil || err.Error() != "Стадион уже существует" {
		t.Fatalf("err = %v, want verbatim server message", err)
	}
}
