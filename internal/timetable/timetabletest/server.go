// Package timetabletest provides an in-process timetable backend for tests.
//
// The server speaks the same JSON contract as the real search service and
// keeps its state in memory. Tests script it through the exported setters
// and inspect what the client sent through the recorded requests.
package timetabletest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/five82/kickoff/internal/timetable"
)

// Request records one call received by the server.
type Request struct {
	Method    string
	Path      string
	Query     string
	RequestID string
	At        time.Time
}

// Session is the search job the fake backend reports.
type Session struct {
	TourName  string
	Teams     timetable.TeamDirectory
	DayStart  string
	DayEnd    string
	Solutions []timetable.Solution
	Attempts  int
}

// Server is a scripted timetable backend.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	status      string
	session     Session
	requests    []Request
	lastSearch  *timetable.SearchRequest
	failPaths   map[string]int
	statusDelay time.Duration
	entities    map[timetable.EntityKind]map[int]map[string]string
	rejectSave  string
	export      []byte
}

// NewServer starts a backend in the "init" state. It is closed through
// t.Cleanup by the caller.
func NewServer() *Server {
	s := &Server{
		status:    timetable.StatusInit,
		failPaths: make(map[string]int),
		entities:  make(map[timetable.EntityKind]map[int]map[string]string),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Post("/search-start", s.handleStart)
	r.Post("/search-stop", s.handleStop)
	r.Get("/status", s.handleStatus)
	r.Get("/get-solutions", s.handleSolutions)
	r.Get("/download-solution", s.handleDownload)
	r.Post("/save-entity", s.handleSave)
	r.Post("/del-entity", s.handleDelete)
	return r
}

// SetSession sets what the next start returns and what status reports.
func (s *Server) SetSession(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
}

// SetStatus overrides the reported status label.
func (s *Server) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// SetAttempts updates the attempts counter of the running session.
func (s *Server) SetAttempts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Attempts = n
}

// FailNext makes the next n calls to path answer 500. A negative n fails forever.
func (s *Server) FailNext(path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPaths[path] = n
}

// SetStatusDelay delays /status responses, e.g. to exceed a client timeout.
func (s *Server) SetStatusDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusDelay = d
}

// RejectSaves makes entity calls answer result=false with msg. Empty accepts.
func (s *Server) RejectSaves(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectSave = msg
}

// SetExport sets the bytes served by /download-solution.
func (s *Server) SetExport(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.export = append([]byte(nil), data...)
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the calls received for one path.
func (s *Server) RequestsTo(path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// LastSearch returns the body of the most recent /search-start.
func (s *Server) LastSearch() (timetable.SearchRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSearch == nil {
		return timetable.SearchRequest{}, false
	}
	return *s.lastSearch, true
}

// Entity returns the stored save body of a record.
func (s *Server) Entity(kind timetable.EntityKind, id int) (map[string]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.entities[kind][id]
	return body, ok
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			RequestID: r.Header.Get("X-Request-ID"),
			At:        time.Now(),
		})
		fail := s.failPaths[r.URL.Path]
		if fail > 0 {
			s.failPaths[r.URL.Path] = fail - 1
		}
		s.mu.Unlock()

		if fail != 0 {
			http.Error(w, "scripted failure", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req timetable.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.mu.Lock()
	s.lastSearch = &req
	s.status = timetable.StatusProcess
	sess := s.session
	if sess.TourName == "" {
		sess.TourName = req.TourName
	}
	s.session = sess
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, timetable.StartResponse{
		Solutions: orEmpty(sess.Solutions),
		Attempts:  sess.Attempts,
		TourName:  sess.TourName,
		Teams:     sess.Teams,
		DayStart:  sess.DayStart,
		DayEnd:    sess.DayEnd,
	})
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	if s.status == timetable.StatusProcess {
		s.status = timetable.StatusStopped
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delay := s.statusDelay
	status := s.status
	sess := s.session
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	resp := timetable.StatusResponse{Status: status}
	if status != timetable.StatusInit {
		resp.SolutionsCount = len(sess.Solutions)
		resp.Attempts = sess.Attempts
	}
	if status == timetable.StatusProcess && r.URL.Query().Get("with-data") == "1" {
		resp.TourName = sess.TourName
		resp.Teams = sess.Teams
		resp.DayStart = sess.DayStart
		resp.DayEnd = sess.DayEnd
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSolutions(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, timetable.SolutionsResponse{
		Solutions: orEmpty(sess.Solutions),
		Attempts:  sess.Attempts,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	hash := r.URL.Query().Get("hash")
	s.mu.Lock()
	sols := s.session.Solutions
	export := s.export
	s.mu.Unlock()

	found := false
	for _, sol := range sols {
		if sol.Hash == hash {
			found = true
			break
		}
	}
	if hash == "" || !found {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="tournament.xlsx"`)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	_, _ = w.Write(export)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := entityTarget(r)
	if !ok {
		writeJSON(w, http.StatusOK, timetable.EntityResult{Error: "bad entity target"})
		return
	}
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusOK, timetable.EntityResult{Error: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rejectSave != "" {
		writeJSON(w, http.StatusOK, timetable.EntityResult{Error: s.rejectSave})
		return
	}
	if s.entities[kind] == nil {
		s.entities[kind] = make(map[int]map[string]string)
	}
	s.entities[kind][id] = body
	writeJSON(w, http.StatusOK, timetable.EntityResult{Result: true})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := entityTarget(r)
	if !ok {
		writeJSON(w, http.StatusOK, timetable.EntityResult{Error: "bad entity target"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rejectSave != "" {
		writeJSON(w, http.StatusOK, timetable.EntityResult{Error: s.rejectSave})
		return
	}
	if _, exists := s.entities[kind][id]; !exists {
		writeJSON(w, http.StatusOK, timetable.EntityResult{Error: "record not found"})
		return
	}
	delete(s.entities[kind], id)
	writeJSON(w, http.StatusOK, timetable.EntityResult{Result: true})
}

func entityTarget(r *http.Request) (timetable.EntityKind, int, bool) {
	q := r.URL.Query()
	kind, err := timetable.ParseEntityKind(q.Get("tag"))
	if err != nil {
		return "", 0, false
	}
	id, err := strconv.Atoi(q.Get("id"))
	if err != nil {
		return "", 0, false
	}
	return kind, id, true
}

func orEmpty(sols []timetable.Solution) []timetable.Solution {
	if sols == nil {
		return []timetable.Solution{}
	}
	return sols
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
