package session

import (
	"errors"
	"fmt"

	"github.com/five82/kickoff/internal/timetable"
)

var (
	// ErrBusy is returned while another start, stop or reload is in flight.
	ErrBusy = errors.New("another request is in flight")
	// ErrSessionActive is returned by Start when a search is already running.
	ErrSessionActive = errors.New("a search is already running")
	// ErrNoSession is returned by Stop when no search is running.
	ErrNoSession = errors.New("no search is running")
)

// ValidationError rejects a search request before it is sent.
type ValidationError struct {
	Field  int // 1-based
	Format int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %d: format %d is outside %d..%d",
		e.Field, e.Format, timetable.MinFieldFormat, timetable.MaxFieldFormat)
}

func validate(req timetable.SearchRequest) error {
	for i, f := range req.Fields {
		if f.Format < timetable.MinFieldFormat || f.Format > timetable.MaxFieldFormat {
			return &ValidationError{Field: i + 1, Format: f.Format}
		}
	}
	return nil
}
