package state

import (
	"errors"
	"fmt"

	"github.com/five82/kickoff/internal/timeline"
	"github.com/five82/kickoff/internal/timetable"
)

// ErrSolutionNotFound is returned when selecting an id outside the sequence.
var ErrSolutionNotFound = errors.New("solution not found")

// ErrEmptyWindow is returned when selecting without a usable day window.
var ErrEmptyWindow = errors.New("day window is empty")

// Detail is the rendered view of one selected solution.
type Detail struct {
	ID        int
	Title     string
	Sum       int
	Hash      string
	Download  string
	Timelines []timeline.TeamTimeline
	Fields    []FieldTable
}

// FieldTable lists the games of one field.
type FieldTable struct {
	Field string
	Rows  []GameRow
}

// GameRow is one game with resolved team names.
type GameRow struct {
	Team1 string
	Team2 string
	Time  string // HH:MM-HH:MM
}

// Select marks solution id as selected and builds its detail. Names come from
// the directory in effect now. A failure leaves the store untouched.
func (s *Store) Select(id int, window timeline.Window, tourName string) (Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id < 0 || id >= len(s.solutions) {
		return Detail{}, fmt.Errorf("select %d of %d: %w", id, len(s.solutions), ErrSolutionNotFound)
	}
	if window.Empty() {
		return Detail{}, fmt.Errorf("select %d: %w", id, ErrEmptyWindow)
	}
	sol := s.solutions[id]

	timelines, err := timeline.Build(sol.Games, window)
	if err != nil {
		return Detail{}, fmt.Errorf("solution %d: %w", id+1, err)
	}
	for i := range timelines {
		timelines[i].Name = s.teams.Name(timelines[i].TeamID)
	}

	fields := make([]FieldTable, 0, len(sol.Games))
	for _, fg := range sol.Games {
		table := FieldTable{Field: fg.Field, Rows: make([]GameRow, 0, len(fg.Games))}
		for _, g := range fg.Games {
			start, err := timeline.Clock(g.Start)
			if err != nil {
				return Detail{}, fmt.Errorf("solution %d: %w", id+1, err)
			}
			end, err := timeline.Clock(g.End)
			if err != nil {
				return Detail{}, fmt.Errorf("solution %d: %w", id+1, err)
			}
			table.Rows = append(table.Rows, GameRow{
				Team1: s.teams.Name(g.TeamID1),
				Team2: s.teams.Name(g.TeamID2),
				Time:  start + "-" + end,
			})
		}
		fields = append(fields, table)
	}

	s.selected = id
	s.hasSel = true

	return Detail{
		ID:        id,
		Title:     fmt.Sprintf("%s, Solution #%d", tourName, id+1),
		Sum:       sol.Sum,
		Hash:      sol.Hash,
		Download:  timetable.DownloadReference(sol.Hash),
		Timelines: timelines,
		Fields:    fields,
	}, nil
}
