package state

import (
	"sync"
	"time"

	"github.com/five82/kickoff/internal/timetable"
)

// Snapshot represents the solutions and team directory available to the UI.
type Snapshot struct {
	Solutions   []timetable.Solution
	Teams       timetable.TeamDirectory
	Selected    int // -1 when nothing is selected
	LastUpdated time.Time
}

// HasSelection reports whether a solution is selected.
func (s Snapshot) HasSelection() bool {
	return s.Selected >= 0 && s.Selected < len(s.Solutions)
}

// Store holds the candidate solutions of the current session. Both the
// sequence and the directory are replaced wholesale, never merged. The zero
// value is ready to use.
type Store struct {
	mu        sync.RWMutex
	solutions []timetable.Solution
	teams     timetable.TeamDirectory
	selected  int
	hasSel    bool
	updated   time.Time
}

// Load replaces both the solutions and the team directory and clears the
// selection.
func (s *Store) Load(solutions []timetable.Solution, teams timetable.TeamDirectory) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.solutions = cloneSolutions(solutions)
	s.teams = teams.Clone()
	s.hasSel = false
	s.updated = time.Now()
}

// ReplaceSolutions swaps the solution sequence and keeps the team directory.
func (s *Store) ReplaceSolutions(solutions []timetable.Solution) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.solutions = cloneSolutions(solutions)
	s.hasSel = false
	s.updated = time.Now()
}

// SetTeams swaps the team directory and keeps the solutions.
func (s *Store) SetTeams(teams timetable.TeamDirectory) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teams = teams.Clone()
	s.updated = time.Now()
}

// Len returns the number of stored solutions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.solutions)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Solutions:   cloneSolutions(s.solutions),
		Teams:       s.teams.Clone(),
		Selected:    -1,
		LastUpdated: s.updated,
	}
	if s.hasSel {
		snap.Selected = s.selected
	}
	return snap
}

func cloneSolutions(sols []timetable.Solution) []timetable.Solution {
	if len(sols) == 0 {
		return nil
	}
	dup := make([]timetable.Solution, len(sols))
	for i, sol := range sols {
		dup[i] = sol.Clone()
	}
	return dup
}
