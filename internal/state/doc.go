// Package state holds the candidate solutions of the current search session.
//
// # Overview
//
// The Store is shared by the session controller, which writes it whenever the
// backend returns solutions or a fresh team directory, and the UI, which reads
// snapshots and asks for the detail view of one solution.
//
// # Replacement Semantics
//
//   - Load replaces the solutions and the team directory together
//   - ReplaceSolutions replaces only the solutions (on-demand reload)
//   - SetTeams replaces only the team directory (data-bearing status poll)
//
// Nothing is merged. Every write clears the selection except SetTeams.
//
// # Selection
//
// Select builds a Detail for one solution id: the per-team timelines and the
// per-field game tables, with team names resolved against the directory held
// at selection time. Unknown team ids render as "team <id>". An id outside the
// sequence returns ErrSolutionNotFound; a malformed timestamp returns
// timeline.ErrMalformedTimestamp. In both cases the stored data and the
// previous selection are kept.
//
// # Concurrency
//
// The Store guards its fields with a sync.RWMutex and copies solutions on the
// way in and out, so snapshots never alias store memory.
package state
