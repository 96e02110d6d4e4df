// Package ui implements the kickoff terminal interface using Bubble Tea.
//
// # Layout
//
// The screen has three bands:
//
//   - Header: session phase chip, tour name, attempt and solution counters,
//     the day window, and the last backend error when there is one.
//   - Body: the solution list beside (or, on narrow terminals, above) the
//     detail pane of the selected solution. The detail pane draws each team's
//     games as bars on a track spanning the day window, then the per-field
//     game tables.
//   - Footer: key hints, replaced for a few seconds by action notices.
//
// A log view (l) replaces the body with the tail of the application log.
//
// # State
//
// The model never talks to the backend itself. Start, stop and reload go
// through the Controller interface as tea.Cmds, so the update loop never
// blocks; the model re-reads controller and store snapshots on every tick.
// Polling runs outside the program.
//
// # Keys
//
// s starts a search from the request file, or stops the running one. r loads
// the solutions stored by the backend. enter shows the solution under the
// cursor and d saves its spreadsheet export. f hides field tables and T cycles
// themes; both persist to the preferences file.
package ui
