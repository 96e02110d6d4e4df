package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the solution list
	// stacks above the detail pane instead of beside it.
	LayoutCompactWidth = 100

	// listPaneWidth is the width of the solution list in wide layouts.
	listPaneWidth = 28

	// minTrackWidth keeps timeline tracks readable on narrow terminals.
	minTrackWidth = 20
)

// Log display limits.
const (
	// LogBufferLimit is the maximum number of log lines read for the log view.
	LogBufferLimit = 2000
)

// Timing constants.
const (
	// DefaultUIInterval is how often the model re-reads controller state.
	DefaultUIInterval = 500 * time.Millisecond

	// ActionTimeout bounds start, stop, load and download requests.
	ActionTimeout = 30 * time.Second

	// flashDuration is how long footer notices stay visible.
	flashDuration = 4 * time.Second
)
