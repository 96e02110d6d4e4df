// Package timeline lays out a solution's games as per-team bars on a day axis.
//
// Timestamps are only read at characters 11..15 (HH:MM); the date part is
// ignored. A bar's left edge and width are whole percentages of the day
// window, rounded half up, and are deliberately not clamped to 0..100.
package timeline
