package timeline

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrMalformedTimestamp reports a timestamp without an HH:MM time of day at
// offset 11.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

const (
	clockOffset = 11
	clockEnd    = 16
)

// Clock returns the HH:MM part of a wire timestamp such as
// "2024-05-01T09:30:00".
func Clock(ts string) (string, error) {
	if len(ts) < clockEnd {
		return "", fmt.Errorf("%w: %q", ErrMalformedTimestamp, ts)
	}
	hm := ts[clockOffset:clockEnd]
	if _, err := ParseHM(hm); err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedTimestamp, ts)
	}
	return hm, nil
}

// Minutes converts a wire timestamp into minutes since midnight using only its
// time of day.
func Minutes(ts string) (int, error) {
	hm, err := Clock(ts)
	if err != nil {
		return 0, err
	}
	return ParseHM(hm)
}

// ParseHM converts a strict two-digit "HH:MM" string into minutes since midnight.
func ParseHM(hm string) (int, error) {
	if len(hm) != 5 || hm[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTimestamp, hm)
	}
	h, errH := strconv.Atoi(hm[:2])
	m, errM := strconv.Atoi(hm[3:])
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTimestamp, hm)
	}
	return h*60 + m, nil
}

// Window is the day span, in minutes since midnight, that bars are laid out in.
type Window struct {
	Start int
	End   int
}

// WindowFromTimestamps builds a window from the session's day_start and day_end.
func WindowFromTimestamps(dayStart, dayEnd string) (Window, error) {
	start, err := Minutes(dayStart)
	if err != nil {
		return Window{}, fmt.Errorf("day start: %w", err)
	}
	end, err := Minutes(dayEnd)
	if err != nil {
		return Window{}, fmt.Errorf("day end: %w", err)
	}
	return Window{Start: start, End: end}, nil
}

// Empty reports whether the window has no length.
func (w Window) Empty() bool {
	return w.Start == w.End
}

func (w Window) String() string {
	return FormatHM(w.Start) + "-" + FormatHM(w.End)
}

// FormatHM renders minutes since midnight as HH:MM.
func FormatHM(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Interval is a bar position as whole percentages of the window.
type Interval struct {
	Left  int
	Width int
}

// Place positions the minute span [start,end) within the window. Results are
// not clamped, so spans outside the window fall outside 0..100.
func (w Window) Place(start, end int) Interval {
	if w.Empty() {
		return Interval{}
	}
	span := float64(w.End - w.Start)
	return Interval{
		Left:  roundHalfUp(float64(start-w.Start) / span * 100),
		Width: roundHalfUp(float64(end-start) / span * 100),
	}
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
