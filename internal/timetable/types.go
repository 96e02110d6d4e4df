package timetable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// Search status labels reported by /status.
const (
	StatusInit    = "init"
	StatusProcess = "process"
	StatusStopped = "stopped"
)

var clockPattern = regexp.MustCompile(`^([0-9]|0[0-9]|1[0-9]|2[0-3]):([0-9]|[0-5][0-9])$`)

// ValidClock reports whether value is a 24-hour H:MM or HH:MM time of day.
func ValidClock(value string) bool {
	return clockPattern.MatchString(value)
}

// SearchRequest mirrors the /search-start body.
type SearchRequest struct {
	TourName  string           `json:"tour_name"`
	StadiumID int              `json:"stadium_id"`
	Fields    []FieldSpec      `json:"fields"`
	Teams     []int            `json:"teams"`
	Wishes    []TimeWish       `json:"wishes"`
	Games     []PrematchedGame `json:"games"`
}

// FieldSpec describes one playing field for the search.
type FieldSpec struct {
	Format   int    `json:"format"`
	From     string `json:"from"`
	To       string `json:"to"`
	Duration int    `json:"dur"`
}

// TimeWish is a preferred playing window for a team.
type TimeWish struct {
	TeamID int    `json:"team_id"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// PrematchedGame is a pairing passed through to the search as an existing game.
type PrematchedGame struct {
	TeamID1 int `json:"team_id_1"`
	TeamID2 int `json:"team_id_2"`
}

// normalized returns a copy whose nil slices encode as empty JSON arrays.
func (r SearchRequest) normalized() SearchRequest {
	if r.Fields == nil {
		r.Fields = []FieldSpec{}
	}
	if r.Teams == nil {
		r.Teams = []int{}
	}
	if r.Wishes == nil {
		r.Wishes = []TimeWish{}
	}
	if r.Games == nil {
		r.Games = []PrematchedGame{}
	}
	return r
}

// TeamDirectory maps team ids to display names.
type TeamDirectory map[int]string

// Name resolves a team id, falling back to a generic label for unknown ids.
func (d TeamDirectory) Name(id int) string {
	if name, ok := d[id]; ok && name != "" {
		return name
	}
	return "team " + strconv.Itoa(id)
}

// Clone returns an independent copy of the directory.
func (d TeamDirectory) Clone() TeamDirectory {
	if d == nil {
		return nil
	}
	dup := make(TeamDirectory, len(d))
	for id, name := range d {
		dup[id] = name
	}
	return dup
}

// Solution is one candidate schedule returned by the search.
type Solution struct {
	Sum   int           `json:"sum"`
	Games FieldSchedule `json:"games"`
	Hash  string        `json:"hash"`
}

// Clone returns a copy that shares no slices with s.
func (s Solution) Clone() Solution {
	s.Games = s.Games.Clone()
	return s
}

// ScheduledGame is a single game placed on a field.
type ScheduledGame struct {
	TeamID1 int    `json:"team_id_1"`
	TeamID2 int    `json:"team_id_2"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// FieldGames holds the games scheduled on one field.
type FieldGames struct {
	Field string
	Games []ScheduledGame
}

// FieldSchedule is the per-field game list of a solution. It decodes from a
// JSON object and keeps the object's key order.
type FieldSchedule []FieldGames

// GameCount returns the number of games across all fields.
func (s FieldSchedule) GameCount() int {
	total := 0
	for _, fg := range s {
		total += len(fg.Games)
	}
	return total
}

// Clone returns a deep copy of the schedule.
func (s FieldSchedule) Clone() FieldSchedule {
	if s == nil {
		return nil
	}
	dup := make(FieldSchedule, len(s))
	for i, fg := range s {
		dup[i] = FieldGames{Field: fg.Field, Games: append([]ScheduledGame(nil), fg.Games...)}
	}
	return dup
}

// MarshalJSON encodes the schedule as an object in field order.
func (s FieldSchedule) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fg := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(fg.Field)
		if err != nil {
			return nil, err
		}
		games := fg.Games
		if games == nil {
			games = []ScheduledGame{}
		}
		val, err := json.Marshal(games)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a field-name to games object preserving key order.
func (s *FieldSchedule) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("games: expected object, got %v", tok)
	}
	out := FieldSchedule{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("games: expected field name, got %v", tok)
		}
		var games []ScheduledGame
		if err := dec.Decode(&games); err != nil {
			return fmt.Errorf("games %q: %w", name, err)
		}
		out = append(out, FieldGames{Field: name, Games: games})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

// StartResponse mirrors the payload returned by /search-start.
type StartResponse struct {
	Solutions []Solution    `json:"solutions"`
	Attempts  int           `json:"attempts"`
	TourName  string        `json:"tour_name"`
	Teams     TeamDirectory `json:"teams"`
	DayStart  string        `json:"day_start"`
	DayEnd    string        `json:"day_end"`
}

// StatusResponse mirrors the payload returned by /status.
type StatusResponse struct {
	Status         string        `json:"status"`
	SolutionsCount int           `json:"solutions_cnt"`
	Attempts       int           `json:"attempts"`
	TourName       string        `json:"tour_name,omitempty"`
	Teams          TeamDirectory `json:"teams,omitempty"`
	DayStart       string        `json:"day_start,omitempty"`
	DayEnd         string        `json:"day_end,omitempty"`
}

// InProgress reports whether the backend search job is running.
func (s StatusResponse) InProgress() bool {
	return s.Status == StatusProcess
}

// HasSessionData reports whether the data-bearing fields were included.
func (s StatusResponse) HasSessionData() bool {
	return s.TourName != ""
}

// SolutionsResponse mirrors /get-solutions.
type SolutionsResponse struct {
	Solutions []Solution `json:"solutions"`
	Attempts  int        `json:"attempts"`
}

// EntityResult mirrors the acknowledgement of /save-entity and /del-entity.
type EntityResult struct {
	Result bool   `json:"result"`
	Error  string `json:"error,omitempty"`
}
