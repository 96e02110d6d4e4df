package request

import (
	"errors"
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/kickoff/internal/timetable"
)

// document is the on-disk shape of a search request.
type document struct {
	TourName  string     `toml:"tour_name"`
	StadiumID int        `toml:"stadium_id"`
	Teams     []int      `toml:"teams"`
	Fields    []fieldDoc `toml:"fields"`
	Wishes    []wishDoc  `toml:"wishes"`
	Games     []gameDoc  `toml:"games"`
}

type fieldDoc struct {
	Format   int    `toml:"format"`
	From     string `toml:"from"`
	To       string `toml:"to"`
	Duration int    `toml:"dur"`
}

type wishDoc struct {
	TeamID int    `toml:"team_id"`
	From   string `toml:"from"`
	To     string `toml:"to"`
}

type gameDoc struct {
	TeamID1  int  `toml:"team_id_1"`
	TeamID2  int  `toml:"team_id_2"`
	Excluded bool `toml:"excluded"`
}

// Load reads the search request at path. Games marked excluded are dropped.
// Field formats are not range-checked here; the session rejects them with a
// field-level error before anything is sent.
func Load(path string) (timetable.SearchRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return timetable.SearchRequest{}, fmt.Errorf("read request: %w", err)
	}
	return Parse(data)
}

// Parse decodes and checks a TOML search request.
func Parse(data []byte) (timetable.SearchRequest, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return timetable.SearchRequest{}, fmt.Errorf("parse request: %w", err)
	}
	if err := doc.check(); err != nil {
		return timetable.SearchRequest{}, fmt.Errorf("invalid request: %w", err)
	}
	return doc.build(), nil
}

func (d document) check() error {
	var errs []error
	if strings.TrimSpace(d.TourName) == "" {
		errs = append(errs, errors.New("tour_name is required"))
	}
	seen := make(map[int]bool, len(d.Teams))
	for _, id := range d.Teams {
		if seen[id] {
			errs = append(errs, fmt.Errorf("team %d listed twice", id))
		}
		seen[id] = true
	}
	for i, f := range d.Fields {
		if !timetable.ValidClock(f.From) || !timetable.ValidClock(f.To) {
			errs = append(errs, fmt.Errorf("field %d: times must be HH:MM, got %q-%q", i+1, f.From, f.To))
		}
		if f.Duration <= 0 {
			errs = append(errs, fmt.Errorf("field %d: dur must be positive", i+1))
		}
	}
	for i, w := range d.Wishes {
		if !timetable.ValidClock(w.From) || !timetable.ValidClock(w.To) {
			errs = append(errs, fmt.Errorf("wish %d: times must be HH:MM, got %q-%q", i+1, w.From, w.To))
		}
	}
	return errors.Join(errs...)
}

func (d document) build() timetable.SearchRequest {
	req := timetable.SearchRequest{
		TourName:  strings.TrimSpace(d.TourName),
		StadiumID: d.StadiumID,
		Teams:     append([]int{}, d.Teams...),
		Fields:    make([]timetable.FieldSpec, 0, len(d.Fields)),
		Wishes:    make([]timetable.TimeWish, 0, len(d.Wishes)),
		Games:     make([]timetable.PrematchedGame, 0, len(d.Games)),
	}
	for _, f := range d.Fields {
		req.Fields = append(req.Fields, timetable.FieldSpec{Format: f.Format, From: f.From, To: f.To, Duration: f.Duration})
	}
	for _, w := range d.Wishes {
		req.Wishes = append(req.Wishes, timetable.TimeWish{TeamID: w.TeamID, From: w.From, To: w.To})
	}
	for _, g := range d.Games {
		if g.Excluded {
			continue
		}
		req.Games = append(req.Games, timetable.PrematchedGame{TeamID1: g.TeamID1, TeamID2: g.TeamID2})
	}
	return req
}
