package timetable

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// EntityKind tags an administrative record type on the CRUD endpoints.
type EntityKind string

const (
	KindStadium  EntityKind = "stadium"
	KindDivision EntityKind = "division"
	KindCoach    EntityKind = "coach"
	KindTeam     EntityKind = "team"
	KindWish     EntityKind = "wish"
	KindGame     EntityKind = "game"
)

// NewEntityID is the id sent when creating a record.
const NewEntityID = -1

var entityKinds = []EntityKind{KindStadium, KindDivision, KindCoach, KindTeam, KindWish, KindGame}

// ParseEntityKind maps a tag string onto a known kind.
func ParseEntityKind(tag string) (EntityKind, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, k := range entityKinds {
		if string(k) == tag {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown entity tag %q", tag)
}

// Entity is one of the administrative record variants. The set is closed:
// only types in this package implement it.
type Entity interface {
	Kind() EntityKind
	EntityID() int
	Validate() error
	saveFields() map[string]string
}

// saveBody renders the string-valued body /save-entity expects.
func saveBody(e Entity) map[string]string {
	body := e.saveFields()
	body["id"] = strconv.Itoa(e.EntityID())
	body["tag"] = string(e.Kind())
	return body
}

// Stadium is a venue with a number of identical fields.
type Stadium struct {
	ID       int    `toml:"id"`
	Name     string `toml:"name"`
	Fields   int    `toml:"fields"`
	Format   int    `toml:"format"`
	TimeFrom string `toml:"time_from"`
	TimeTo   string `toml:"time_to"`
	GameDur  int    `toml:"game_dur"`
}

func (s Stadium) Kind() EntityKind { return KindStadium }
func (s Stadium) EntityID() int    { return s.ID }

func (s Stadium) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if s.Fields < 1 || s.Fields > 9 {
		errs = append(errs, fmt.Errorf("fields must be 1..9, got %d", s.Fields))
	}
	if !validFormat(s.Format) {
		errs = append(errs, fmt.Errorf("format must be %d..%d, got %d", MinFieldFormat, MaxFieldFormat, s.Format))
	}
	if !ValidClock(s.TimeFrom) || !ValidClock(s.TimeTo) {
		errs = append(errs, fmt.Errorf("opening hours must be HH:MM, got %q-%q", s.TimeFrom, s.TimeTo))
	}
	if s.GameDur < 1 || s.GameDur > 999 {
		errs = append(errs, fmt.Errorf("game_dur must be 1..999 minutes, got %d", s.GameDur))
	}
	return errors.Join(errs...)
}

func (s Stadium) saveFields() map[string]string {
	return map[string]string{
		"name":      s.Name,
		"fields":    strconv.Itoa(s.Fields),
		"format":    strconv.Itoa(s.Format),
		"time_from": s.TimeFrom,
		"time_to":   s.TimeTo,
		"game_dur":  strconv.Itoa(s.GameDur),
	}
}

// Division groups teams of one format.
type Division struct {
	ID     int    `toml:"id"`
	Name   string `toml:"name"`
	Format int    `toml:"format"`
}

func (d Division) Kind() EntityKind { return KindDivision }
func (d Division) EntityID() int    { return d.ID }

func (d Division) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if !validFormat(d.Format) {
		errs = append(errs, fmt.Errorf("format must be %d..%d, got %d", MinFieldFormat, MaxFieldFormat, d.Format))
	}
	return errors.Join(errs...)
}

func (d Division) saveFields() map[string]string {
	return map[string]string{
		"name":   d.Name,
		"format": strconv.Itoa(d.Format),
	}
}

// Coach trains one or more teams.
type Coach struct {
	ID   int    `toml:"id"`
	Name string `toml:"name"`
}

func (c Coach) Kind() EntityKind { return KindCoach }
func (c Coach) EntityID() int    { return c.ID }

func (c Coach) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

func (c Coach) saveFields() map[string]string {
	return map[string]string{"name": c.Name}
}

// Team belongs to a division and has a coach.
type Team struct {
	ID         int    `toml:"id"`
	Name       string `toml:"name"`
	DivisionID int    `toml:"division_id"`
	CoachID    int    `toml:"coach_id"`
}

func (t Team) Kind() EntityKind { return KindTeam }
func (t Team) EntityID() int    { return t.ID }

func (t Team) Validate() error {
	var errs []error
	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if t.DivisionID <= 0 {
		errs = append(errs, errors.New("division_id is required"))
	}
	if t.CoachID <= 0 {
		errs = append(errs, errors.New("coach_id is required"))
	}
	return errors.Join(errs...)
}

func (t Team) saveFields() map[string]string {
	return map[string]string{
		"name":        t.Name,
		"division_id": strconv.Itoa(t.DivisionID),
		"coach_id":    strconv.Itoa(t.CoachID),
	}
}

// Wish is a stored preferred time window for a team. Either bound may be empty.
type Wish struct {
	ID       int    `toml:"id"`
	TeamID   int    `toml:"team_id"`
	TimeFrom string `toml:"time_from"`
	TimeTo   string `toml:"time_to"`
}

func (w Wish) Kind() EntityKind { return KindWish }
func (w Wish) EntityID() int    { return w.ID }

func (w Wish) Validate() error {
	var errs []error
	if w.TeamID <= 0 {
		errs = append(errs, errors.New("team_id is required"))
	}
	for _, v := range []string{w.TimeFrom, w.TimeTo} {
		if v != "" && !ValidClock(v) {
			errs = append(errs, fmt.Errorf("time %q must be HH:MM", v))
		}
	}
	return errors.Join(errs...)
}

func (w Wish) saveFields() map[string]string {
	return map[string]string{
		"team_id":   strconv.Itoa(w.TeamID),
		"time_from": w.TimeFrom,
		"time_to":   w.TimeTo,
	}
}

// Game is a previously played pairing.
type Game struct {
	ID         int    `toml:"id"`
	Tour       string `toml:"tour"`
	TeamID1    int    `toml:"team_id_1"`
	TeamID2    int    `toml:"team_id_2"`
	CanRematch bool   `toml:"can_rematch"`
}

func (g Game) Kind() EntityKind { return KindGame }
func (g Game) EntityID() int    { return g.ID }

func (g Game) Validate() error {
	if g.TeamID1 <= 0 || g.TeamID2 <= 0 {
		return errors.New("team_id_1 and team_id_2 are required")
	}
	if g.TeamID1 == g.TeamID2 {
		return fmt.Errorf("a team cannot play itself (team %d)", g.TeamID1)
	}
	return nil
}

func (g Game) saveFields() map[string]string {
	rematch := "0"
	if g.CanRematch {
		rematch = "1"
	}
	return map[string]string{
		"tour":        g.Tour,
		"team_id_1":   strconv.Itoa(g.TeamID1),
		"team_id_2":   strconv.Itoa(g.TeamID2),
		"can_rematch": rematch,
	}
}

// Field format bounds shared by fields, stadiums and divisions.
const (
	MinFieldFormat = 3
	MaxFieldFormat = 7
)

func validFormat(format int) bool {
	return format >= MinFieldFormat && format <= MaxFieldFormat
}

// ServerError is a failure the backend reported in an otherwise successful response.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return "server rejected the request"
	}
	return e.Message
}
