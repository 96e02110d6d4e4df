package request

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/kickoff/internal/timetable"
)

// LoadEntity reads an administrative record document. Its tag key selects the
// variant; a missing id means a new record.
func LoadEntity(path string) (timetable.Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entity: %w", err)
	}
	return ParseEntity(data)
}

// ParseEntity decodes an entity document and validates it.
func ParseEntity(data []byte) (timetable.Entity, error) {
	var head struct {
		Tag string `toml:"tag"`
		ID  *int   `toml:"id"`
	}
	if err := toml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse entity: %w", err)
	}
	kind, err := timetable.ParseEntityKind(head.Tag)
	if err != nil {
		return nil, err
	}

	entity, err := decodeEntity(kind, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", kind, err)
	}
	if head.ID == nil {
		entity = withNewID(entity)
	}
	if err := entity.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", kind, err)
	}
	return entity, nil
}

func decodeEntity(kind timetable.EntityKind, data []byte) (timetable.Entity, error) {
	switch kind {
	case timetable.KindStadium:
		var e timetable.Stadium
		err := toml.Unmarshal(data, &e)
		return e, err
	case timetable.KindDivision:
		var e timetable.Division
		err := toml.Unmarshal(data, &e)
		return e, err
	case timetable.KindCoach:
		var e timetable.Coach
		err := toml.Unmarshal(data, &e)
		return e, err
	case timetable.KindTeam:
		var e timetable.Team
		err := toml.Unmarshal(data, &e)
		return e, err
	case timetable.KindWish:
		var e timetable.Wish
		err := toml.Unmarshal(data, &e)
		return e, err
	case timetable.KindGame:
		var e timetable.Game
		err := toml.Unmarshal(data, &e)
		return e, err
	default:
		return nil, fmt.Errorf("unsupported entity kind %q", kind)
	}
}

func withNewID(e timetable.Entity) timetable.Entity {
	switch v := e.(type) {
	case timetable.Stadium:
		v.ID = timetable.NewEntityID
		return v
	case timetable.Division:
		v.ID = timetable.NewEntityID
		return v
	case timetable.Coach:
		v.ID = timetable.NewEntityID
		return v
	case timetable.Team:
		v.ID = timetable.NewEntityID
		return v
	case timetable.Wish:
		v.ID = timetable.NewEntityID
		return v
	case timetable.Game:
		v.ID = timetable.NewEntityID
		return v
	}
	return e
}
