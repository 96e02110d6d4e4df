package timeline

import (
	"fmt"
	"sort"

	"github.com/five82/kickoff/internal/timetable"
)

// Bar is one busy interval of a team.
type Bar struct {
	Interval
	Field string
	Start string // HH:MM
	End   string // HH:MM
}

// Label renders the bar's time range.
func (b Bar) Label() string {
	return b.Start + "-" + b.End
}

// TeamTimeline is the ordered list of busy intervals of one team.
type TeamTimeline struct {
	TeamID int
	Name   string
	Bars   []Bar
}

// Build groups the games of a schedule by team. Bars follow field order and
// then game order within a field; teams are sorted by id. Name is left empty
// for the caller to resolve.
func Build(schedule timetable.FieldSchedule, window Window) ([]TeamTimeline, error) {
	byTeam := make(map[int][]Bar)
	for _, fg := range schedule {
		for i, g := range fg.Games {
			bar, err := place(fg.Field, g, window)
			if err != nil {
				return nil, fmt.Errorf("field %q game %d: %w", fg.Field, i+1, err)
			}
			// One bar per participant, so a team paired with itself gets two.
			byTeam[g.TeamID1] = append(byTeam[g.TeamID1], bar)
			byTeam[g.TeamID2] = append(byTeam[g.TeamID2], bar)
		}
	}

	ids := make([]int, 0, len(byTeam))
	for id := range byTeam {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]TeamTimeline, 0, len(ids))
	for _, id := range ids {
		out = append(out, TeamTimeline{TeamID: id, Bars: byTeam[id]})
	}
	return out, nil
}

func place(field string, g timetable.ScheduledGame, window Window) (Bar, error) {
	startHM, err := Clock(g.Start)
	if err != nil {
		return Bar{}, err
	}
	endHM, err := Clock(g.End)
	if err != nil {
		return Bar{}, err
	}
	start, _ := ParseHM(startHM)
	end, _ := ParseHM(endHM)
	return Bar{
		Interval: window.Place(start, end),
		Field:    field,
		Start:    startHM,
		End:      endHM,
	}, nil
}
