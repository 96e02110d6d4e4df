package timetable

import (
	"strings"
	"testing"
)

func TestEntityValidate(t *testing.T) {
	tests := []struct {
		name    string
		entity  Entity
		wantErr string
	}{
		{"stadium ok", Stadium{Name: "Central", Fields: 4, Format: 5, TimeFrom: "09:00", TimeTo: "21:00", GameDur: 50}, ""},
		{"stadium fields", Stadium{Name: "Central", Fields: 10, Format: 5, TimeFrom: "09:00", TimeTo: "21:00", GameDur: 50}, "fields must be 1..9"},
		{"stadium hours", Stadium{Name: "Central", Fields: 1, Format: 5, TimeFrom: "9", TimeTo: "21:00", GameDur: 50}, "opening hours"},
		{"division format", Division{Name: "U10", Format: 8}, "format must be 3..7"},
		{"coach name", Coach{Name: " "}, "name is required"},
		{"team refs", Team{Name: "Lions"}, "division_id is required"},
		{"wish empty bounds", Wish{TeamID: 3}, ""},
		{"wish bad bound", Wish{TeamID: 3, TimeFrom: "25:00"}, "must be HH:MM"},
		{"game self", Game{TeamID1: 4, TeamID2: 4}, "cannot play itself"},
		{"game ok", Game{TeamID1: 4, TeamID2: 5}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entity.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate returned error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveBody(t *testing.T) {
	body := saveBody(Game{ID: NewEntityID, Tour: "3", TeamID1: 1, TeamID2: 2, CanRematch: true})
	want := map[string]string{
		"id":          "-1",
		"tag":         "game",
		"tour":        "3",
		"team_id_1":   "1",
		"team_id_2":   "2",
		"can_rematch": "1",
	}
	if len(body) != len(want) {
		t.Fatalf("body = %v, want %v", body, want)
	}
	for k, v := range want {
		if body[k] != v {
			t.Fatalf("body[%q] = %q, want %q", k, body[k], v)
		}
	}

	stadium := saveBody(Stadium{ID: 2, Name: "N", Fields: 3, Format: 7, TimeFrom: "8:00", TimeTo: "20:00", GameDur: 40})
	if stadium["fields"] != "3" || stadium["game_dur"] != "40" || stadium["time_from"] != "8:00" {
		t.Fatalf("stadium body = %v", stadium)
	}
}

func TestParseEntityKind(t *testing.T) {
	k, err := ParseEntityKind(" Wish ")
	if err != nil || k != KindWish {
		t.Fatalf("ParseEntityKind = %q, %v; want wish", k, err)
	}
	if _, err := ParseEntityKind("referee"); err == nil {
		t.Fatal("expected error for unknown tag")
	}
}
