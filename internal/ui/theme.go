package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/kickoff/internal/session"
)

// Theme defines colors for the UI.
type Theme struct {
	Name string

	Background string
	Surface    string
	SurfaceAlt string

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string

	// Bar paints the busy intervals on timeline tracks.
	Bar string

	PhaseColors map[session.Phase]string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		MutedText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		FaintText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint)),
		AccentText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
		SuccessText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
		WarningText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		DangerText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),
		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),
		Bar:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Bar)),
		Track: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint)),

		theme: t,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style
	Bar      lipgloss.Style
	Track    lipgloss.Style

	theme Theme
}

// PhaseChip returns the badge style for a session phase.
func (s Styles) PhaseChip(p session.Phase) lipgloss.Style {
	color := s.theme.PhaseColors[p]
	if color == "" {
		color = s.theme.Muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.theme.Background)).
		Background(lipgloss.Color(color)).
		Bold(true).
		Padding(0, 1)
}

// Pane returns the bordered style of a content pane.
func (s Styles) Pane(focused bool) lipgloss.Style {
	border := s.theme.Border
	if focused {
		border = s.theme.BorderFocus
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border))
}

// Theme definitions

var themes = map[string]Theme{
	"Pitch":    pitchTheme(),
	"Kanagawa": kanagawaTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Pitch", "Kanagawa", "Slate"}

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return pitchTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return append([]string(nil), themeOrder...)
}

func pitchTheme() Theme {
	// Dark turf greens with chalk-line whites.
	return Theme{
		Name: "Pitch",

		Background: "#0d1a12",
		Surface:    "#13261a",
		SurfaceAlt: "#1b3324",

		SelectionBg:   "#2f6b45",
		SelectionText: "#f2f5ef",

		Border:      "#2a4a35",
		BorderFocus: "#9fd8a8",

		Text:    "#e8efe6",
		Muted:   "#93a897",
		Faint:   "#5d7464",
		Accent:  "#9fd8a8",
		Success: "#6fcf7c",
		Warning: "#f2c94c",
		Danger:  "#eb5757",
		Bar:     "#6fcf7c",

		PhaseColors: map[session.Phase]string{
			session.Idle:     "#93a897",
			session.Running:  "#6fcf7c",
			session.Stopping: "#f2c94c",
		},
	}
}

func kanagawaTheme() Theme {
	// Kanagawa palette: https://github.com/rebelot/kanagawa.nvim
	return Theme{
		Name: "Kanagawa",

		Background: "#16161D", // sumiInk0
		Surface:    "#1F1F28", // sumiInk3
		SurfaceAlt: "#2A2A37", // sumiInk4

		SelectionBg:   "#2D4F67", // waveBlue1
		SelectionText: "#DCD7BA", // fujiWhite

		Border:      "#54546D", // sumiInk6
		BorderFocus: "#7E9CD8", // crystalBlue

		Text:    "#DCD7BA", // fujiWhite
		Muted:   "#C8C093", // oldWhite
		Faint:   "#727169", // fujiGray
		Accent:  "#7E9CD8", // crystalBlue
		Success: "#98BB6C", // springGreen
		Warning: "#E6C384", // carpYellow
		Danger:  "#E46876", // waveRed
		Bar:     "#7FB4CA", // springBlue

		PhaseColors: map[session.Phase]string{
			session.Idle:     "#727169",
			session.Running:  "#98BB6C",
			session.Stopping: "#E6C384",
		},
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		SurfaceAlt: "#1e293b", // slate-800

		SelectionBg:   "#0284c7", // sky-600
		SelectionText: "#f8fafc", // slate-50

		Border:      "#334155", // slate-700
		BorderFocus: "#38bdf8", // sky-400

		Text:    "#f1f5f9", // slate-100
		Muted:   "#94a3b8", // slate-400
		Faint:   "#64748b", // slate-500
		Accent:  "#38bdf8", // sky-400
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500
		Bar:     "#06b6d4", // cyan-500

		PhaseColors: map[session.Phase]string{
			session.Idle:     "#64748b",
			session.Running:  "#22c55e",
			session.Stopping: "#f59e0b",
		},
	}
}
