package ui

import (
	"strings"

	"github.com/five82/kickoff/internal/logtail"
)

// renderLogLines formats the loaded log entries for the log viewport.
func (m Model) renderLogLines() string {
	if len(m.logEntries) == 0 {
		return ""
	}
	styles := m.theme.Styles()
	lines := make([]string, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		line := formatEntry(e)
		switch e.Level {
		case "error", "fatal", "panic":
			line = styles.DangerText.Render(line)
		case "warn":
			line = styles.WarningText.Render(line)
		case "debug", "trace":
			line = styles.FaintText.Render(line)
		default:
			line = styles.Text.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// formatEntry renders one log entry as a single plain-text line.
func formatEntry(e logtail.Entry) string {
	if e.Time.IsZero() && e.Level == "" {
		return e.Message
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteString(" ")
	}
	b.WriteString(levelTag(e.Level))
	if e.Component != "" {
		b.WriteString(" [")
		b.WriteString(e.Component)
		b.WriteString("]")
	}
	b.WriteString(" ")
	b.WriteString(e.Message)
	for _, f := range e.Fields {
		b.WriteString(" ")
		b.WriteString(f.Key)
		b.WriteString("=")
		b.WriteString(f.Value)
	}
	if e.Err != "" {
		b.WriteString(" err=")
		b.WriteString(e.Err)
	}
	return b.String()
}

func levelTag(level string) string {
	switch level {
	case "trace":
		return "TRC"
	case "debug":
		return "DBG"
	case "info":
		return "INF"
	case "warn":
		return "WRN"
	case "error":
		return "ERR"
	case "fatal":
		return "FTL"
	case "panic":
		return "PNC"
	case "":
		return "???"
	default:
		return strings.ToUpper(level)
	}
}
