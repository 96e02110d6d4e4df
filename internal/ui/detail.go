package ui

import (
	"fmt"
	"strings"

	"github.com/five82/kickoff/internal/state"
	"github.com/five82/kickoff/internal/timeline"
)

const (
	barCell   = "█"
	trackCell = "·"
	// maxNameWidth caps the team-name column of the timeline.
	maxNameWidth = 18
)

// renderDetail writes the selected solution into the detail viewport.
func (m *Model) renderDetail() {
	if m.detail == nil {
		m.detailView.SetContent("")
		return
	}
	m.detailView.SetContent(m.detailContent(*m.detail, m.detailView.Width))
}

func (m Model) detailContent(d state.Detail, width int) string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.AccentText.Bold(true).Render(d.Title))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Sum ") + styles.Text.Render(fmt.Sprint(d.Sum)))
	b.WriteString(styles.FaintText.Render("  ·  " + d.Hash))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("Export " + d.Download + "  (d to save)"))
	b.WriteString("\n\n")

	nameW := 0
	for _, tl := range d.Timelines {
		nameW = max(nameW, len([]rune(tl.Name)))
	}
	nameW = min(nameW, maxNameWidth)
	cols := max(width-nameW-1, minTrackWidth)

	if !m.session.Window.Empty() {
		b.WriteString(strings.Repeat(" ", nameW+1))
		b.WriteString(styles.FaintText.Render(axisLabels(m.session.Window, cols)))
		b.WriteString("\n")
	}
	for _, tl := range d.Timelines {
		b.WriteString(styles.Text.Render(padRight(truncate(tl.Name, nameW), nameW)))
		b.WriteString(" ")
		b.WriteString(m.renderTrack(barTrack(tl.Bars, cols)))
		b.WriteString("\n")
	}

	if m.prefs.HideFieldTables {
		return b.String()
	}
	for _, field := range d.Fields {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Render("Field " + field.Field))
		b.WriteString("\n")
		for _, row := range field.Rows {
			b.WriteString("  ")
			b.WriteString(styles.MutedText.Render(row.Time))
			b.WriteString("  ")
			b.WriteString(styles.Text.Render(row.Team1 + " vs " + row.Team2))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderTrack paints a cell mask as bar and track glyphs.
func (m Model) renderTrack(mask []bool) string {
	styles := m.theme.Styles()
	var b strings.Builder
	for i := 0; i < len(mask); {
		j := i
		for j < len(mask) && mask[j] == mask[i] {
			j++
		}
		if mask[i] {
			b.WriteString(styles.Bar.Render(strings.Repeat(barCell, j-i)))
		} else {
			b.WriteString(styles.Track.Render(strings.Repeat(trackCell, j-i)))
		}
		i = j
	}
	return b.String()
}

// barTrack maps percentage intervals onto cols cells. A cell is set when any
// bar overlaps it; bars outside the window are clipped for display.
func barTrack(bars []timeline.Bar, cols int) []bool {
	if cols <= 0 {
		return nil
	}
	mask := make([]bool, cols)
	for _, bar := range bars {
		if bar.Width <= 0 {
			continue
		}
		start := floorDiv(bar.Left*cols, 100)
		end := ceilDiv((bar.Left+bar.Width)*cols, 100)
		if end <= start {
			end = start + 1
		}
		start = max(start, 0)
		end = min(end, cols)
		for i := start; i < end; i++ {
			mask[i] = true
		}
	}
	return mask
}

// axisLabels renders the window bounds at both ends of a cols-wide axis.
func axisLabels(w timeline.Window, cols int) string {
	left := timeline.FormatHM(w.Start)
	right := timeline.FormatHM(w.End)
	gap := cols - len(left) - len(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && (a < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}
