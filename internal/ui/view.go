package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/kickoff/internal/session"
)

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.modal != nil {
		return m.renderModal()
	}
	if m.showHelp {
		return m.renderHelp()
	}

	header := m.renderHeader()
	footer := m.renderFooter()

	var body string
	if m.view == viewLogs {
		body = m.renderLogs()
	} else {
		body = m.renderMain()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderHeader renders the phase chip, counters and the last error.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	snap := m.session

	parts := []string{
		styles.Logo.Render("kickoff"),
		styles.PhaseChip(snap.Phase).Render(strings.ToUpper(snap.Phase.String())),
	}
	if snap.Busy {
		parts = append(parts, styles.AccentText.Render(m.spinner.View()))
	}
	if snap.TourName != "" {
		parts = append(parts, styles.Text.Bold(true).Render(truncate(snap.TourName, 40)))
	}
	line1 := strings.Join(parts, "  ")

	stats := []string{
		styles.MutedText.Render("Attempts ") + styles.Text.Render(fmt.Sprint(snap.Attempts)),
		styles.MutedText.Render("Solutions ") + styles.Text.Render(fmt.Sprint(snap.SolutionsCount)),
	}
	if !snap.Window.Empty() {
		stats = append(stats, styles.MutedText.Render("Day ")+styles.Text.Render(snap.Window.String()))
	}
	if !snap.LastPoll.IsZero() {
		stats = append(stats, styles.FaintText.Render("polled "+snap.LastPoll.Format("15:04:05")))
	}
	if snap.Phase != session.Stopping {
		stats = append(stats, styles.AccentText.Render("[s] "+snap.TriggerLabel()))
	}
	line2 := strings.Join(stats, styles.FaintText.Render(" · "))

	lines := []string{line1, line2}
	if snap.LastError != nil {
		msg := truncate(firstLine(snap.LastError.Error()), max(m.width-6, 10))
		lines = append(lines, styles.DangerText.Render("! "+msg))
	}
	return styles.Header.Width(m.width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.flash != "" && time.Since(m.flashAt) < flashDuration {
		style := styles.SuccessText
		if m.flashErr {
			style = styles.DangerText
		}
		return styles.Footer.Width(m.width).Render(style.Render(truncate(m.flash, m.width-2)))
	}

	var hints []string
	if m.view == viewLogs {
		hints = []string{"j/k scroll", "r reload", "esc back", "h help"}
	} else {
		hints = []string{"s " + strings.ToLower(m.session.TriggerLabel()), "r load", "enter show", "d download", "l logs", "h help", "e quit"}
	}
	return styles.Footer.Width(m.width).Render(strings.Join(hints, "  "))
}

// bodyHeight is the number of rows between header and footer.
func (m Model) bodyHeight() int {
	h := m.height - lipgloss.Height(m.renderHeader()) - lipgloss.Height(m.renderFooter())
	return max(h, 3)
}

// paneSizes returns the outer widths of the list and detail panes. In compact
// layouts both span the full width.
func (m Model) paneSizes() (list, detail int) {
	if m.width < LayoutCompactWidth {
		return m.width, m.width
	}
	return listPaneWidth, m.width - listPaneWidth
}

func (m Model) renderMain() string {
	styles := m.theme.Styles()
	height := m.bodyHeight()

	if !m.session.ResultsVisible {
		msg := "No search running.\n\nPress s to start a search from " + m.requestPath() + ",\nor r to load stored solutions."
		return styles.Pane(false).
			Width(m.width-2).
			Height(height-2).
			Render(styles.MutedText.Render(msg))
	}

	listW, detailW := m.paneSizes()
	if m.width < LayoutCompactWidth {
		listH := min(len(m.store.Solutions)+2, height/3)
		listH = max(listH, 3)
		list := m.renderList(listW, listH)
		detail := m.renderDetailPane(detailW, height-listH)
		return lipgloss.JoinVertical(lipgloss.Left, list, detail)
	}
	list := m.renderList(listW, height)
	detail := m.renderDetailPane(detailW, height)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

func (m Model) requestPath() string {
	if m.requests == nil {
		return "the request file"
	}
	return m.requests.Path()
}

// renderList renders the solution list inside a pane of the given outer size.
func (m Model) renderList(width, height int) string {
	styles := m.theme.Styles()
	inner := max(width-2, 1)
	rows := max(height-2, 1)

	var lines []string
	sols := m.store.Solutions
	if len(sols) == 0 {
		lines = append(lines, styles.FaintText.Render("no solutions yet"))
	}

	// Keep the cursor on screen.
	offset := 0
	if m.cursor >= rows {
		offset = m.cursor - rows + 1
	}
	for i := offset; i < len(sols) && i < offset+rows; i++ {
		marker := " "
		if i == m.store.Selected {
			marker = "●"
		}
		text := padRight(fmt.Sprintf("%s #%-3d sum %d", marker, i+1, sols[i].Sum), inner)
		if i == m.cursor {
			lines = append(lines, styles.Selected.Render(truncate(text, inner)))
		} else {
			lines = append(lines, styles.Text.Render(truncate(text, inner)))
		}
	}

	return styles.Pane(m.focus == focusList).
		Width(inner).
		Height(rows).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderDetailPane(width, height int) string {
	styles := m.theme.Styles()
	inner := max(width-2, 1)
	rows := max(height-2, 1)

	var content string
	if m.detail == nil {
		content = styles.FaintText.Render("Select a solution with enter.")
	} else {
		vp := m.detailView
		vp.Width = inner
		vp.Height = rows
		content = vp.View()
	}
	return styles.Pane(m.focus == focusDetail).
		Width(inner).
		Height(rows).
		Render(content)
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	height := m.bodyHeight()
	title := styles.AccentText.Bold(true).Render("Log") + styles.FaintText.Render("  "+m.logPath)

	vp := m.logView
	vp.Width = max(m.width-2, 1)
	vp.Height = max(height-3, 1)
	body := vp.View()
	if len(m.logEntries) == 0 {
		body = styles.FaintText.Render("log is empty")
	}
	return styles.Pane(true).
		Width(max(m.width-2, 1)).
		Height(max(height-2, 1)).
		Render(title + "\n" + body)
}

// resize recomputes viewport dimensions and re-renders width-dependent content.
func (m *Model) resize() {
	height := m.bodyHeight()
	_, detailW := m.paneSizes()
	if m.width < LayoutCompactWidth {
		height -= max(min(len(m.store.Solutions)+2, height/3), 3)
	}
	m.detailView.Width = max(detailW-2, 1)
	m.detailView.Height = max(height-2, 1)
	m.logView.Width = max(m.width-2, 1)
	m.logView.Height = max(m.bodyHeight()-3, 1)

	m.renderDetail()
	m.logView.SetContent(m.renderLogLines())
}
