package ui

import "strings"

// modal is a blocking notice closed with esc or enter.
type modal struct {
	title string
	body  string
}

func (m Model) renderModal() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.DangerText.Render(m.modal.title))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(m.modal.body))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("esc/enter to close"))

	width := min(max(m.width/2, 40), max(m.width-4, 20))
	return m.overlay(b.String(), m.theme.Danger, width)
}
