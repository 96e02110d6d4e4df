package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/kickoff/internal/logtail"
	"github.com/five82/kickoff/internal/session"
)

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		if key.Matches(msg, m.keys.Escape, m.keys.Select) {
			m.modal = nil
		}
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help, m.keys.Escape):
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		name := NextTheme(m.theme.Name)
		m.theme = GetTheme(name)
		m.prefs.Theme = name
		m.savePrefs()
		m.renderDetail()
		m.logView.SetContent(m.renderLogLines())
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		if m.view == viewLogs {
			m.view = viewMain
			return m, nil
		}
		m.view = viewLogs
		return m, m.loadLogsCmd()

	case key.Matches(msg, m.keys.ToggleFields):
		m.prefs.HideFieldTables = !m.prefs.HideFieldTables
		m.savePrefs()
		m.renderDetail()
		return m, nil
	}

	if m.view == viewLogs {
		return m.handleLogKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Escape):
		switch {
		case m.focus == focusDetail:
			m.focus = focusList
		case m.session.LastError != nil:
			m.ctrl.DismissError()
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Trigger):
		cmd := m.trigger()
		return m, cmd

	case key.Matches(msg, m.keys.Reload):
		if m.session.Busy {
			m.setFlash("another request is in flight", true)
			return m, nil
		}
		return m, m.actionCmd("load", m.ctrl.LoadExisting)

	case key.Matches(msg, m.keys.Select):
		m.selectCursor()
		return m, nil

	case key.Matches(msg, m.keys.Download):
		cmd := m.download()
		return m, cmd

	case key.Matches(msg, m.keys.Tab):
		if m.focus == focusList && m.detail != nil {
			m.focus = focusDetail
		} else {
			m.focus = focusList
		}
		return m, nil
	}

	if m.focus == focusDetail {
		cmd := m.scroll(&m.detailView, msg)
		return m, cmd
	}
	m.moveCursor(msg)
	return m, nil
}

func (m Model) handleLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.view = viewMain
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m, m.loadLogsCmd()
	}
	cmd := m.scroll(&m.logView, msg)
	return m, cmd
}

func (m *Model) scroll(vp *viewport.Model, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Top):
		vp.GotoTop()
		return nil
	case key.Matches(msg, m.keys.Bottom):
		vp.GotoBottom()
		return nil
	}
	var cmd tea.Cmd
	*vp, cmd = vp.Update(msg)
	return cmd
}

func (m *Model) moveCursor(msg tea.KeyMsg) {
	n := len(m.store.Solutions)
	if n == 0 {
		return
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < n-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = n - 1
	}
}

// trigger starts a search when idle and stops it when running.
func (m *Model) trigger() tea.Cmd {
	if m.session.Busy {
		m.setFlash("another request is in flight", true)
		return nil
	}
	switch m.session.Phase {
	case session.Idle:
		req, err := m.requests.Current()
		if err != nil {
			m.modal = &modal{title: "Request file", body: m.requests.Path() + "\n\n" + err.Error()}
			return nil
		}
		return m.actionCmd("start", func(ctx context.Context) error {
			return m.ctrl.Start(ctx, req)
		})
	case session.Running:
		return m.actionCmd("stop", m.ctrl.Stop)
	default:
		return nil
	}
}

func (m *Model) selectCursor() {
	if len(m.store.Solutions) == 0 {
		return
	}
	if err := m.session.WindowErr; err != nil {
		m.setFlash(firstLine(err.Error()), true)
		return
	}
	d, err := m.ctrl.Store().Select(m.cursor, m.session.Window, m.session.TourName)
	if err != nil {
		m.setFlash(firstLine(err.Error()), true)
		return
	}
	m.detail = &d
	m.store = m.ctrl.Store().Snapshot()
	m.renderDetail()
	m.detailView.GotoTop()
}

func (m *Model) download() tea.Cmd {
	if m.detail == nil {
		m.setFlash("select a solution first", true)
		return nil
	}
	if m.export == nil {
		return nil
	}
	export := m.export
	parent := m.ctx
	hash := m.detail.Hash
	fallback := fmt.Sprintf("%s-%d.xlsx", m.session.TourName, m.detail.ID+1)
	m.setFlash("downloading solution #"+fmt.Sprint(m.detail.ID+1)+"...", false)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, ActionTimeout)
		defer cancel()
		path, err := export(ctx, hash, fallback)
		return downloadDoneMsg{path: path, err: err}
	}
}

// actionCmd runs a controller call off the update loop.
func (m Model) actionCmd(action string, fn func(context.Context) error) tea.Cmd {
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, ActionTimeout)
		defer cancel()
		return actionDoneMsg{action: action, err: fn(ctx)}
	}
}

func (m Model) loadLogsCmd() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		entries, err := logtail.ReadEntries(path, LogBufferLimit)
		return logsLoadedMsg{entries: entries, err: err}
	}
}
