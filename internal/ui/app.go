package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/kickoff/internal/logtail"
	"github.com/five82/kickoff/internal/prefs"
	"github.com/five82/kickoff/internal/session"
	"github.com/five82/kickoff/internal/state"
	"github.com/five82/kickoff/internal/timetable"
)

// Controller is the session surface the UI drives. *session.Controller
// implements it.
type Controller interface {
	View() (session.Snapshot, state.Snapshot)
	Store() *state.Store
	Start(ctx context.Context, req timetable.SearchRequest) error
	Stop(ctx context.Context) error
	LoadExisting(ctx context.Context) error
	DismissError()
}

// RequestSource supplies the current search request. *request.Source
// implements it.
type RequestSource interface {
	Current() (timetable.SearchRequest, error)
	Path() string
}

// Exporter saves the export of a solution and returns the written path.
type Exporter func(ctx context.Context, hash, fallback string) (string, error)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller Controller
	Requests   RequestSource
	Export     Exporter
	LogPath    string
	Prefs      prefs.Prefs
	PrefsPath  string
	Logger     zerolog.Logger
}

// RequestChangedMsg reports that the request file was reloaded. Err is the
// load error, if any; the previous request stays in effect in that case.
type RequestChangedMsg struct {
	Err error
}

type viewKind int

const (
	viewMain viewKind = iota
	viewLogs
)

type paneFocus int

const (
	focusList paneFocus = iota
	focusDetail
)

// Model is the main Bubble Tea model.
type Model struct {
	ctx       context.Context
	ctrl      Controller
	requests  RequestSource
	export    Exporter
	logPath   string
	prefs     prefs.Prefs
	prefsPath string
	log       zerolog.Logger

	keys  keyMap
	theme Theme

	width  int
	height int

	view     viewKind
	focus    paneFocus
	showHelp bool
	modal    *modal

	session session.Snapshot
	store   state.Snapshot
	cursor  int
	detail  *state.Detail

	detailView viewport.Model
	logView    viewport.Model
	logEntries []logtail.Entry
	spinner    spinner.Model

	flash    string
	flashErr bool
	flashAt  time.Time
}

type tickMsg time.Time

type actionDoneMsg struct {
	action string
	err    error
}

type downloadDoneMsg struct {
	path string
	err  error
}

type logsLoadedMsg struct {
	entries []logtail.Entry
	err     error
}

// New creates a new UI model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	m := Model{
		ctx:        ctx,
		ctrl:       opts.Controller,
		requests:   opts.Requests,
		export:     opts.Export,
		logPath:    opts.LogPath,
		prefs:      opts.Prefs,
		prefsPath:  opts.PrefsPath,
		log:        opts.Logger,
		keys:       defaultKeyMap(),
		theme:      GetTheme(opts.Prefs.Theme),
		detailView: viewport.New(0, 0),
		logView:    viewport.New(0, 0),
		spinner:    sp,
		store:      state.Snapshot{Selected: -1},
	}
	m.refresh()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.refresh()
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case actionDoneMsg:
		m.refresh()
		m.handleActionResult(msg)
		return m, nil

	case downloadDoneMsg:
		if msg.err != nil {
			m.setFlash("download failed: "+firstLine(msg.err.Error()), true)
		} else {
			m.setFlash("saved "+msg.path, false)
		}
		return m, nil

	case logsLoadedMsg:
		if msg.err != nil {
			m.setFlash("read log: "+msg.err.Error(), true)
			return m, nil
		}
		m.logEntries = msg.entries
		m.logView.SetContent(m.renderLogLines())
		m.logView.GotoBottom()
		return m, nil

	case RequestChangedMsg:
		if msg.Err != nil {
			m.setFlash("request file: "+firstLine(msg.Err.Error()), true)
		} else {
			m.setFlash("request reloaded", false)
		}
		return m, nil
	}

	return m, nil
}

// refresh copies controller and store state into the model.
func (m *Model) refresh() {
	if m.ctrl == nil {
		return
	}
	m.session, m.store = m.ctrl.View()

	if n := len(m.store.Solutions); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if m.detail != nil && !m.store.HasSelection() {
		// A new search or reload replaced the solutions.
		m.detail = nil
		m.focus = focusList
		m.detailView.SetContent("")
	}
}

func (m *Model) handleActionResult(msg actionDoneMsg) {
	if msg.err == nil {
		switch msg.action {
		case "start":
			m.setFlash("search started", false)
		case "stop":
			m.setFlash("search stopped", false)
		case "load":
			m.setFlash(fmt.Sprintf("loaded %d solutions", len(m.store.Solutions)), false)
		}
		return
	}

	var verr *session.ValidationError
	switch {
	case errors.As(msg.err, &verr):
		m.modal = &modal{title: "Invalid request", body: verr.Error()}
	case errors.Is(msg.err, session.ErrBusy):
		m.setFlash("another request is in flight", true)
	case errors.Is(msg.err, session.ErrSessionActive):
		m.setFlash("a search is already running", true)
	case errors.Is(msg.err, session.ErrNoSession):
		m.setFlash("no search is running", true)
	default:
		m.setFlash(msg.action+" failed: "+firstLine(msg.err.Error()), true)
	}
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
	m.flashAt = time.Now()
}

func (m *Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.Warn().Err(err).Msg("save preferences")
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(DefaultUIInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// NewProgram builds the Bubble Tea program for the given options. Callers run
// it and may inject messages such as RequestChangedMsg with Send.
func NewProgram(opts Options) *tea.Program {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
}
