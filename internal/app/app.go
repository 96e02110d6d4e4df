package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/five82/kickoff/internal/config"
	"github.com/five82/kickoff/internal/export"
	"github.com/five82/kickoff/internal/logging"
	"github.com/five82/kickoff/internal/prefs"
	"github.com/five82/kickoff/internal/request"
	"github.com/five82/kickoff/internal/session"
	"github.com/five82/kickoff/internal/state"
	"github.com/five82/kickoff/internal/timetable"
	"github.com/five82/kickoff/internal/ui"
)

// Options configure the kickoff application.
type Options struct {
	ConfigPath  string
	PrefsPath   string        // empty uses default ~/.config/kickoff/prefs.toml
	RequestFile string        // overrides request_file from the config
	PollEvery   time.Duration // zero uses default
}

// Run boots the kickoff TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.RequestFile != "" {
		path, err := config.ExpandPath(opts.RequestFile)
		if err != nil {
			return fmt.Errorf("request file: %w", err)
		}
		cfg.RequestFile = path
	}

	base, closer, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	log := logging.Component(base, "app")
	log.Info().Str("api_bind", cfg.APIBind).Str("request_file", cfg.RequestFile).Msg("kickoff starting")

	client, err := timetable.NewClient(cfg.APIBind, timetable.WithLogger(logging.Component(base, "client")))
	if err != nil {
		return fmt.Errorf("init timetable client: %w", err)
	}

	store := &state.Store{}
	ctrl := session.New(client, store, session.WithLogger(logging.Component(base, "session")))

	source := request.NewSource(cfg.RequestFile, logging.Component(base, "request"))
	if err := source.Reload(); err != nil {
		// Not fatal: the operator can fix the file while the UI runs.
		log.Warn().Err(err).Msg("request file not loaded")
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := prefs.Load(prefsPath)

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = opts.PollEvery
	}

	// Pick up a search that was already running before kickoff started.
	if err := ctrl.Poll(ctx, true); err != nil {
		log.Warn().Err(err).Msg("initial status check failed")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	program := ui.NewProgram(ui.Options{
		Context:    gctx,
		Controller: ctrl,
		Requests:   source,
		Export: func(ctx context.Context, hash, fallback string) (string, error) {
			return export.Save(ctx, client, cfg.DownloadDir, hash, fallback)
		},
		LogPath:   cfg.LogFile,
		Prefs:     userPrefs,
		PrefsPath: prefsPath,
		Logger:    logging.Component(base, "ui"),
	})

	g.Go(func() error {
		return RunPoller(gctx, ctrl.Poll, interval, logging.Component(base, "poller"))
	})
	g.Go(func() error {
		err := source.Watch(gctx, func(err error) {
			program.Send(ui.RequestChangedMsg{Err: err})
		})
		if err != nil {
			// The last loaded request stays in effect.
			log.Warn().Err(err).Msg("request watcher stopped")
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && gctx.Err() != nil {
			return nil
		}
		return err
	})

	err = g.Wait()
	log.Info().Err(err).Msg("kickoff stopped")
	return err
}
