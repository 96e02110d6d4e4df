package request

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/five82/kickoff/internal/timetable"
)

const watchDebounce = 150 * time.Millisecond

// Source keeps the last good search request read from a file.
type Source struct {
	path string
	log  zerolog.Logger

	mu      sync.RWMutex
	req     timetable.SearchRequest
	loaded  bool
	lastErr error
}

// NewSource returns a Source for path. Nothing is read until Reload.
func NewSource(path string, log zerolog.Logger) *Source {
	return &Source{path: path, log: log}
}

// Path returns the watched file.
func (s *Source) Path() string {
	return s.path
}

// Reload re-reads the file. On failure the previous request is kept and the
// error is remembered.
func (s *Source) Reload() error {
	req, err := Load(s.path)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return err
	}
	s.req = req
	s.loaded = true
	return nil
}

// Current returns the last good request. Before any successful load it
// returns the last load error.
func (s *Source) Current() (timetable.SearchRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		if s.lastErr != nil {
			return timetable.SearchRequest{}, s.lastErr
		}
		return timetable.SearchRequest{}, fmt.Errorf("request %s not loaded", s.path)
	}
	return s.req, nil
}

// LastError returns the error of the most recent reload, if any.
func (s *Source) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Watch reloads the request whenever the file is written, created or renamed
// and then calls onChange. The parent directory is watched so editors that
// replace the file are seen. It blocks until ctx is done.
func (s *Source) Watch(ctx context.Context, onChange func(error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	dir := filepath.Dir(s.path)
	file := filepath.Base(s.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	s.log.Debug().Str("dir", dir).Str("file", file).Msg("request watcher started")

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != file {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			err := s.Reload()
			if err != nil {
				s.log.Warn().Err(err).Str("file", s.path).Msg("request reload failed")
			} else {
				s.log.Info().Str("file", s.path).Msg("request reloaded")
			}
			if onChange != nil {
				onChange(err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn().Err(err).Str("dir", dir).Msg("request watch error")
		}
	}
}
