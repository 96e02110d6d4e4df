package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const defaultPollInterval = 2 * time.Second

// PollFunc performs one status check.
type PollFunc func(ctx context.Context, withData bool) error

// RunPoller calls poll every interval until ctx is cancelled. The next call is
// scheduled only after the previous one returns, whatever its outcome, so
// calls never overlap and are at least interval apart.
func RunPoller(ctx context.Context, poll PollFunc, interval time.Duration, log zerolog.Logger) error {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		if err := poll(ctx, false); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			failures++
			// Only the first failure of a streak is worth a warning.
			ev := log.Debug()
			if failures == 1 {
				ev = log.Warn()
			}
			ev.Err(err).Int("failures", failures).Msg("status poll failed")
		} else {
			if failures > 0 {
				log.Info().Int("failures", failures).Msg("status poll recovered")
			}
			failures = 0
		}
		timer.Reset(interval)
	}
}
