package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/five82/booth/internal/apiclient"
	"github.com/five82/booth/internal/market"
	"github.com/five82/booth/internal/state"
)

const maxBackoff = 30 * time.Second

// lister is the part of the studio controller the poller uses.
type lister interface {
	List(ctx context.Context, filters market.StudioFilters) error
}

// StartPoller launches a background goroutine that re-lists studios every
// interval while a session is held. Failures back off exponentially up to
// maxBackoff. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, studios lister, filters func() market.StudioFilters, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "poller")

	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		failures := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if err := refresh(ctx, store, studios, filters()); err != nil {
				failures++
				logger.Warn("studio refresh failed", "error", err, "failures", failures)
			} else {
				failures = 0
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// refresh lists studios once and records the outcome. Without a session it
// does nothing.
func refresh(ctx context.Context, store *state.Store, studios lister, filters market.StudioFilters) error {
	if !store.Snapshot().Session.Authenticated() {
		return nil
	}
	err := studios.List(ctx, filters)
	if errors.Is(err, apiclient.ErrSessionExpired) {
		// The session controller has already reset the store.
		return nil
	}
	store.RecordPoll(err)
	return err
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff or base when base is longer.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	limit := maxBackoff
	if base > limit {
		limit = base
	}
	if failures <= 0 {
		return base
	}
	if failures > 30 {
		return limit
	}
	d := base << failures
	if d <= 0 || d > limit {
		return limit
	}
	return d
}
