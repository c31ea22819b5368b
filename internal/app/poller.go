package app

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"github.com/five82/logcollector/internal/state"
	"github.com/five82/logcollector/internal/statusapi"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// StartPoller launches a background goroutine that refreshes the store from
// the status API. Consecutive failures stretch the interval exponentially up
// to maxBackoff. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, client statusapi.StatusFetcher, interval time.Duration, log logr.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		for {
			refresh(ctx, store, client, log)
			wait := calculateBackoff(store.Snapshot().ConsecutiveFailures, interval)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, client statusapi.StatusFetcher, log logr.Logger) {
	status, err := client.FetchStatus(ctx)
	if err != nil {
		store.Update(nil, err)
		log.V(1).Info("status poll failed", "err", err.Error())
		return
	}
	store.Update(status, nil)
}

// calculateBackoff doubles base once per failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
