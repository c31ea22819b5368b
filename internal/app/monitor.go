package app

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/five82/logcollector/internal/prefs"
	"github.com/five82/logcollector/internal/state"
	"github.com/five82/logcollector/internal/statusapi"
	"github.com/five82/logcollector/internal/ui"
)

// Monitor runs the terminal monitor against a collector's status API until
// the user quits or ctx is cancelled.
func Monitor(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := newLogger(opts)

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		log.Error(err, "load prefs; using defaults")
	}

	client, err := statusapi.NewClient(cfg.APIBind)
	if err != nil {
		return errors.Wrap(err, "init status client")
	}

	store := &state.Store{}

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	StartPoller(ctx, store, client, interval, log)

	// Populate the store before the first frame.
	refresh(ctx, store, client, log)

	// Shown until the collector reports its own path.
	sinkPath, err := cfg.ResolveSinkPath(cfg.Colored())
	if err != nil {
		return err
	}

	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		SinkPath:  sinkPath,
		PollTick:  interval,
		ThemeName: userPrefs.Theme,
		TailLines: userPrefs.TailLines,
		PrefsPath: opts.PrefsPath,
	})
}

// PrintStatus fetches one status document and writes it to w as indented
// JSON.
func PrintStatus(ctx context.Context, w io.Writer, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	client, err := statusapi.NewClient(cfg.APIBind)
	if err != nil {
		return errors.Wrap(err, "init status client")
	}
	return writeStatus(ctx, w, client)
}

func writeStatus(ctx context.Context, w io.Writer, client statusapi.StatusFetcher) error {
	status, err := client.FetchStatus(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch status")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(status)
}
