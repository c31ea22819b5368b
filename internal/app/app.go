package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"github.com/five82/logcollector/internal/collector"
	"github.com/five82/logcollector/internal/config"
	"github.com/five82/logcollector/internal/crash"
	"github.com/five82/logcollector/internal/logging"
	"github.com/five82/logcollector/internal/metrics"
	"github.com/five82/logcollector/internal/statusapi"
)

// Options configure the logcollector commands.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/logcollector/prefs.toml
	PollEvery  int    // seconds; zero uses default
	Verbosity  int
	LogOutput  io.Writer // stderr when nil
	Overrides  Overrides
}

// Overrides carry command-line values that win over the config file. Nil
// pointers and empty slices leave the file value alone.
type Overrides struct {
	CaptureCommand *string
	ClearCommand   *string
	ClearEvery     *int
	SinkPath       *string
	CleanCache     *bool
	Filter         []string
	Colors         []string
	Background     *string
	APIBind        *string
	NoAPI          bool
}

func (o Overrides) apply(cfg *config.Config) {
	if o.CaptureCommand != nil {
		cfg.CaptureCommand = *o.CaptureCommand
	}
	if o.ClearCommand != nil {
		cfg.ClearCommand = *o.ClearCommand
	}
	if o.ClearEvery != nil {
		cfg.ClearEvery = *o.ClearEvery
	}
	if o.SinkPath != nil {
		cfg.SinkPath = *o.SinkPath
	}
	if o.CleanCache != nil {
		cfg.CleanCache = *o.CleanCache
	}
	if len(o.Filter) > 0 {
		cfg.Filter = o.Filter
	}
	if len(o.Colors) > 0 {
		cfg.Colors = o.Colors
	}
	if o.Background != nil {
		cfg.Background = *o.Background
	}
	if o.APIBind != nil {
		cfg.APIBind = *o.APIBind
	}
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, errors.Wrap(err, "load config")
	}
	opts.Overrides.apply(&cfg)
	return cfg, nil
}

func newLogger(opts Options) logr.Logger {
	w := opts.LogOutput
	if w == nil {
		w = os.Stderr
	}
	return logging.New(w, opts.Verbosity)
}

// newController builds a controller from cfg and applies every setting.
func newController(cfg config.Config, log logr.Logger, rec collector.Metrics, onPanic func(any)) (*collector.Controller, error) {
	cmd, err := cfg.Command()
	if err != nil {
		return nil, errors.Wrap(err, "parse source command")
	}
	ctrl, err := collector.New(collector.Options{
		Catalog: cfg.Categories,
		Command: cmd,
		Log:     log,
		Metrics: rec,
		OnPanic: onPanic,
	})
	if err != nil {
		return nil, err
	}
	if err := ctrl.SetFilter(cfg.Filter...); err != nil {
		return nil, errors.Wrap(err, "filter")
	}
	if err := ctrl.SetCleanCache(cfg.CleanCache); err != nil {
		return nil, err
	}
	if cfg.Colored() {
		if err := ctrl.SetColors(cfg.Colors...); err != nil {
			return nil, errors.Wrap(err, "colors")
		}
	}
	if cfg.Background != "" {
		if err := ctrl.SetBackground(cfg.Background); err != nil {
			return nil, errors.Wrap(err, "background")
		}
	}
	return ctrl, nil
}

// Collect runs the collector until the capture stream ends or the process
// receives SIGINT, SIGTERM or SIGHUP. The status API runs alongside it
// unless disabled; a bind failure is logged and collection goes on without it.
func Collect(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := newLogger(opts)
	rec := metrics.New()

	crashes := &crash.Handler{}
	ctrl, err := newController(cfg, log, rec, func(r any) {
		log.Error(nil, "collection loop panicked", "panic", fmt.Sprint(r))
		crashes.Notify()
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()
	crashes.Watch(ctx)

	if !opts.Overrides.NoAPI {
		srv, err := statusapi.NewServer(cfg.APIBind, ctrl.Status, rec.Handler(), log)
		if err != nil {
			log.Error(err, "status api disabled", "bind", cfg.APIBind)
		} else {
			apiCtx, stopAPI := context.WithCancel(context.Background())
			served := make(chan error, 1)
			go func() {
				defer crashes.Recover()
				served <- srv.Serve(apiCtx)
			}()
			defer func() {
				stopAPI()
				if err := <-served; err != nil {
					log.Error(err, "status api")
				}
			}()
		}
	}

	if err := ctrl.Start(ctx, &host{cfg: cfg, crashes: crashes}); err != nil {
		return err
	}
	return ctrl.Wait()
}
