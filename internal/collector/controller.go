// Package collector runs the capture → filter → render → persist pipeline.
//
// A Controller is configured with setters and then started once; Start
// launches a single Loop on its own goroutine. The loop moves through
// Idle → Running → Draining → Stopped. It stops when the crash flag is set
// (NotifyCrash), when the capture stream ends, when the start context is
// cancelled, or on the first I/O failure. Failures are logged, never
// returned from Start.
//
// A process is expected to own exactly one Controller.
package collector

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"github.com/five82/logcollector/internal/crash"
	"github.com/five82/logcollector/internal/render"
	"github.com/five82/logcollector/internal/source"
	"github.com/five82/logcollector/internal/state"
	"github.com/five82/logcollector/internal/tags"
)

// ErrConfigLocked is returned by setters once the controller has started.
var ErrConfigLocked = errors.New("collector already started; configuration is locked")

// Config is the snapshot a loop runs with. It does not change after Start.
type Config struct {
	Catalog    tags.Catalog
	Filter     tags.FilterSet
	Colors     tags.ColorTable // nil unless Colored
	Colored    bool
	Background string
	CleanCache bool
	SinkPath   string
	Command    source.Command
}

// Host is what the embedding process provides at start: where the sink
// lives and where crash notifications come from. SinkPath is told whether
// the cache should be cleaned so it can purge earlier sink files.
type Host interface {
	SinkPath(colored, clean bool) (string, error)
	Subscribe(crash.Listener)
}

// Options configure a Controller.
type Options struct {
	Catalog    tags.Catalog   // DefaultCatalog when empty
	Command    source.Command // DefaultCommand when Capture is empty
	Log        logr.Logger
	Metrics    Metrics
	OpenSource SourceOpener // OpenProcess when nil
	// OnPanic is told about a panic inside the loop, after which the loop
	// drains and stops with ErrPanic.
	OnPanic func(any)
}

// Controller is the configuration and lifecycle surface of the collector.
type Controller struct {
	log     logr.Logger
	metrics Metrics
	open    SourceOpener
	onPanic func(any)

	mu      sync.Mutex
	cfg     Config
	started bool
	loop    atomic.Pointer[Loop]
}

var _ crash.Listener = (*Controller)(nil)

// New validates the catalog and returns an unstarted controller.
func New(opts Options) (*Controller, error) {
	catalog := opts.Catalog
	if len(catalog) == 0 {
		catalog = tags.DefaultCatalog
	}
	if err := catalog.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid catalog")
	}
	command := opts.Command
	if len(command.Capture) == 0 {
		command = source.DefaultCommand()
	}
	log := opts.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Controller{
		log:     log.WithName("collector"),
		metrics: opts.Metrics,
		open:    opts.OpenSource,
		onPanic: opts.OnPanic,
		cfg: Config{
			Catalog:    append(tags.Catalog(nil), catalog...),
			Background: render.DefaultBackground,
			Command:    command,
		},
	}, nil
}

func (c *Controller) configure(fn func(*Config) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return ErrConfigLocked
	}
	return fn(&c.cfg)
}

// SetFilter restricts collection to the named categories, in the given
// order. No names means every category.
func (c *Controller) SetFilter(names ...string) error {
	return c.configure(func(cfg *Config) error {
		f, err := cfg.Catalog.Resolve(names...)
		if err != nil {
			return err
		}
		cfg.Filter = f
		return nil
	})
}

// SetCleanCache asks the host to purge earlier sink files when the loop
// starts. The sink itself is always rewritten from the start.
func (c *Controller) SetCleanCache(clean bool) error {
	return c.configure(func(cfg *Config) error {
		cfg.CleanCache = clean
		return nil
	})
}

// SetColors assigns colors index-aligned to the catalog and turns on the
// colored output. Missing entries take the fallback color.
func (c *Controller) SetColors(colors ...string) error {
	return c.configure(func(cfg *Config) error {
		table, err := tags.NewColorTable(cfg.Catalog, colors...)
		if err != nil {
			return err
		}
		cfg.Colors = table
		cfg.Colored = true
		return nil
	})
}

// SetBackground sets the page color of colored sinks.
func (c *Controller) SetBackground(color string) error {
	return c.configure(func(cfg *Config) error {
		color = strings.TrimSpace(color)
		if color == "" {
			return errors.New("background color is empty")
		}
		cfg.Background = color
		return nil
	})
}

// SetCommand replaces the capture and clear invocations.
func (c *Controller) SetCommand(cmd source.Command) error {
	return c.configure(func(cfg *Config) error {
		if len(cmd.Capture) == 0 {
			return errors.New("capture command is empty")
		}
		cfg.Command = cmd
		return nil
	})
}

// Config returns a copy of the current configuration.
func (c *Controller) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Start resolves the sink path, subscribes to crash notifications and
// launches the loop. Concurrent calls are serialized; while a loop is active
// further calls do nothing. It only fails when the sink path cannot be
// resolved; runtime failures are logged by the loop.
func (c *Controller) Start(ctx context.Context, host Host) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l := c.loop.Load(); l != nil && l.State() != Stopped {
		c.log.Info("start ignored; collection already active", "state", l.State().String())
		return nil
	}

	path, err := host.SinkPath(c.cfg.Colored, c.cfg.CleanCache)
	if err != nil {
		return errors.Wrap(err, "resolve sink path")
	}
	c.cfg.SinkPath = path
	c.started = true

	l := newLoop(c.cfg, c.log.WithName("loop"), c.open, c.metrics)
	l.onPanic = c.onPanic
	c.loop.Store(l)
	host.Subscribe(c)

	go func() {
		_ = l.Run(ctx)
	}()
	return nil
}

// NotifyCrash sets the cancellation flag of the active loop. A loop that
// already stopped is left alone.
func (c *Controller) NotifyCrash() {
	l := c.loop.Load()
	if l == nil || l.State() == Stopped {
		return
	}
	c.log.Info("crash notified; stopping collection")
	l.Cancel()
}

// Wait blocks until the loop stops and returns its terminal error. It
// returns nil immediately when the controller never started.
func (c *Controller) Wait() error {
	l := c.loop.Load()
	if l == nil {
		return nil
	}
	<-l.Done()
	return l.Err()
}

// State returns the loop state, Idle before Start.
func (c *Controller) State() State {
	if l := c.loop.Load(); l != nil {
		return l.State()
	}
	return Idle
}

// Status reports the loop state and counters.
func (c *Controller) Status() state.Status {
	var st state.Status
	if l := c.loop.Load(); l != nil {
		st = l.status()
	} else {
		cfg := c.Config()
		st = state.Status{
			State:   Idle.String(),
			Command: cfg.Command.String(),
			Colored: cfg.Colored,
		}
		if len(cfg.Filter) > 0 {
			st.Filter = cfg.Catalog.Names(cfg.Filter)
		}
	}
	st.PID = os.Getpid()
	return st
}
