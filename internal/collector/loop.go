package collector

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"github.com/five82/logcollector/internal/render"
	"github.com/five82/logcollector/internal/sink"
	"github.com/five82/logcollector/internal/source"
	"github.com/five82/logcollector/internal/state"
	"github.com/five82/logcollector/internal/tags"
)

// ErrPanic marks a loop that stopped because the pipeline panicked.
var ErrPanic = errors.New("collection loop panicked")

// State is a collection loop state.
type State int32

const (
	Idle State = iota
	Running
	Draining
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Source is the line stream the loop reads. Close must be idempotent and
// must unblock a concurrent Next.
type Source interface {
	Next() (string, error)
	Close() error
}

// SourceOpener starts a Source for a command.
type SourceOpener func(source.Command, source.Options) (Source, error)

// OpenProcess is the default SourceOpener: it spawns the capture command.
func OpenProcess(cmd source.Command, opts source.Options) (Source, error) {
	p, err := source.Open(cmd, opts)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Metrics receives loop events. *metrics.Recorder implements it.
type Metrics interface {
	LineRead()
	LineWritten(category string, bytes int)
	LineDropped()
	Cleared(err error)
	SetState(state string)
}

type nopMetrics struct{}

func (nopMetrics) LineRead()               {}
func (nopMetrics) LineWritten(string, int) {}
func (nopMetrics) LineDropped()            {}
func (nopMetrics) Cleared(error)           {}
func (nopMetrics) SetState(string)         {}

// Loop is one pass of capture → filter → render → persist. It runs once.
type Loop struct {
	cfg     Config
	log     logr.Logger
	open    SourceOpener
	metrics Metrics
	onPanic func(any)

	cancelled atomic.Bool
	state     atomic.Int32

	linesRead     atomic.Uint64
	linesWritten  atomic.Uint64
	linesDropped  atomic.Uint64
	bytesWritten  atomic.Int64
	clears        atomic.Uint64
	clearFailures atomic.Uint64
	startedAt     atomic.Int64
	lastLineAt    atomic.Int64

	mu         sync.Mutex
	categories map[string]uint64
	lastErr    error

	done chan struct{}
}

func newLoop(cfg Config, log logr.Logger, open SourceOpener, m Metrics) *Loop {
	if open == nil {
		open = OpenProcess
	}
	if m == nil {
		m = nopMetrics{}
	}
	return &Loop{
		cfg:        cfg,
		log:        log,
		open:       open,
		metrics:    m,
		categories: make(map[string]uint64),
		done:       make(chan struct{}),
	}
}

// Cancel sets the cancellation flag. The loop observes it before and after
// each read; a read already blocked is not interrupted.
func (l *Loop) Cancel() {
	l.cancelled.Store(true)
}

// State returns the current loop state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Done is closed once the loop reaches Stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Err returns the terminal error after Done is closed.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

func (l *Loop) setState(s State) {
	l.state.Store(int32(s))
	l.metrics.SetState(s.String())
	l.log.V(1).Info("loop state", "state", s.String())
}

// Run executes the loop until the flag is set, the source ends, ctx is done
// or an I/O error occurs. Every exit path releases the source and the sink.
// Cancelling ctx also closes the source so a blocked read returns.
func (l *Loop) Run(ctx context.Context) (err error) {
	defer close(l.done)
	defer func() {
		l.mu.Lock()
		l.lastErr = err
		l.mu.Unlock()
		l.setState(Stopped)
		if err != nil {
			l.log.Error(err, "collection stopped", "kind", errorKind(err))
			return
		}
		l.log.Info("collection stopped", "lines_read", l.linesRead.Load(), "lines_written", l.linesWritten.Load())
	}()

	w, err := sink.Open(l.cfg.SinkPath)
	if err != nil {
		return err
	}
	src, err := l.open(l.cfg.Command, source.Options{Log: l.log.WithName("source"), OnClear: l.cleared})
	if err != nil {
		_ = w.Close()
		return err
	}

	l.startedAt.Store(time.Now().UnixNano())
	l.setState(Running)
	l.log.Info("collection started", "command", l.cfg.Command.String(), "sink", l.cfg.SinkPath, "colored", l.cfg.Colored)

	stop := context.AfterFunc(ctx, func() {
		l.Cancel()
		_ = src.Close()
	})
	defer stop()

	err = l.collectGuarded(src, w)

	l.setState(Draining)
	l.drain(src, w, err)
	return err
}

// collectGuarded turns a panic in the pipeline into a terminal error so
// that draining still releases the source and the sink.
func (l *Loop) collectGuarded(src Source, w *sink.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Mark(errors.Newf("panic: %v", r), ErrPanic)
			if l.onPanic != nil {
				l.onPanic(r)
			}
		}
	}()
	return l.collect(src, w)
}

func (l *Loop) collect(src Source, w *sink.Writer) error {
	if l.cfg.Colored {
		if err := w.WritePrologue(render.Prologue(l.cfg.Background)); err != nil {
			return err
		}
	}

	opts := render.Options{
		Colored:  l.cfg.Colored,
		Filtered: len(l.cfg.Filter) > 0,
		Colors:   l.cfg.Colors,
	}
	for {
		if l.cancelled.Load() {
			return nil
		}
		line, err := src.Next()
		if l.cancelled.Load() {
			return nil
		}
		if errors.Is(err, io.EOF) {
			l.log.Info("capture stream ended")
			return nil
		}
		if err != nil {
			return err
		}

		l.linesRead.Add(1)
		l.lastLineAt.Store(time.Now().UnixNano())
		l.metrics.LineRead()

		idx, ok := tags.Match(line, l.cfg.Catalog, l.cfg.Filter)
		unit, keep := render.Format(line, idx, ok, opts)
		if !keep {
			l.linesDropped.Add(1)
			l.metrics.LineDropped()
			continue
		}
		if err := w.WriteUnit(unit); err != nil {
			return err
		}
		l.written(idx, ok, len(unit)+1)
	}
}

func (l *Loop) drain(src Source, w *sink.Writer, cause error) {
	if l.cfg.Colored && !errors.Is(cause, sink.ErrSinkWrite) {
		if err := w.WriteEpilogue(render.Epilogue()); err != nil {
			l.log.Error(err, "write epilogue")
		}
	}
	if err := w.Close(); err != nil {
		l.log.Error(err, "close sink")
	}
	l.bytesWritten.Store(w.Bytes())
	if err := src.Close(); err != nil {
		l.log.Error(err, "close source")
	}
}

func (l *Loop) written(idx int, ok bool, n int) {
	name := ""
	if ok {
		name = l.cfg.Catalog[idx].Name
	}
	l.linesWritten.Add(1)
	l.bytesWritten.Add(int64(n))
	l.mu.Lock()
	if name != "" {
		l.categories[name]++
	}
	l.mu.Unlock()
	l.metrics.LineWritten(name, n)
	l.log.V(2).Info("line written", "category", name)
}

func (l *Loop) cleared(err error) {
	l.clears.Add(1)
	if err != nil {
		l.clearFailures.Add(1)
	}
	l.metrics.Cleared(err)
}

func (l *Loop) status() state.Status {
	st := state.Status{
		State:         l.State().String(),
		Command:       l.cfg.Command.String(),
		SinkPath:      l.cfg.SinkPath,
		Colored:       l.cfg.Colored,
		LinesRead:     l.linesRead.Load(),
		LinesWritten:  l.linesWritten.Load(),
		LinesDropped:  l.linesDropped.Load(),
		BytesWritten:  l.bytesWritten.Load(),
		Clears:        l.clears.Load(),
		ClearFailures: l.clearFailures.Load(),
	}
	if len(l.cfg.Filter) > 0 {
		st.Filter = l.cfg.Catalog.Names(l.cfg.Filter)
	}
	if ts := l.startedAt.Load(); ts != 0 {
		st.StartedAt = time.Unix(0, ts)
	}
	if ts := l.lastLineAt.Load(); ts != 0 {
		st.LastLineAt = time.Unix(0, ts)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.categories) > 0 {
		st.Categories = make(map[string]uint64, len(l.categories))
		for k, v := range l.categories {
			st.Categories[k] = v
		}
	}
	if l.lastErr != nil {
		st.LastError = l.lastErr.Error()
	}
	return st
}

// errorKind names the failure class for logs.
func errorKind(err error) string {
	switch {
	case errors.Is(err, source.ErrSourceSpawn):
		return "SourceSpawnError"
	case errors.Is(err, source.ErrSourceRead):
		return "SourceReadError"
	case errors.Is(err, sink.ErrSinkOpen):
		return "SinkOpenError"
	case errors.Is(err, sink.ErrSinkWrite):
		return "SinkWriteError"
	case errors.Is(err, ErrPanic):
		return "Panic"
	default:
		return "Unknown"
	}
}
