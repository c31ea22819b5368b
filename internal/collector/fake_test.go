package collector

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/logcollector/internal/crash"
	"github.com/five82/logcollector/internal/source"
)

// fakeSource feeds lines from a channel. Closing lines ends the stream with
// err (io.EOF when nil).
type fakeSource struct {
	lines  chan string
	err    error
	closed chan struct{}
	once   sync.Once
	closes atomic.Int32
}

func newFakeSource(lines ...string) *fakeSource {
	f := &fakeSource{
		lines:  make(chan string, len(lines)+16),
		closed: make(chan struct{}),
	}
	for _, line := range lines {
		f.lines <- line
	}
	return f
}

func (f *fakeSource) Next() (string, error) {
	select {
	case line, ok := <-f.lines:
		if !ok {
			if f.err != nil {
				return "", f.err
			}
			return "", io.EOF
		}
		return line, nil
	case <-f.closed:
		return "", io.EOF
	}
}

func (f *fakeSource) Close() error {
	f.closes.Add(1)
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeSource) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

func openerFor(src Source, calls *atomic.Int32) SourceOpener {
	return func(source.Command, source.Options) (Source, error) {
		if calls != nil {
			calls.Add(1)
		}
		return src, nil
	}
}

// testHost resolves a fixed sink path and relays crashes.
type testHost struct {
	crash.Handler
	path string
	err  error
}

func (h *testHost) SinkPath(bool, bool) (string, error) {
	return h.path, h.err
}

func sinkPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "logcat.txt")
}

func readSink(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", path, err)
	}
	return string(data)
}

func waitState(t *testing.T, get func() State, want State) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if get() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state = %v, want %v", get(), want)
}

func waitDone(t *testing.T, c *Controller) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- c.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("collector did not stop")
		return nil
	}
}
