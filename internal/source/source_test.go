package source

import (
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func drain(t *testing.T, p *Process) []string {
	t.Helper()
	var lines []string
	for {
		line, err := p.Next()
		if errors.Is(err, io.EOF) {
			return lines
		}
		if err != nil {
			t.Fatalf("Next error = %v", err)
		}
		lines = append(lines, line)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		capture string
		clear   string
		every   int
		want    Command
		wantErr bool
	}{
		{
			name:    "defaults",
			capture: "logcat -v time",
			clear:   "logcat -c",
			every:   1,
			want:    Command{Capture: []string{"logcat", "-v", "time"}, Clear: []string{"logcat", "-c"}, ClearEvery: 1},
		},
		{
			name:    "quoted args",
			capture: `adb -s "emulator 5554" logcat`,
			every:   3,
			want:    Command{Capture: []string{"adb", "-s", "emulator 5554", "logcat"}},
		},
		{name: "empty capture", capture: "  ", wantErr: true},
		{name: "negative interval", capture: "logcat", clear: "logcat -c", every: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.capture, tt.clear, tt.every)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCommand returned nil error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCommand error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("ParseCommand mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefaultCommand(t *testing.T) {
	cmd := DefaultCommand()
	if cmd.String() != "logcat -v time" || cmd.ClearEvery != 1 {
		t.Fatalf("DefaultCommand = %+v", cmd)
	}
}

func TestProcess_ReadsLinesInOrderAndClears(t *testing.T) {
	requireShell(t)

	marker := filepath.Join(t.TempDir(), "clears")
	cmd := Command{
		Capture:    []string{"sh", "-c", `printf 'one\ntwo\nthree\n'`},
		Clear:      []string{"sh", "-c", "echo x >> " + marker},
		ClearEvery: 1,
	}
	var clears, failures int
	p, err := Open(cmd, Options{OnClear: func(err error) {
		clears++
		if err != nil {
			failures++
		}
	}})
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	defer p.Close()

	if diff := cmp.Diff([]string{"one", "two", "three"}, drain(t, p)); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if clears != 3 || failures != 0 {
		t.Fatalf("clears = %d failures = %d, want 3 and 0", clears, failures)
	}
}

func TestProcess_ClearEveryN(t *testing.T) {
	requireShell(t)

	cmd := Command{
		Capture:    []string{"sh", "-c", `printf 'a\nb\nc\nd\ne\n'`},
		Clear:      []string{"true"},
		ClearEvery: 2,
	}
	clears := 0
	p, err := Open(cmd, Options{OnClear: func(error) { clears++ }})
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	defer p.Close()

	if got := len(drain(t, p)); got != 5 {
		t.Fatalf("read %d lines, want 5", got)
	}
	if clears != 2 {
		t.Fatalf("clears = %d, want 2", clears)
	}
}

func TestProcess_ClearFailureIsNotFatal(t *testing.T) {
	requireShell(t)

	cmd := Command{
		Capture:    []string{"sh", "-c", `printf 'a\nb\n'`},
		Clear:      []string{"sh", "-c", "exit 3"},
		ClearEvery: 1,
	}
	failures := 0
	p, err := Open(cmd, Options{OnClear: func(err error) {
		if err != nil {
			failures++
		}
	}})
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	defer p.Close()

	if got := len(drain(t, p)); got != 2 {
		t.Fatalf("read %d lines, want 2", got)
	}
	if failures != 2 {
		t.Fatalf("failures = %d, want 2", failures)
	}
}

func TestOpen_SpawnFailure(t *testing.T) {
	_, err := Open(Command{Capture: []string{filepath.Join(t.TempDir(), "missing-tool")}}, Options{})
	if !errors.Is(err, ErrSourceSpawn) {
		t.Fatalf("Open error = %v, want ErrSourceSpawn", err)
	}

	_, err = Open(Command{}, Options{})
	if !errors.Is(err, ErrSourceSpawn) {
		t.Fatalf("Open(empty) error = %v, want ErrSourceSpawn", err)
	}
}

func TestProcess_CloseUnblocksNextAndIsIdempotent(t *testing.T) {
	requireShell(t)

	p, err := Open(Command{Capture: []string{"sh", "-c", "sleep 30"}}, Options{})
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := p.Next()
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	if err := p.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close error = %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, io.EOF) {
			t.Fatalf("Next after Close error = %v, want io.EOF", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Next still blocked after Close")
	}
}

func TestProcess_InvalidUTF8Replaced(t *testing.T) {
	requireShell(t)

	p, err := Open(Command{Capture: []string{"sh", "-c", `printf 'ok\377\n'`}}, Options{})
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	defer p.Close()

	lines := drain(t, p)
	if len(lines) != 1 || lines[0] != "ok\uFFFD" {
		t.Fatalf("lines = %q, want [\"ok\\uFFFD\"]", lines)
	}
}

func TestClear_NoCommand(t *testing.T) {
	p := &Process{}
	if err := p.Clear(context.Background()); err != nil {
		t.Fatalf("Clear with no command error = %v", err)
	}
}
