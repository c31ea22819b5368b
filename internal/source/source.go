// Package source spawns the external log producer and reads its output one
// line at a time.
//
// After each successful read the source runs a clear command against the
// producer's buffer (logcat -c by default). This keeps the external buffer
// from growing without bound; lines queued between a read and its clear
// stay in the pipe and are not lost. Command.ClearEvery tunes how often the
// clear runs and 0 disables it.
package source

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/google/shlex"
)

var (
	// ErrSourceSpawn marks failures to start the capture process.
	ErrSourceSpawn = errors.New("source spawn failed")
	// ErrSourceRead marks I/O failures while reading the capture stream.
	ErrSourceRead = errors.New("source read failed")
)

const (
	defaultCapture = "logcat -v time"
	defaultClear   = "logcat -c"

	maxLineBytes = 1024 * 1024
	clearTimeout = 5 * time.Second
)

// Command describes the external tool invocations.
type Command struct {
	Capture    []string
	Clear      []string
	ClearEvery int
}

// DefaultCommand captures logcat with timestamps and clears after every line.
func DefaultCommand() Command {
	cmd, _ := ParseCommand(defaultCapture, defaultClear, 1)
	return cmd
}

// ParseCommand splits shell-style command strings. An empty clear string
// disables clearing.
func ParseCommand(capture, clear string, every int) (Command, error) {
	capArgs, err := shlex.Split(capture)
	if err != nil {
		return Command{}, errors.Wrapf(err, "parse capture command %q", capture)
	}
	if len(capArgs) == 0 {
		return Command{}, errors.New("capture command is empty")
	}
	clearArgs, err := shlex.Split(clear)
	if err != nil {
		return Command{}, errors.Wrapf(err, "parse clear command %q", clear)
	}
	if every < 0 {
		return Command{}, errors.Newf("clear interval %d is negative", every)
	}
	if len(clearArgs) == 0 {
		clearArgs, every = nil, 0
	}
	return Command{Capture: capArgs, Clear: clearArgs, ClearEvery: every}, nil
}

// String renders the capture invocation for logs.
func (c Command) String() string {
	return strings.Join(c.Capture, " ")
}

// Options configure a Process.
type Options struct {
	Log logr.Logger
	// OnClear is called after every clear attempt with its result.
	OnClear func(error)
}

// Process is a running capture process exposed as a line stream.
type Process struct {
	log     logr.Logger
	cmd     *exec.Cmd
	scanner *bufio.Scanner
	command Command
	onClear func(error)

	reads     uint64
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Open starts the capture process. Its standard output is read lazily by
// Next.
func Open(command Command, opts Options) (*Process, error) {
	if len(command.Capture) == 0 {
		return nil, errors.Mark(errors.New("capture command is empty"), ErrSourceSpawn)
	}

	cmd := exec.Command(command.Capture[0], command.Capture[1:]...)
	setProcAttributes(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "stdout pipe"), ErrSourceSpawn)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "start %s", command), ErrSourceSpawn)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	log := opts.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	log.V(1).Info("capture started", "command", command.String(), "pid", cmd.Process.Pid)

	return &Process{
		log:     log,
		cmd:     cmd,
		scanner: scanner,
		command: command,
		onClear: opts.OnClear,
	}, nil
}

// Next blocks until the next line is available. It returns io.EOF once the
// stream ends or the process was closed.
func (p *Process) Next() (string, error) {
	if p.scanner.Scan() {
		line := strings.ToValidUTF8(p.scanner.Text(), "\uFFFD")
		p.reads++
		if p.command.ClearEvery > 0 && p.reads%uint64(p.command.ClearEvery) == 0 {
			p.clear()
		}
		return line, nil
	}
	if p.closed.Load() {
		return "", io.EOF
	}
	if err := p.scanner.Err(); err != nil {
		return "", errors.Mark(errors.Wrap(err, "read capture output"), ErrSourceRead)
	}
	return "", io.EOF
}

func (p *Process) clear() {
	ctx, cancel := context.WithTimeout(context.Background(), clearTimeout)
	defer cancel()
	err := p.Clear(ctx)
	if err != nil {
		p.log.Error(err, "clear log buffer")
	}
	if p.onClear != nil {
		p.onClear(err)
	}
}

// Clear runs the clear command once.
func (p *Process) Clear(ctx context.Context) error {
	if len(p.command.Clear) == 0 {
		return nil
	}
	cmd := exec.CommandContext(ctx, p.command.Clear[0], p.command.Clear[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "%s: %s", strings.Join(p.command.Clear, " "), strings.TrimSpace(string(out)))
	}
	return nil
}

// Close stops the capture process and releases its pipe. It is safe to call
// more than once and while another goroutine is blocked in Next.
func (p *Process) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		if err := killProcess(p.cmd); err != nil {
			p.log.V(1).Info("kill capture process", "error", err.Error())
		}
		// Wait reports the kill signal; only unexpected failures matter.
		if err := p.cmd.Wait(); err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				p.closeErr = errors.Wrap(err, "wait capture process")
			}
		}
		p.log.V(1).Info("capture stopped", "command", p.command.String())
	})
	return p.closeErr
}
