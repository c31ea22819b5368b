// Package sink owns the destination file of the collector.
package sink

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
)

var (
	// ErrSinkOpen marks failures to create or open the destination file.
	ErrSinkOpen = errors.New("sink open failed")
	// ErrSinkWrite marks failures to write or flush the destination file.
	ErrSinkWrite = errors.New("sink write failed")
	// ErrClosed is returned by writes after Close.
	ErrClosed = errors.New("sink closed")
)

// Writer appends rendered units to a file, one line at a time, flushing each
// unit before returning so a crash leaves every completed line readable.
type Writer struct {
	path string

	mu     sync.Mutex
	file   *os.File
	buf    *bufio.Writer
	closed bool
	bytes  int64
}

// Open creates path (and its parent directories) for writing. An existing
// file is truncated: each run writes one complete document.
func Open(path string) (*Writer, error) {
	if path == "" {
		return nil, errors.Mark(errors.New("sink path is empty"), ErrSinkOpen)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "create sink dir"), ErrSinkOpen)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "open sink"), ErrSinkOpen)
	}
	return &Writer{path: path, file: file, buf: bufio.NewWriter(file)}, nil
}

// Path returns the file path.
func (w *Writer) Path() string {
	return w.path
}

// Bytes returns how many bytes were written through w.
func (w *Writer) Bytes() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bytes
}

// WriteUnit appends unit and a line terminator, then flushes.
func (w *Writer) WriteUnit(unit string) error {
	return w.write(unit, "\n")
}

// WritePrologue writes the document header of a colored sink.
func (w *Writer) WritePrologue(prologue string) error {
	return w.write(prologue, "")
}

// WriteEpilogue writes the document footer of a colored sink.
func (w *Writer) WriteEpilogue(epilogue string) error {
	return w.write(epilogue, "")
}

func (w *Writer) write(s, terminator string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.Mark(ErrClosed, ErrSinkWrite)
	}
	if _, err := w.buf.WriteString(s); err != nil {
		return errors.Mark(errors.Wrap(err, "write sink"), ErrSinkWrite)
	}
	if _, err := w.buf.WriteString(terminator); err != nil {
		return errors.Mark(errors.Wrap(err, "write sink"), ErrSinkWrite)
	}
	if err := w.buf.Flush(); err != nil {
		return errors.Mark(errors.Wrap(err, "flush sink"), ErrSinkWrite)
	}
	w.bytes += int64(len(s) + len(terminator))
	return nil
}

// Close flushes and closes the file. Later calls return nil.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	if flushErr != nil {
		return errors.Mark(errors.Wrap(flushErr, "flush sink"), ErrSinkWrite)
	}
	if closeErr != nil {
		return errors.Mark(errors.Wrap(closeErr, "close sink"), ErrSinkWrite)
	}
	return nil
}
