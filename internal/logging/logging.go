// Package logging builds the structured logger shared by the collector.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// New returns a logr.Logger writing key/value lines to w. verbosity gates
// V(n) calls; 0 keeps info and errors only.
func New(w io.Writer, verbosity int) logr.Logger {
	if w == nil {
		w = os.Stderr
	}
	var mu sync.Mutex
	return funcr.New(func(prefix, args string) {
		mu.Lock()
		defer mu.Unlock()
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{
		LogTimestamp:    true,
		TimestampFormat: "2006-01-02 15:04:05",
		Verbosity:       verbosity,
	})
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() logr.Logger {
	return logr.Discard()
}
