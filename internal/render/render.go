// Package render turns raw lines into the units written to the sink.
package render

import (
	"strings"

	"github.com/five82/logcollector/internal/tags"
)

// DefaultBackground is the page color of colored sinks.
const DefaultBackground = "#FFFFFFFF"

// Options selects how lines are rendered.
type Options struct {
	Colored  bool
	Filtered bool // a FilterSet was configured
	Colors   tags.ColorTable
}

// Format renders line for the category at idx (ok reports whether the line
// was categorized at all). The second return value is false when the line
// must not reach the sink:
//
//   - colored: only categorized lines are kept
//   - plain with a filter: only categorized lines are kept
//   - plain without a filter: every line is kept
func Format(line string, idx int, ok bool, opts Options) (string, bool) {
	switch {
	case opts.Colored:
		if !ok {
			return "", false
		}
		return Font(opts.Colors.Color(idx), line), true
	case opts.Filtered:
		if !ok {
			return "", false
		}
		return line, true
	default:
		return line, true
	}
}

// Font wraps line in the per-line color markup.
func Font(color, line string) string {
	var b strings.Builder
	b.Grow(len(line) + len(color) + 40)
	b.WriteString(`<font size="3" color="`)
	b.WriteString(color)
	b.WriteString(`">`)
	b.WriteString(line)
	b.WriteString(`</font></br>`)
	return b.String()
}

// Prologue opens a colored sink document.
func Prologue(background string) string {
	if strings.TrimSpace(background) == "" {
		background = DefaultBackground
	}
	return `<body bgcolor="` + background + `">`
}

// Epilogue closes a colored sink document.
func Epilogue() string {
	return "</body>"
}
