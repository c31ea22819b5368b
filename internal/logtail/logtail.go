package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Line is one sink line with its markup removed.
type Line struct {
	Text  string
	Color string // empty for plain sinks
}

var (
	fontPattern = regexp.MustCompile(`^<font size="3" color="([^"]*)">(.*)</font></br>$`)
	bodyPattern = regexp.MustCompile(`^<body bgcolor="[^"]*">`)
)

// Unwrap strips the colored-sink markup from a line. Plain lines pass
// through unchanged.
func Unwrap(raw string) Line {
	raw = bodyPattern.ReplaceAllString(raw, "")
	raw = strings.TrimSuffix(raw, "</body>")
	if m := fontPattern.FindStringSubmatch(raw); m != nil {
		return Line{Text: m[2], Color: m[1]}
	}
	return Line{Text: raw}
}

// UnwrapLines applies Unwrap to every line, dropping lines that held only
// document markup.
func UnwrapLines(raw []string) []Line {
	out := make([]Line, 0, len(raw))
	for _, r := range raw {
		line := Unwrap(r)
		if line.Text == "" && line.Color == "" && r != "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
