package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// renderHeader renders the two status lines above the log view.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var first string
	if !m.snapshot.HasStatus {
		first = m.renderConnecting(styles, bg)
	} else {
		first = m.buildStatusContent(styles, bg)
	}

	return styles.Header.Width(m.width).Render(first) + "\n" +
		styles.Header.Width(m.width).Render(m.buildSinkLine(styles, bg))
}

// renderConnecting shows the connecting or error state.
func (m Model) renderConnecting(styles Styles, bg BgStyle) string {
	sep := bg.Spaces(2)

	if m.snapshot.LastError != nil {
		last := "soon"
		if !m.lastUpdated.IsZero() {
			last = m.lastUpdated.Format("15:04:05")
		}
		return bg.Join([]string{
			bg.Render("logcollector", styles.Logo),
			bg.Render("COLLECTOR "+classifyConnectionError(m.snapshot.LastError), styles.DangerText.Bold(true)),
			bg.Render("Retrying...", styles.WarningText.Bold(true)),
			bg.Render(last, styles.MutedText),
		}, "  ")
	}

	return bg.Render("logcollector", styles.Logo) + sep +
		bg.Render("Connecting to collector...", styles.WarningText.Bold(true))
}

// buildStatusContent renders state and counters.
func (m Model) buildStatusContent(styles Styles, bg BgStyle) string {
	st := m.snapshot.Status
	compact := m.width < 100

	stateName := st.State
	if m.snapshot.IsOffline() {
		stateName = "offline"
	}

	parts := []string{
		bg.Render("logcollector", styles.Logo),
		styles.StateStyle(stateName).Render(strings.ToUpper(stateName)),
		counter(bg, styles, "Read", humanize.Comma(int64(st.LinesRead))),
		counter(bg, styles, "Written", humanize.Comma(int64(st.LinesWritten))),
	}
	if st.LinesDropped > 0 {
		parts = append(parts, counter(bg, styles, "Dropped", humanize.Comma(int64(st.LinesDropped))))
	}
	parts = append(parts, counter(bg, styles, "Sink", humanize.Bytes(uint64(max(st.BytesWritten, 0)))))

	if !compact {
		if cats := formatCategories(st.Categories); cats != "" {
			parts = append(parts, bg.Render(cats, styles.FaintText))
		}
		if st.ClearFailures > 0 {
			parts = append(parts, bg.Render(fmt.Sprintf("clear failures %d", st.ClearFailures), styles.WarningText))
		}
		if !st.StartedAt.IsZero() {
			parts = append(parts, counter(bg, styles, "Up", humanize.RelTime(st.StartedAt, time.Now(), "", "")))
		}
	}

	if st.LastError != "" {
		limit := 60
		if compact {
			limit = 30
		}
		parts = append(parts, bg.Render(truncate(st.LastError, limit), styles.DangerText))
	}

	return bg.Join(parts, "  ")
}

// buildSinkLine shows which file is tailed and whether the view follows it.
func (m Model) buildSinkLine(styles Styles, bg BgStyle) string {
	path := m.currentSinkPath()
	if path == "" {
		path = "(no sink)"
	}
	parts := []string{
		bg.Render("sink", styles.FaintText) + bg.Space() + bg.Render(truncateMiddle(path, 60), styles.MutedText),
	}
	if m.follow {
		parts = append(parts, bg.Render("FOLLOW", styles.SuccessText))
	} else {
		parts = append(parts, bg.Render("PAUSED", styles.WarningText))
	}
	if m.tailErr != nil {
		parts = append(parts, bg.Render(truncate(m.tailErr.Error(), 50), styles.DangerText))
	}
	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts, bg.Render("updated "+humanize.Time(m.snapshot.LastUpdated), styles.FaintText))
	}
	return bg.Join(parts, "  ")
}

func counter(bg BgStyle, styles Styles, label, value string) string {
	return bg.Render(label+":", styles.MutedText) + bg.Space() + bg.Render(value, styles.Text)
}

// formatCategories renders per-category counts in name order.
func formatCategories(counts map[string]uint64) string {
	if len(counts) == 0 {
		return ""
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, humanize.Comma(int64(counts[name]))))
	}
	return strings.Join(parts, " ")
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	colon := bg.Sep(":")

	followLabel := "Pause"
	if !m.follow {
		followLabel = "Follow"
	}
	commands := []struct{ key, desc string }{
		{"f", followLabel},
		{"j/k", "Scroll"},
		{"g/G", "Top/Bottom"},
		{"r", "Reload"},
		{"?", "Help"},
		{"q", "Quit"},
	}

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(bg.Join(segments, "  "))
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// truncateMiddle keeps both ends of s, favoring the end (the file name).
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 5 {
		return s[:max]
	}
	endLen := (max - 3) * 2 / 3
	startLen := max - 3 - endLen
	return s[:startLen] + "..." + s[len(s)-endLen:]
}
