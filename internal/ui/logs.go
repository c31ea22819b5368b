package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/logcollector/internal/logtail"
)

// refreshViewport re-renders the tail into the viewport, keeping the view
// pinned to the end while following.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderLines())
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m Model) renderLines() string {
	styles := m.theme.Styles()
	if len(m.lines) == 0 {
		return styles.FaintText.Render("waiting for log lines...")
	}

	var b strings.Builder
	for i, line := range m.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.renderLine(line, styles))
	}
	return b.String()
}

func (m Model) renderLine(line logtail.Line, styles Styles) string {
	color := terminalColor(line.Color)
	if color == "" {
		return styles.Text.Render(line.Text)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(line.Text)
}

// terminalColor converts a sink color to a #RRGGBB terminal color. Sink
// colors may carry an alpha byte (#AARRGGBB) which terminals cannot show.
// Opaque black, the fallback color, would vanish on a dark theme and is
// drawn as plain text instead.
func terminalColor(c string) string {
	c = strings.TrimSpace(c)
	if !strings.HasPrefix(c, "#") {
		return ""
	}
	hex := c[1:]
	switch len(hex) {
	case 8:
		hex = hex[2:]
	case 6:
	default:
		return ""
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return ""
		}
	}
	if hex == "000000" {
		return ""
	}
	return "#" + strings.ToUpper(hex)
}
