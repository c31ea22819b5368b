package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/logcollector/internal/prefs"
	"github.com/five82/logcollector/internal/state"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 20})
	return next.(Model)
}

func TestNew_Defaults(t *testing.T) {
	m := New(Options{})
	if m.theme.Name != "Dracula" {
		t.Fatalf("theme = %q, want Dracula", m.theme.Name)
	}
	if m.tailLines != defaultTailLines || !m.follow || m.prefsPath == "" {
		t.Fatalf("defaults not applied: tail=%d follow=%v prefs=%q", m.tailLines, m.follow, m.prefsPath)
	}
	if m.View() != "Loading..." {
		t.Fatalf("View before sizing = %q", m.View())
	}
}

func TestUpdate_TailFillsViewport(t *testing.T) {
	dir := t.TempDir()
	sink := filepath.Join(dir, "logcat.html")
	content := `<body bgcolor="#FFFFFFFF"><font size="3" color="#FF0000">E/x: boom</font></br>` + "\n" +
		`<font size="3" color="#00FF00">I/y: fine</font></br>` + "\n"
	if err := os.WriteFile(sink, []byte(content), 0o644); err != nil {
		t.Fatalf("write sink: %v", err)
	}

	m := sized(t, New(Options{SinkPath: sink, PrefsPath: filepath.Join(dir, "prefs.toml")}))
	msg := loadTailCmd(sink, 10)()
	next, _ := m.Update(msg)
	m = next.(Model)

	if len(m.lines) != 2 {
		t.Fatalf("lines = %+v, want 2", m.lines)
	}
	view := m.View()
	if !strings.Contains(view, "E/x: boom") || !strings.Contains(view, "I/y: fine") {
		t.Fatalf("view missing tail lines:\n%s", view)
	}
	if strings.Contains(view, "<font") {
		t.Fatalf("view still contains markup:\n%s", view)
	}
}

func TestLoadTailCmd_NoPath(t *testing.T) {
	msg := loadTailCmd("", 10)().(tailMsg)
	if msg.lines != nil || msg.err != nil {
		t.Fatalf("tailMsg = %+v, want empty", msg)
	}
}

func TestUpdate_CycleThemeSavesPrefs(t *testing.T) {
	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")
	m := sized(t, New(Options{PrefsPath: prefsPath, TailLines: 50}))

	next, _ := m.Update(runes("T"))
	m = next.(Model)
	if m.theme.Name != "Slate" {
		t.Fatalf("theme = %q, want Slate", m.theme.Name)
	}

	saved, err := prefs.Load(prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if saved.Theme != "Slate" || saved.TailLines != 50 {
		t.Fatalf("saved prefs = %+v, want Slate/50", saved)
	}
}

func TestUpdate_FollowToggleAndHelp(t *testing.T) {
	m := sized(t, New(Options{PrefsPath: "unused"}))

	next, _ := m.Update(runes("f"))
	m = next.(Model)
	if m.follow {
		t.Fatalf("follow should be off after f")
	}
	next, _ = m.Update(runes("G"))
	m = next.(Model)
	if !m.follow {
		t.Fatalf("G should resume following")
	}

	next, _ = m.Update(runes("?"))
	m = next.(Model)
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
	next, _ = m.Update(runes("x"))
	m = next.(Model)
	if m.showHelp {
		t.Fatalf("any key should close help")
	}
}

func TestUpdate_QuitKey(t *testing.T) {
	m := sized(t, New(Options{PrefsPath: "unused"}))
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatalf("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q did not quit")
	}
}

func TestUpdate_SnapshotSwitchesSinkPath(t *testing.T) {
	m := sized(t, New(Options{SinkPath: "/configured.txt", PrefsPath: "unused"}))
	store := &state.Store{}
	store.Update(&state.Status{State: "running", SinkPath: "/reported.html"}, nil)

	next, _ := m.Update(fetchSnapshotCmd(store)())
	m = next.(Model)
	if got := m.currentSinkPath(); got != "/reported.html" {
		t.Fatalf("currentSinkPath = %q, want reported path", got)
	}
}

func TestUpdate_TickQuitsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := sized(t, New(Options{Context: ctx, PrefsPath: "unused"}))
	_, cmd := m.Update(tickMsg{})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("tick after cancel did not quit")
	}
}
