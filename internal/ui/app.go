package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/logcollector/internal/logtail"
	"github.com/five82/logcollector/internal/prefs"
	"github.com/five82/logcollector/internal/state"
)

const (
	headerHeight     = 2
	commandBarHeight = 1
	defaultTailLines = 400
)

// Options configures the monitor.
type Options struct {
	Context   context.Context
	Store     *state.Store
	SinkPath  string // used until the collector reports its own
	PollTick  time.Duration
	ThemeName string
	TailLines int
	PrefsPath string
}

// Model is the Bubble Tea model of the monitor.
type Model struct {
	ctx       context.Context
	store     *state.Store
	sinkPath  string
	prefsPath string
	pollTick  time.Duration
	tailLines int

	keys     keyMap
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	follow   bool

	snapshot    state.Snapshot
	lastUpdated time.Time

	lines    []logtail.Line
	tailErr  error
	viewport viewport.Model
}

// New creates the monitor model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	tailLines := opts.TailLines
	if tailLines <= 0 {
		tailLines = defaultTailLines
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return Model{
		ctx:       ctx,
		store:     opts.Store,
		sinkPath:  opts.SinkPath,
		prefsPath: prefsPath,
		pollTick:  pollTick,
		tailLines: tailLines,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.ThemeName),
		follow:    true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.pollTick),
		loadTailCmd(m.currentSinkPath(), m.tailLines),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		bodyHeight := max(m.height-headerHeight-commandBarHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(m.width, bodyHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = bodyHeight
		}
		m.refreshViewport()
		return m, nil

	case tickMsg:
		if m.ctx.Err() != nil {
			return m, tea.Quit
		}
		cmds := []tea.Cmd{
			tickCmd(m.pollTick),
			loadTailCmd(m.currentSinkPath(), m.tailLines),
		}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		return m, nil

	case tailMsg:
		m.lines = msg.lines
		m.tailErr = msg.err
		m.refreshViewport()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderHeader() + "\n" + m.viewport.View() + "\n" + m.renderCommandBar()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, TailLines: m.tailLines})
		}
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.ToggleFollow):
		m.follow = !m.follow
		if m.follow {
			m.viewport.GotoBottom()
		}
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		return m, loadTailCmd(m.currentSinkPath(), m.tailLines)

	case key.Matches(msg, m.keys.Top):
		m.follow = false
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.follow = true
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.follow = false
		m.viewport.ScrollUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.ScrollDown(1)
		m.follow = m.viewport.AtBottom()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.follow = false
		m.viewport.HalfPageUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfPageDown()
		m.follow = m.viewport.AtBottom()
		return m, nil
	}
	return m, nil
}

// currentSinkPath prefers the path reported by the collector.
func (m Model) currentSinkPath() string {
	if m.snapshot.HasStatus && m.snapshot.Status.SinkPath != "" {
		return m.snapshot.Status.SinkPath
	}
	return m.sinkPath
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type tailMsg struct {
	lines []logtail.Line
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func loadTailCmd(path string, maxLines int) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return tailMsg{}
		}
		raw, err := logtail.Read(path, maxLines)
		return tailMsg{lines: logtail.UnwrapLines(raw), err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if err != nil && m.ctx.Err() != nil {
		return nil
	}
	return err
}
