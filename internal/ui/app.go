package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/axemon/internal/logview"
	"github.com/five82/axemon/internal/prefs"
	"github.com/five82/axemon/internal/telemetry"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Sampler   *telemetry.Sampler
	Viewer    *logview.Viewer
	Device    string // shown in the header
	ThemeName string
	ShowLogs  bool
	PrefsPath string
	Log       zerolog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	sampler   *telemetry.Sampler
	viewer    *logview.Viewer
	device    string
	prefsPath string
	log       zerolog.Logger
	keys      keyMap

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	errorMsg string

	// Telemetry state
	sub          *telemetry.Subscription
	snapshot     telemetry.Snapshot
	hasSnapshot  bool
	telemetryErr error

	// Log state
	logViewport     viewport.Model
	scroll          logview.AutoScroll
	renderedVersion uint64
	logRendered     bool
}

// New creates a new Bubble Tea model. When opts.ShowLogs is set the log
// stream is opened right away.
func New(opts Options) Model {
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Defaults().Theme
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		sampler:   opts.Sampler,
		viewer:    opts.Viewer,
		device:    opts.Device,
		prefsPath: prefsPath,
		log:       opts.Log.With().Str("component", "ui").Logger(),
		keys:      DefaultKeyMap(),
		theme:     GetTheme(themeName),
	}
	if opts.ShowLogs && m.viewer != nil {
		m.viewer.Enable()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen}
	if m.sampler != nil {
		cmds = append(cmds, subscribeCmd(m.sampler))
	}
	if m.viewer != nil {
		cmds = append(cmds, waitLogEvent(m.viewer))
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
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case telemetrySubscribedMsg:
		if m.sub != nil {
			m.sub.Close()
		}
		m.sub = msg.sub
		m.telemetryErr = nil
		return m, waitTelemetry(msg.sub)

	case telemetryMsg:
		if msg.sub != m.sub {
			return m, nil
		}
		if msg.update.Err != nil {
			m.log.Warn().Err(msg.update.Err).Msg("telemetry stopped")
			m.telemetryErr = msg.update.Err
			m.hasSnapshot = false
			m.sub = nil
			return m, nil
		}
		m.snapshot = msg.update.Snapshot
		m.hasSnapshot = true
		return m, waitTelemetry(msg.sub)

	case telemetryClosedMsg:
		if msg.sub == m.sub {
			m.sub = nil
		}
		return m, nil

	case logEventMsg:
		if m.viewer.Handle(logview.Event(msg)) {
			m.updateLogViewport()
		}
		return m, waitLogEvent(m.viewer)
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
	return m.renderMain()
}

// handleKey processes keyboard input.
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
		m.logRendered = false
		m.updateLogViewport()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		if m.viewer == nil {
			return m, nil
		}
		if m.viewer.Toggle() == logview.Enabled {
			m.scroll.Resume()
		}
		m.updateLogViewport()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Reconnect):
		if m.sub != nil || m.sampler == nil {
			return m, nil
		}
		m.telemetryErr = nil
		return m, subscribeCmd(m.sampler)
	}

	if m.viewer != nil && m.viewer.Enabled() {
		m.handleLogsKey(msg)
	}
	return m, nil
}

func (m *Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name}
	if m.viewer != nil {
		p.ShowLogs = m.viewer.Enabled()
	}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn().Err(err).Msg("save prefs")
		m.errorMsg = "prefs not saved"
		return
	}
	m.errorMsg = ""
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderTelemetry())
	b.WriteString("\n")

	if m.viewer != nil && m.viewer.Enabled() {
		b.WriteString(m.renderLogs())
	} else {
		b.WriteString(m.renderLogsHint())
	}
	return b.String()
}

// shutdown releases the telemetry subscription and the log stream.
func (m Model) shutdown() {
	if m.sub != nil {
		m.sub.Close()
	}
	if m.viewer != nil {
		m.viewer.Close()
	}
}

// Messages

type telemetrySubscribedMsg struct {
	sub *telemetry.Subscription
}

type telemetryMsg struct {
	sub    *telemetry.Subscription
	update telemetry.Update
}

type telemetryClosedMsg struct {
	sub *telemetry.Subscription
}

type logEventMsg logview.Event

// Commands

func subscribeCmd(s *telemetry.Sampler) tea.Cmd {
	return func() tea.Msg {
		return telemetrySubscribedMsg{sub: s.Subscribe()}
	}
}

func waitTelemetry(sub *telemetry.Subscription) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-sub.C()
		if !ok {
			return telemetryClosedMsg{sub: sub}
		}
		return telemetryMsg{sub: sub, update: u}
	}
}

func waitLogEvent(v *logview.Viewer) tea.Cmd {
	return func() tea.Msg {
		return logEventMsg(<-v.Events())
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.shutdown()
	} else {
		m.shutdown()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
