package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/five82/axemon/internal/logview"
)

// viewportSurface lets the auto-scroll controller drive the log viewport.
type viewportSurface struct {
	vp *viewport.Model
}

func (s viewportSurface) ScrollHeight() int {
	return s.vp.TotalLineCount()
}

// ScrollTo moves the viewport. Terminal scrolling has no animation, so both
// behaviors jump; the viewport clamps Top to its last page.
func (s viewportSurface) ScrollTo(o logview.ScrollOptions) {
	s.vp.SetXOffset(o.Left)
	s.vp.SetYOffset(o.Top)
}

// logSurface returns the mounted log surface, or nil while the panel is
// hidden or not yet sized.
func (m *Model) logSurface() logview.Surface {
	if !m.ready || m.viewer == nil || !m.viewer.Enabled() || m.logViewport.Height <= 0 {
		return nil
	}
	return viewportSurface{vp: &m.logViewport}
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-2, 0), max(m.logBoxHeight()-2, 0))
	m.logViewport.SetHorizontalStep(8)
}

// updateLogViewport refreshes the viewport content when the buffer changed
// and then runs the auto-scroll pass. It is the log panel's render pass.
func (m *Model) updateLogViewport() {
	if !m.ready || m.viewer == nil {
		return
	}
	m.logViewport.Width = max(m.width-2, 0)
	m.logViewport.Height = max(m.logBoxHeight()-2, 0)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	if v := m.viewer.Version(); v != m.renderedVersion || !m.logRendered {
		m.logViewport.SetContent(m.renderLogContent())
		m.renderedVersion = v
		m.logRendered = true
	}

	m.scroll.AfterRender(m.logSurface())
}

// renderLogContent renders the buffered entries, one colored line each.
func (m *Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	entries := m.viewer.Entries()

	if len(entries) == 0 {
		return bg.Render("Waiting for log lines...", styles.MutedText)
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderEntry(e, bg))
	}
	return b.String()
}

// renderEntry strips the escapes for display and colors the line by class.
// The stored entry keeps the raw text.
func (m *Model) renderEntry(e logview.Entry, bg BgStyle) string {
	text := displayText(e.Text)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ClassColor(e.Class)))
	return bg.Render(text, style)
}

// displayText removes escape sequences and line terminators. Bare SGR
// fragments without an introducer are left alone.
func displayText(raw string) string {
	text := ansi.Strip(raw)
	text = strings.TrimRight(text, "\r\n")
	text = strings.ReplaceAll(text, "\r", "")
	return strings.ReplaceAll(text, "\t", "    ")
}

// renderLogs renders the log panel and its status line.
func (m Model) renderLogs() string {
	title := fmt.Sprintf("Device Log (%d/%d)", m.viewer.Len(), logview.Capacity)
	box := m.renderTitledBox(title, m.logViewport.View(), m.width, m.logBoxHeight(), true)
	return box + "\n" + m.renderLogStatus()
}

// renderLogStatus renders the line below the log panel.
func (m Model) renderLogStatus() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Background)

	var parts []string
	switch {
	case m.viewer.Err() != nil:
		parts = append(parts, bg.Render("stream ended: "+truncate(m.viewer.Err().Error(), 60), styles.DangerText))
	case m.viewer.Streaming():
		parts = append(parts, bg.Render("● streaming", styles.SuccessText))
	default:
		parts = append(parts, bg.Render("stream closed", styles.MutedText))
	}

	autoScroll := "on"
	if m.scroll.Suppressed() {
		autoScroll = "off"
	}
	parts = append(parts, bg.Render(fmt.Sprintf("%d lines auto-scroll %s", m.viewer.Len(), autoScroll), styles.FaintText))

	sep := bg.Space() + bg.Render("•", styles.FaintText) + bg.Space()
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Background)).
		Width(m.width).
		Render(bg.Space() + strings.Join(parts, sep))
}

// renderLogsHint fills the space the log panel would take when it is hidden.
func (m Model) renderLogsHint() string {
	styles := m.theme.Styles()
	hint := styles.MutedText.Render("Logs hidden. Press ") +
		styles.AccentText.Render("l") +
		styles.MutedText.Render(" to stream the device console.")
	return lipgloss.Place(m.width, m.logBoxHeight()+1, lipgloss.Center, lipgloss.Center, hint)
}

// handleLogsKey processes scrolling keys while the log panel is open and
// reports whether the key was consumed. Any manual movement away from the
// bottom suspends auto-scroll.
func (m *Model) handleLogsKey(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.scroll.Toggle()

	case key.Matches(msg, m.keys.Bottom):
		m.scroll.Resume()

	case key.Matches(msg, m.keys.Top):
		m.scroll.Suppress()
		m.logViewport.GotoTop()

	case key.Matches(msg, m.keys.Up):
		m.scroll.Suppress()
		m.logViewport.ScrollUp(1)

	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.resumeAtBottom()

	case key.Matches(msg, m.keys.PageUp):
		m.scroll.Suppress()
		m.logViewport.PageUp()

	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()
		m.resumeAtBottom()

	case key.Matches(msg, m.keys.HalfPageUp):
		m.scroll.Suppress()
		m.logViewport.HalfPageUp()

	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		m.resumeAtBottom()

	case key.Matches(msg, m.keys.Left):
		m.scroll.Suppress()
		m.logViewport.ScrollLeft(8)

	case key.Matches(msg, m.keys.Right):
		m.scroll.Suppress()
		m.logViewport.ScrollRight(8)

	default:
		return false
	}

	m.updateLogViewport()
	return true
}

// resumeAtBottom re-arms auto-scroll once the user scrolls back down to the
// newest line.
func (m *Model) resumeAtBottom() {
	if m.logViewport.AtBottom() {
		m.scroll.Resume()
	}
}
