package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status line: logo, connection state, device
// identity and sample time.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("axemon", styles.Logo)}

	switch {
	case m.telemetryErr != nil:
		maxErr := 80
		if compact {
			maxErr = 40
		}
		parts = append(parts,
			bg.Render("● OFFLINE", styles.DangerText),
			bg.Render(truncate(m.telemetryErr.Error(), maxErr), styles.DangerText),
			bg.Render("r", styles.AccentText)+bg.Sep(":")+bg.Render("Reconnect", styles.MutedText),
		)
	case !m.hasSnapshot:
		parts = append(parts, bg.Render("Connecting to "+m.device+"...", styles.WarningText.Bold(true)))
	default:
		info := m.snapshot.Info
		parts = append(parts, bg.Render("● ONLINE", styles.SuccessText))
		parts = append(parts, bg.Render(placeholder(info.Hostname), styles.Text.Bold(true)))
		if info.ASICModel != "" {
			parts = append(parts, bg.Render(info.ASICModel, styles.InfoText))
		}
		if !compact && info.Version != "" {
			parts = append(parts, bg.Render(info.Version, styles.FaintText))
		}
	}

	if !compact && m.device != "" {
		parts = append(parts, bg.Render(truncateMiddle(m.device, 40), styles.MutedText))
	}
	if m.hasSnapshot {
		parts = append(parts, bg.Render("updated "+m.snapshot.SampledAt.Format("15:04:05"), styles.MutedText))
	}
	if m.errorMsg != "" {
		parts = append(parts,
			bg.Render("!", styles.WarningText.Bold(true))+bg.Space()+
				bg.Render(m.errorMsg, styles.WarningText))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// renderCommandBar lists the keys that matter in the current state.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	if m.viewer != nil && m.viewer.Enabled() {
		followLabel := "Pause"
		if m.scroll.Suppressed() {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"l", "Hide logs"},
			{"Space", followLabel},
			{"j/k", "Scroll"},
			{"G", "Bottom"},
		}
	} else {
		commands = []cmd{{"l", "Show logs"}}
	}
	if m.telemetryErr != nil {
		commands = append(commands, cmd{"r", "Reconnect"})
	}
	commands = append(commands, cmd{"T", m.theme.Name}, cmd{"?", "Help"}, cmd{"q", "Quit"})

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands))
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width).
		Render(bg.Spaces(1) + strings.Join(segments, bg.Spaces(2)))
}

// renderTelemetry renders the normalized readings inside a titled box.
func (m Model) renderTelemetry() string {
	bg := NewBgStyle(m.theme.SurfaceAlt)
	styles := m.theme.Styles()
	title := "Telemetry"

	if !m.hasSnapshot {
		msg := "Waiting for first sample..."
		style := styles.MutedText
		if m.telemetryErr != nil {
			msg = "Telemetry stopped: " + m.telemetryErr.Error()
			style = styles.DangerText
		}
		return m.renderTitledBox(title, bg.Render(msg, style), m.width, telemetryBoxHeight, false)
	}

	s := m.snapshot
	info := s.Info
	sep := bg.Spaces(3)

	efficiency := "--"
	if e := s.Efficiency(); e > 0 {
		efficiency = formatFloat(e, 1, "J/TH")
	}

	rows := [][]string{
		{
			bg.Field("Hash rate", formatHashRate(info.HashRate), styles, styles.AccentText.Bold(true)),
			bg.Field("Efficiency", efficiency, styles, styles.Text),
			bg.Field("Best diff", placeholder(info.BestDiff), styles, styles.WarningText),
			bg.Field("Session", placeholder(info.BestSessionDiff), styles, styles.Text),
		},
		{
			bg.Field("Power", formatFloat(s.Power, 1, "W"), styles, styles.Text),
			bg.Field("Input", formatFloat(s.Voltage, 1, "V"), styles, styles.Text),
			bg.Field("Current", formatFloat(s.Current, 1, "A"), styles, styles.Text),
		},
		{
			bg.Field("ASIC", formatFloat(s.CoreVoltageActual, 2, "V"), styles, styles.Text) +
				bg.Space() + bg.Render("(set "+formatFloat(s.CoreVoltage, 2, "V")+")", styles.FaintText),
			bg.Field("Chip", formatFloat(info.Temp, 1, "°C"), styles, m.tempStyle(info.Temp, styles)),
			bg.Field("VR", formatFloat(info.VRTemp, 1, "°C"), styles, m.tempStyle(info.VRTemp, styles)),
			bg.Field("Freq", formatFloat(info.Frequency, 0, "MHz"), styles, styles.Text),
		},
		{
			bg.Field("Shares", fmt.Sprintf("%d", info.SharesAccepted), styles, styles.SuccessText) +
				bg.Space() + bg.Render(fmt.Sprintf("/ %d rejected", info.SharesRejected), styles.FaintText),
			bg.Field("Fan", fmt.Sprintf("%.0f%% (%.0f rpm)", info.FanSpeed, info.FanRPM), styles, styles.Text),
			bg.Field("Uptime", humanizeDuration(secondsToDuration(info.UptimeSeconds)), styles, styles.Text),
		},
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = bg.Spaces(1) + strings.Join(row, sep)
	}
	return m.renderTitledBox(title, strings.Join(lines, "\n"), m.width, telemetryBoxHeight, false)
}

// tempStyle flags chip temperatures the firmware treats as hot.
func (m Model) tempStyle(celsius float64, styles Styles) lipgloss.Style {
	switch {
	case celsius >= 70:
		return styles.DangerText
	case celsius >= 60:
		return styles.WarningText
	default:
		return styles.Text
	}
}
