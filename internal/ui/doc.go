// Package ui provides the axemon terminal dashboard.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model is the single owner of all view
// state; every asynchronous source reaches it as a message:
//
//   - telemetryMsg: the next update from a telemetry.Subscription
//   - logEventMsg: an event from the logview.Viewer stream subscription
//   - tea.KeyMsg / tea.WindowSizeMsg: user input and terminal resizes
//
// Each source is drained by a command that blocks on its channel and is
// re-issued after every message, so updates are applied one at a time in
// arrival order.
//
// # Layout
//
//   - Header: connection state, hostname, ASIC model, device URL, sample time
//   - Command bar: the keys that apply right now
//   - Telemetry panel: hash rate, efficiency, power, voltages, temperatures
//   - Log panel: the last 256 console lines colored by class, or a hint
//     while the panel is hidden
//
// # Log panel
//
// Lines are stored raw by logview and stripped of escapes only for display.
// updateLogViewport is the panel's render pass: it refreshes the viewport when
// the buffer changed and then lets logview.AutoScroll pin the viewport to the
// bottom. Scrolling up suspends auto-scroll; Space toggles it and G resumes
// it. Closing the panel stops the stream but keeps the history.
//
// # Key Bindings
//
//   - l: show or hide logs
//   - Space: toggle auto-scroll
//   - j/k, g/G, pgup/pgdown, ctrl+u/ctrl+d, left/right: scroll logs
//   - r: resubscribe after telemetry stopped with an error
//   - T: cycle theme (saved to prefs)
//   - h/?: help
//   - q/ctrl+c: quit
package ui
