// Package logview turns the device's console stream into a bounded, colored
// history.
//
// Each raw line is classified by the color of its last SGR escape
// (31..37 map to ansi-red..ansi-white) and stored verbatim in a 256-entry
// FIFO ring. Viewer switches the stream subscription on and off without
// losing history, and AutoScroll keeps the rendered panel pinned to the
// newest line until the user scrolls away.
package logview
