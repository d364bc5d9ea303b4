// Package logtail follows a console capture file as a log source.
//
// A Bitaxe plugged in over USB prints the same colored console the firmware
// streams over its websocket. Piping that serial output to a file
// (for example "idf.py monitor | tee console.log") and pointing axemon at it
// with --console-file feeds the log panel without network access to the
// device.
//
// File.Stream first replays the end of the file, keeping at most Backlog
// lines in a ring so large captures are read in one pass with bounded
// memory, then polls for appended lines. Escape sequences are passed through
// untouched; classification happens in logview.
//
//	src := logtail.File{Path: "console.log"}
//	viewer := logview.NewViewer(src, log)
package logtail
