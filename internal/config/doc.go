// Package config loads axemon's settings.
//
// # Resolution
//
// Load reads a TOML file and overlays environment variables:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/axemon/config.toml
//  3. A missing file is not an error; defaults apply
//  4. AXEMON_DEVICE, AXEMON_POLL_INTERVAL, AXEMON_LOG_FILE and
//     AXEMON_LOG_LEVEL override file values
//
// Command-line flags are applied on top by the caller.
//
// # Example
//
//	device = "192.168.4.1"
//	poll_interval = "5s"
//	log_file = "~/.local/state/axemon/axemon.log"
//	log_level = "info"
//
// poll_interval also accepts a bare number of seconds. Tilde expansion is
// performed on the config and log file paths.
package config
