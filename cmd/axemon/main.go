package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/five82/axemon/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := pflag.NewFlagSet("axemon", pflag.ContinueOnError)
	configPath := flags.String("config", "", "config file path (default ~/.config/axemon/config.toml)")
	prefsPath := flags.String("prefs", "", "preferences file path (default ~/.config/axemon/prefs.toml)")
	device := flags.StringP("device", "d", "", "device address, host[:port] or URL")
	poll := flags.Duration("poll", 0, "telemetry poll interval (default 5s)")
	logFile := flags.String("log-file", "", "log file path")
	consoleFile := flags.String("console-file", "", "follow a serial console capture instead of the device websocket")
	debug := flags.Bool("debug", false, "enable debug logging")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		Device:     *device,
		PollEvery:  *poll,
		LogFile:    *logFile,
		Debug:      *debug,

		ConsoleFile: *consoleFile,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "axemon: %v\n", err)
		return 1
	}
	return 0
}
