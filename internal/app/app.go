package app

import (
	"context"
	"fmt"
	"time"

	"github.com/five82/axemon/internal/axeos"
	"github.com/five82/axemon/internal/config"
	"github.com/five82/axemon/internal/logging"
	"github.com/five82/axemon/internal/logtail"
	"github.com/five82/axemon/internal/logview"
	"github.com/five82/axemon/internal/prefs"
	"github.com/five82/axemon/internal/telemetry"
	"github.com/five82/axemon/internal/ui"
)

// Options configure the axemon application. Zero values defer to the config
// file.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/axemon/prefs.toml
	Device     string
	PollEvery  time.Duration
	LogFile    string
	Debug      bool

	// ConsoleFile, when set, feeds the log panel from a serial console
	// capture instead of the device websocket.
	ConsoleFile string
}

// Run boots the axemon TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = applyOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(logging.Options{Path: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Close()
	log := logger.With().Str("device", cfg.Device).Logger()

	client, err := axeos.NewClient(cfg.Device, log)
	if err != nil {
		return fmt.Errorf("init device client: %w", err)
	}

	userPrefs := prefs.Load(opts.PrefsPath)
	sampler := telemetry.NewSampler(client, cfg.PollInterval, log)
	viewer := logview.NewViewer(logSource(client, opts.ConsoleFile), log)

	log.Info().
		Str("config", cfg.Path).
		Dur("poll", sampler.Interval()).
		Bool("show_logs", userPrefs.ShowLogs).
		Str("console_file", opts.ConsoleFile).
		Msg("starting")

	err = ui.Run(ui.Options{
		Context:   ctx,
		Sampler:   sampler,
		Viewer:    viewer,
		Device:    client.BaseURL(),
		ThemeName: userPrefs.Theme,
		ShowLogs:  userPrefs.ShowLogs,
		PrefsPath: opts.PrefsPath,
		Log:       log,
	})
	if err != nil {
		log.Error().Err(err).Msg("ui exited")
		return err
	}
	log.Info().Msg("stopped")
	return nil
}

// applyOverrides layers command-line options over the loaded config.
func applyOverrides(cfg config.Config, opts Options) config.Config {
	if opts.Device != "" {
		cfg.Device = opts.Device
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = opts.PollEvery
	}
	if opts.LogFile != "" {
		cfg.LogFile = opts.LogFile
	}
	if opts.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg
}

// logSource picks where console lines come from.
func logSource(client *axeos.Client, consoleFile string) logview.Source {
	if consoleFile != "" {
		return logtail.File{Path: consoleFile}
	}
	return client
}
