package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds axemon's runtime settings.
type Config struct {
	Device       string
	PollInterval time.Duration
	LogFile      string
	LogLevel     string

	// Path is the config file that was consulted, whether or not it existed.
	Path string
}

const (
	defaultConfigPath   = "~/.config/axemon/config.toml"
	defaultDevice       = "192.168.4.1"
	defaultPollInterval = 5 * time.Second
	defaultLogFile      = "~/.local/state/axemon/axemon.log"
	defaultLogLevel     = "info"

	envPrefix = "AXEMON"
)

// Load reads the TOML config at path (or the default location) and overlays
// AXEMON_* environment variables. A missing file yields defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("device", defaultDevice)
	v.SetDefault("poll_interval", defaultPollInterval.String())
	v.SetDefault("log_file", defaultLogFile)
	v.SetDefault("log_level", defaultLogLevel)

	if _, err := os.Stat(resolved); err == nil {
		v.SetConfigFile(resolved)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	interval, err := parseInterval(v.GetString("poll_interval"))
	if err != nil {
		return Config{}, fmt.Errorf("poll_interval: %w", err)
	}

	cfg := Config{
		Device:       strings.TrimSpace(v.GetString("device")),
		PollInterval: interval,
		LogFile:      strings.TrimSpace(v.GetString("log_file")),
		LogLevel:     strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		Path:         resolved,
	}
	if cfg.Device == "" {
		cfg.Device = defaultDevice
	}
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile
	}
	cfg.LogFile = mustExpand(cfg.LogFile)
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	return cfg, nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Device) == "" {
		return errors.New("device is empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	return nil
}

// parseInterval accepts Go durations ("5s", "1m30s") or bare seconds ("5").
func parseInterval(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultPollInterval, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		d := time.Duration(secs * float64(time.Second))
		if d <= 0 {
			return 0, fmt.Errorf("must be positive, got %q", raw)
		}
		return d, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %q", raw)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
