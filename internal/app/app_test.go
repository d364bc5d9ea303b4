package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/axemon/internal/axeos"
	"github.com/five82/axemon/internal/config"
	"github.com/five82/axemon/internal/logtail"
)

func TestApplyOverrides(t *testing.T) {
	base := config.Config{
		Device:       "192.168.4.1",
		PollInterval: 5 * time.Second,
		LogFile:      "/var/log/axemon.log",
		LogLevel:     "info",
	}

	tests := []struct {
		name string
		opts Options
		want config.Config
	}{
		{"no overrides", Options{}, base},
		{
			"device",
			Options{Device: "bitaxe.local"},
			config.Config{Device: "bitaxe.local", PollInterval: 5 * time.Second, LogFile: "/var/log/axemon.log", LogLevel: "info"},
		},
		{
			"poll",
			Options{PollEvery: 2 * time.Second},
			config.Config{Device: "192.168.4.1", PollInterval: 2 * time.Second, LogFile: "/var/log/axemon.log", LogLevel: "info"},
		},
		{
			"negative poll ignored",
			Options{PollEvery: -time.Second},
			base,
		},
		{
			"debug and log file",
			Options{Debug: true, LogFile: "/tmp/a.log"},
			config.Config{Device: "192.168.4.1", PollInterval: 5 * time.Second, LogFile: "/tmp/a.log", LogLevel: "debug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyOverrides(base, tt.opts)
			if got != tt.want {
				t.Errorf("applyOverrides(%+v) = %+v, want %+v", tt.opts, got, tt.want)
			}
		})
	}
}

func TestRun_RejectsBadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("poll_interval = \"soon\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	err := Run(context.Background(), Options{ConfigPath: path})
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("Run error = %v, want load config failure", err)
	}
}

func TestRun_RejectsBadDevice(t *testing.T) {
	dir := t.TempDir()
	err := Run(context.Background(), Options{
		ConfigPath: filepath.Join(dir, "missing.toml"),
		Device:     "http://",
		LogFile:    filepath.Join(dir, "axemon.log"),
	})
	if err == nil || !strings.Contains(err.Error(), "init device client") {
		t.Fatalf("Run error = %v, want device client failure", err)
	}
}

func TestLogSource(t *testing.T) {
	client, err := axeos.NewClient("10.0.0.9", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if src, ok := logSource(client, "").(*axeos.Client); !ok || src != client {
		t.Fatalf("logSource without file = %T, want the device client", logSource(client, ""))
	}
	src, ok := logSource(client, "/tmp/console.log").(logtail.File)
	if !ok || src.Path != "/tmp/console.log" {
		t.Fatalf("logSource with file = %#v, want logtail.File", logSource(client, "/tmp/console.log"))
	}
}
