// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
protocol: ultrasonic
volume: 0.5
block_size: 512
streaming: true
stream_cooldown: 2.5
log_level: debug
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Protocol != "ultrasonic" {
		t.Errorf("Protocol = %q, want %q", cfg.Protocol, "ultrasonic")
	}
	if cfg.Volume != 0.5 {
		t.Errorf("Volume = %v, want 0.5", cfg.Volume)
	}
	if cfg.BlockSize != 512 {
		t.Errorf("BlockSize = %d, want 512", cfg.BlockSize)
	}
	if !cfg.Streaming {
		t.Error("Streaming = false, want true")
	}
	if got, want := cfg.StreamCooldownDuration(), 2500*time.Millisecond; got != want {
		t.Errorf("StreamCooldownDuration() = %v, want %v", got, want)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestLoadConfig_Empty(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on zero config error = %v", err)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"unknown protocol", "protocol: shortwave"},
		{"volume too high", "volume: 1.5"},
		{"negative volume", "volume: -0.1"},
		{"negative block size", "block_size: -1"},
		{"negative cooldown", "stream_cooldown: -2"},
		{"bad log level", "log_level: loud"},
		{"malformed yaml", "protocol: [oops"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Errorf("LoadConfig() error = nil, want error")
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadConfig() error = nil for missing file")
	}
}
