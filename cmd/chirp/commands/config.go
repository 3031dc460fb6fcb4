// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/soniclink/chirp/protocol"
)

// FileConfig is the YAML configuration accepted by --config. Every
// field is optional; flags override file values.
type FileConfig struct {
	Protocol       string  `yaml:"protocol"`
	Volume         float64 `yaml:"volume"`
	BlockSize      int     `yaml:"block_size"`
	Streaming      bool    `yaml:"streaming"`
	StreamCooldown float64 `yaml:"stream_cooldown"` // seconds
	LogLevel       string  `yaml:"log_level"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks field ranges. Zero values mean "use the default" and
// always pass.
func (c *FileConfig) Validate() error {
	if c.Protocol != "" {
		switch c.Protocol {
		case protocol.NameStandard, protocol.NameUltrasonic:
		default:
			return fmt.Errorf("protocol must be %q or %q, got %q",
				protocol.NameStandard, protocol.NameUltrasonic, c.Protocol)
		}
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("volume must be between 0 and 1, got %v", c.Volume)
	}
	if c.BlockSize < 0 {
		return fmt.Errorf("block_size cannot be negative, got %d", c.BlockSize)
	}
	if c.StreamCooldown < 0 {
		return fmt.Errorf("stream_cooldown cannot be negative, got %v", c.StreamCooldown)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of [debug, info, warn, error], got %q", c.LogLevel)
	}
	return nil
}

// StreamCooldownDuration returns the cooldown as a time.Duration.
func (c *FileConfig) StreamCooldownDuration() time.Duration {
	return time.Duration(c.StreamCooldown * float64(time.Second))
}
