// SPDX-License-Identifier: EPL-2.0

// Package commands implements the chirp CLI.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	chirp "github.com/soniclink/chirp"
)

var (
	flagConfig   string
	flagProtocol string
	flagVolume   float64
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "chirp",
	Short: "Send and receive data over sound",
	Long: `chirp encodes short identifiers as audible (or ultrasonic) tone
sequences, plays them through the speaker, and decodes them from the
microphone or from audio recordings.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "path to a YAML configuration file")
	pf.StringVarP(&flagProtocol, "protocol", "p", "", "protocol to use (standard or ultrasonic)")
	pf.Float64Var(&flagVolume, "volume", -1, "output gain between 0 and 1")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// resolveConfig merges the config file (if any) with command line
// flags; flags win.
func resolveConfig() (*FileConfig, error) {
	cfg := &FileConfig{}
	if flagConfig != "" {
		loaded, err := LoadConfig(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if flagProtocol != "" {
		cfg.Protocol = flagProtocol
	}
	if flagVolume >= 0 {
		cfg.Volume = flagVolume
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, cfg.Validate()
}

// newSession builds a session from the resolved configuration.
func newSession() (*chirp.Session, *FileConfig, error) {
	cfg, err := resolveConfig()
	if err != nil {
		return nil, nil, err
	}

	sess, err := chirp.NewSession(chirp.Config{
		Protocol:       cfg.Protocol,
		Streaming:      cfg.Streaming,
		StreamCooldown: cfg.StreamCooldownDuration(),
		Volume:         cfg.Volume,
		BlockSize:      cfg.BlockSize,
	})
	if err != nil {
		return nil, nil, err
	}
	return sess, cfg, nil
}

// newLogger builds a text logger at the configured level.
func newLogger(cfg *FileConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the chirp version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(chirp.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
