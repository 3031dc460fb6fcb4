// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	chirp "github.com/soniclink/chirp"
	"github.com/soniclink/chirp/protocol"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <file>...",
	Short: "Scan audio recordings for chirps",
	Long: `Decode chirps from recordings on disk. WAV, MP3, Ogg Vorbis and AIFF
are supported; the format is picked from the file extension.

Example:
  chirp decode meeting.wav
  chirp decode --protocol ultrasonic *.mp3`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		name := cfg.Protocol
		if name == "" {
			name = protocol.NameStandard
		}
		p, ok := protocol.NewRegistry().Get(name)
		if !ok {
			return fmt.Errorf("%w: %q", protocol.ErrUnknownProtocol, name)
		}

		for _, path := range args {
			heard, err := chirp.DecodeFile(path, p)
			if err != nil {
				return err
			}
			if len(heard) == 0 {
				fmt.Printf("%s: no chirps\n", path)
				continue
			}
			for _, c := range heard {
				fmt.Printf("%s: %s\tconfidence %.2f\n", path, c.Identifier, c.Confidence)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
