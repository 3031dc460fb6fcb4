// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soniclink/chirp/protocol"
)

var flagGenCount int

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate random identifiers",
	Long: `Print random identifiers valid under the selected protocol, one per
line.

Example:
  chirp gen
  chirp gen -n 5 --protocol ultrasonic`,
	Args: cobra.NoArgs,
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

		for i := 0; i < flagGenCount; i++ {
			fmt.Println(protocol.RandomIdentifier(p))
		}
		return nil
	},
}

func init() {
	genCmd.Flags().IntVarP(&flagGenCount, "count", "n", 1, "number of identifiers to generate")
	rootCmd.AddCommand(genCmd)
}
