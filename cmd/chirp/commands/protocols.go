// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/soniclink/chirp/protocol"
)

var protocolsCmd = &cobra.Command{
	Use:   "protocols",
	Short: "List the built-in protocols",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := protocol.NewRegistry()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tALPHABET\tPAYLOAD\tBAND\tSYMBOL")
		for _, name := range reg.Names() {
			p, _ := reg.Get(name)
			fmt.Fprintf(w, "%s\t%d symbols\t%d+%d\t%.0f-%.0f Hz\t%v\n",
				p.Name, p.AlphabetSize(),
				p.PayloadSymbols, p.ChecksumSymbols,
				p.MinFrequency(), p.MaxFrequency(),
				p.SymbolDuration().Round(time.Millisecond))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(protocolsCmd)
}
