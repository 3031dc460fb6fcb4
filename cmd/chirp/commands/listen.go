// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	chirp "github.com/soniclink/chirp"
)

var (
	flagListenTimeout   time.Duration
	flagListenStreaming bool
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Listen for chirps on the default microphone",
	Long: `Open the microphone and print every chirp heard, one per line, until
interrupted. With --timeout listening stops after the given duration.

Example:
  chirp listen
  chirp listen --protocol ultrasonic --timeout 30s
  chirp listen --streaming`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cfg, err := newSession()
		if err != nil {
			return err
		}
		defer sess.Stop()
		log := newLogger(cfg)

		if flagListenStreaming {
			sess.SetStreamingMode(true)
		}

		err = sess.SetChirpHeardFunc(func(c chirp.Chirp) {
			fmt.Printf("%s\t%s\tconfidence %.2f\n",
				c.ReceivedAt.Format(time.RFC3339), c.Identifier, c.Confidence)
		})
		if err != nil {
			return err
		}
		log.Info("listening", "protocol", sess.ProtocolName(),
			"sample_rate", sess.SampleRate(), "streaming", sess.StreamingMode())

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		if flagListenTimeout > 0 {
			select {
			case <-stop:
			case <-time.After(flagListenTimeout):
			}
		} else {
			<-stop
		}
		log.Info("stopping")
		return nil
	},
}

func init() {
	listenCmd.Flags().DurationVar(&flagListenTimeout, "timeout", 0, "stop after this duration (0 means run until interrupted)")
	listenCmd.Flags().BoolVar(&flagListenStreaming, "streaming", false, "suppress repeats of the same identifier")
	rootCmd.AddCommand(listenCmd)
}
