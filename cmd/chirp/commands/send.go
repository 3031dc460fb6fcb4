// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	chirp "github.com/soniclink/chirp"
	"github.com/soniclink/chirp/engine"
	"github.com/soniclink/chirp/protocol"
)

var flagSendOut string

var sendCmd = &cobra.Command{
	Use:   "send [identifier]",
	Short: "Transmit an identifier over sound",
	Long: `Modulate an identifier and play it through the default audio device.
With no argument a random identifier is generated. With --out the
waveform is written to a WAV file instead of being played.

Example:
  chirp send 8nk34aa0e0
  chirp send --protocol ultrasonic
  chirp send 8nk34aa0e0 --out chirp.wav`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cfg, err := newSession()
		if err != nil {
			return err
		}
		defer sess.Stop()
		log := newLogger(cfg)

		id := ""
		if len(args) == 1 {
			id = args[0]
		} else {
			id = sess.RandomIdentifier()
		}

		if flagSendOut != "" {
			return writeWAV(flagSendOut, id, sess.ProtocolName())
		}

		states := make(chan engine.State, 16)
		sess.SetAudioStateChangedFunc(func(s engine.State) { states <- s })

		if err := sess.Send(id); err != nil {
			return err
		}
		log.Info("transmitting", "identifier", id, "protocol", sess.ProtocolName())

		// Wait for playback to run its course before tearing the
		// device down.
		deadline := time.After(30 * time.Second)
		started := false
		for {
			select {
			case s := <-states:
				if s == engine.StateChirping {
					started = true
					continue
				}
				if started {
					log.Info("done")
					return nil
				}
			case <-deadline:
				return fmt.Errorf("timed out waiting for playback to finish")
			}
		}
	},
}

// writeWAV modulates id under the named protocol and writes it to path.
func writeWAV(path, id, protoName string) error {
	p, ok := protocol.NewRegistry().Get(protoName)
	if !ok {
		return fmt.Errorf("%w: %q", protocol.ErrUnknownProtocol, protoName)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := chirp.EncodeWAV(f, id, p); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%s, protocol %s)\n", path, id, protoName)
	return nil
}

func init() {
	sendCmd.Flags().StringVarP(&flagSendOut, "out", "o", "", "write a WAV file instead of playing")
	rootCmd.AddCommand(sendCmd)
}
