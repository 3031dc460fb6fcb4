// SPDX-License-Identifier: EPL-2.0

// Package modem turns symbol sequences into sound and back.
//
// # Modulation
//
// The Modulator renders a symbol sequence as a preamble sweep followed
// by one fixed-duration tone window per symbol, each tone at the
// protocol frequency for its symbol value with raised-cosine edges to
// limit spectral leakage. Modulate returns a finite, single-use
// audio.Source so the engine can pull PCM lazily block by block:
//
//	m := modem.NewModulator(protocol.Standard())
//	seq, _ := codec.New(protocol.Standard()).EncodeIdentifier("8nk34aa0e0")
//	src := m.Modulate(seq) // fresh source per call, not restartable
//
// # Demodulation
//
// The Demodulator is a push-based state machine fed one PCM block at a
// time from the capture callback:
//
//	d := modem.NewDemodulator(modem.Config{Protocol: protocol.Standard()})
//	d.Start()
//	if res := d.ProcessBlock(block); res != nil {
//	    // checksum-valid chirp
//	}
//
// Listening watches band energy against an adaptive noise floor;
// Synchronizing matches the preamble sweep by normalized
// cross-correlation within a bounded window; Decoding scores every
// candidate tone per symbol window with a Goertzel estimator, re-centers
// the window timing each symbol to ride out clock skew, and hands the
// accumulated sequence to the codec's checksum gate. Anything that
// fails on the way, a timeout or a mismatch, silently returns the
// machine to listening.
package modem
