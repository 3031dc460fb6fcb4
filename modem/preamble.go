// SPDX-License-Identifier: EPL-2.0

package modem

import (
	"math"

	"github.com/soniclink/chirp/protocol"
	"github.com/soniclink/chirp/utils"
)

// Sweep returns the preamble waveform for p: a linear frequency sweep
// from the bottom to the top of the protocol band across one symbol
// window, with raised-cosine edges.
//
// The sweep serves two purposes. Its broadband energy trips the
// demodulator's onset detector, and its sharp autocorrelation peak
// gives sample-accurate synchronization by cross-correlation: no data
// tone resembles it, so a correlation lock is a reliable frame start.
func Sweep(p protocol.Protocol) []float32 {
	n := p.SymbolSamples
	fMin := p.MinFrequency()
	fMax := p.MaxFrequency()

	out := make([]float32, n)
	phase := 0.0
	for i := range out {
		f := fMin + (fMax-fMin)*float64(i)/float64(n)
		phase += 2 * math.Pi * f / float64(p.SampleRate)
		env := utils.RaisedCosineEdge(i, n, p.RampSamples)
		out[i] = float32(math.Sin(phase)) * env * defaultAmplitude
	}
	return out
}
