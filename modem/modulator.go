// SPDX-License-Identifier: EPL-2.0

package modem

import (
	"io"
	"math"

	"github.com/soniclink/chirp/audio"
	"github.com/soniclink/chirp/protocol"
	"github.com/soniclink/chirp/utils"
)

// defaultAmplitude leaves headroom below full scale so the engine's
// software gain stage cannot clip at 1.0.
const defaultAmplitude = 0.8

// Modulator converts symbol sequences into PCM audio under one
// protocol.
type Modulator struct {
	p        protocol.Protocol
	preamble []float32
}

// NewModulator returns a modulator bound to p.
func NewModulator(p protocol.Protocol) *Modulator {
	return &Modulator{
		p:        p,
		preamble: Sweep(p),
	}
}

// Protocol returns the protocol the modulator is bound to.
func (m *Modulator) Protocol() protocol.Protocol { return m.p }

// Modulate returns the on-air waveform for seq as a finite, single-use
// audio.Source: the preamble sweep followed by one tone window per
// symbol. Samples are generated lazily block by block; the source is
// not restartable, and each call yields a fresh, independent source.
//
// seq is the complete sequence including checksum symbols, as produced
// by the codec. Symbol values outside the alphabet are not checked
// here; encode through the codec first.
func (m *Modulator) Modulate(seq []int) audio.Source {
	symbols := append([]int(nil), seq...)
	return &chirpSource{
		p:        m.p,
		preamble: m.preamble,
		symbols:  symbols,
		window:   -1, // preamble first
	}
}

// TotalSamples returns the length in samples of a modulated sequence of
// n symbols, preamble included.
func (m *Modulator) TotalSamples(n int) int {
	return (n + 1) * m.p.SymbolSamples
}

// chirpSource lazily renders one chirp. window -1 is the preamble;
// 0..len(symbols)-1 are tone windows. pos is the offset within the
// current window.
type chirpSource struct {
	p        protocol.Protocol
	preamble []float32
	symbols  []int
	window   int
	pos      int
	done     bool
}

func (s *chirpSource) SampleRate() int { return s.p.SampleRate }
func (s *chirpSource) Channels() int   { return 1 }
func (s *chirpSource) BufSize() int    { return s.p.SymbolSamples }

func (s *chirpSource) Close() error {
	s.done = true
	return nil
}

func (s *chirpSource) ReadSamples(dst []float32) (int, error) {
	if s.done {
		return 0, io.EOF
	}

	n := 0
	w := s.p.SymbolSamples

	for n < len(dst) {
		if s.window >= len(s.symbols) {
			s.done = true
			if n == 0 {
				return 0, io.EOF
			}
			return n, io.EOF
		}

		if s.window < 0 {
			// Preamble: copy from the precomputed sweep.
			c := copy(dst[n:], s.preamble[s.pos:])
			n += c
			s.pos += c
		} else {
			freq := s.p.ToneFrequency(s.symbols[s.window])
			omega := 2 * math.Pi * freq / float64(s.p.SampleRate)
			for n < len(dst) && s.pos < w {
				env := utils.RaisedCosineEdge(s.pos, w, s.p.RampSamples)
				dst[n] = float32(math.Sin(omega*float64(s.pos))) * env * defaultAmplitude
				n++
				s.pos++
			}
		}

		if s.pos >= w {
			s.window++
			s.pos = 0
		}
	}

	return n, nil
}
