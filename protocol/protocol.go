// SPDX-License-Identifier: EPL-2.0

package protocol

import (
	"strings"
	"time"
)

// Built-in protocol names.
const (
	NameStandard   = "standard"
	NameUltrasonic = "ultrasonic"
)

// Protocol is an immutable, named modulation configuration. Tone
// frequencies are expressed as Goertzel bin indices so every candidate
// tone falls on an exact analysis bin of the symbol window.
type Protocol struct {
	// Name identifies the protocol in the registry.
	Name string

	// Alphabet holds the symbol characters; a symbol's value is its
	// index into this string.
	Alphabet string

	// PayloadSymbols is the identifier length in symbols.
	PayloadSymbols int

	// ChecksumSymbols is the number of checksum symbols appended by the
	// codec after the payload.
	ChecksumSymbols int

	// SampleRate of modulated and demodulated PCM, in Hz.
	SampleRate int

	// SymbolSamples is the length of one symbol window in samples.
	SymbolSamples int

	// BaseBin is the analysis bin of symbol value 0's tone.
	BaseBin int

	// BinSpacing is the number of bins between adjacent symbol tones.
	BinSpacing int

	// RampSamples is the raised-cosine fade length at each symbol edge.
	RampSamples int

	// SyncThreshold is the minimum normalized preamble correlation for
	// the demodulator to lock onto an incoming transmission.
	SyncThreshold float64
}

// Standard is the audible wide-band protocol: 32 tones between roughly
// 1.7 kHz and 5.1 kHz carrying 50 payload bits per chirp. Robust across
// consumer speakers and microphones at the cost of being clearly audible.
func Standard() Protocol {
	return Protocol{
		Name:            NameStandard,
		Alphabet:        "0123456789abcdefghijklmnopqrstuv",
		PayloadSymbols:  10,
		ChecksumSymbols: 2,
		SampleRate:      44100,
		SymbolSamples:   4096,
		BaseBin:         160,
		BinSpacing:      10,
		RampSamples:     256,
		SyncThreshold:   0.55,
	}
}

// Ultrasonic is the near-inaudible narrow-band protocol: 16 tones packed
// above 17 kHz carrying 32 payload bits per chirp. Imperceptible to most
// adults but shorter-ranged and more sensitive to speaker roll-off.
func Ultrasonic() Protocol {
	return Protocol{
		Name:            NameUltrasonic,
		Alphabet:        "0123456789abcdef",
		PayloadSymbols:  8,
		ChecksumSymbols: 2,
		SampleRate:      44100,
		SymbolSamples:   4096,
		BaseBin:         1600,
		BinSpacing:      6,
		RampSamples:     256,
		SyncThreshold:   0.55,
	}
}

// AlphabetSize returns the number of symbol values.
func (p Protocol) AlphabetSize() int { return len(p.Alphabet) }

// TotalSymbols returns payload plus checksum symbol count, the full
// on-air sequence length after the preamble.
func (p Protocol) TotalSymbols() int { return p.PayloadSymbols + p.ChecksumSymbols }

// BinWidth returns the analysis bin width in Hz for the symbol window.
func (p Protocol) BinWidth() float64 {
	return float64(p.SampleRate) / float64(p.SymbolSamples)
}

// ToneBin returns the analysis bin index of the tone for symbol value v.
func (p Protocol) ToneBin(v int) int { return p.BaseBin + v*p.BinSpacing }

// ToneFrequency returns the tone frequency in Hz for symbol value v.
func (p Protocol) ToneFrequency(v int) float64 {
	return float64(p.ToneBin(v)) * p.BinWidth()
}

// MinFrequency returns the lowest tone frequency of the protocol band.
func (p Protocol) MinFrequency() float64 { return p.ToneFrequency(0) }

// MaxFrequency returns the highest tone frequency of the protocol band.
func (p Protocol) MaxFrequency() float64 { return p.ToneFrequency(p.AlphabetSize() - 1) }

// SymbolDuration returns the wall-clock length of one symbol window.
func (p Protocol) SymbolDuration() time.Duration {
	return time.Duration(p.SymbolSamples) * time.Second / time.Duration(p.SampleRate)
}

// SymbolValue returns the symbol value of character c, or false if c is
// not part of the alphabet.
func (p Protocol) SymbolValue(c byte) (int, bool) {
	i := strings.IndexByte(p.Alphabet, c)
	if i < 0 {
		return 0, false
	}
	return i, true
}

// SymbolChar returns the alphabet character for symbol value v.
// v must be in [0, AlphabetSize).
func (p Protocol) SymbolChar(v int) byte { return p.Alphabet[v] }

// ValidIdentifier reports whether id can be transmitted as-is under p:
// exact payload length and every character drawn from the alphabet.
// The check is pure and has no side effects.
func (p Protocol) ValidIdentifier(id string) bool {
	if len(id) != p.PayloadSymbols {
		return false
	}
	for i := 0; i < len(id); i++ {
		if _, ok := p.SymbolValue(id[i]); !ok {
			return false
		}
	}
	return true
}

// ValidArray reports whether arr is a transmittable pre-encoded symbol
// sequence under p: exact payload length with every value inside the
// alphabet range.
func (p Protocol) ValidArray(arr []int) bool {
	if len(arr) != p.PayloadSymbols {
		return false
	}
	for _, v := range arr {
		if v < 0 || v >= p.AlphabetSize() {
			return false
		}
	}
	return true
}
