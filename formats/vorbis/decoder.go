// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/soniclink/chirp/audio"
)

// pcmReader is the slice of oggvorbis.Reader the source needs, split
// out so tests can substitute their own.
type pcmReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec        pcmReader
	sampleRate int
	channels   int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	// oggvorbis already yields interleaved float32 in [-1, 1] and
	// reports a sample count that is a whole number of frames; keep dst
	// frame-aligned so that holds.
	aligned := len(dst) - len(dst)%s.channels
	if aligned == 0 {
		return 0, nil
	}
	return s.dec.Read(dst[:aligned])
}

// Decoder decodes Ogg Vorbis recordings of chirp broadcasts.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening ogg vorbis stream: %w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}
