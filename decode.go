// SPDX-License-Identifier: EPL-2.0

package chirp

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/soniclink/chirp/audio"
	"github.com/soniclink/chirp/codec"
	"github.com/soniclink/chirp/formats/aiff"
	"github.com/soniclink/chirp/formats/mp3"
	"github.com/soniclink/chirp/formats/vorbis"
	"github.com/soniclink/chirp/formats/wav"
	"github.com/soniclink/chirp/modem"
	"github.com/soniclink/chirp/protocol"
)

// Formats returns a registry of all supported recording decoders, keyed
// by file extension.
func Formats() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	return reg
}

// DecodeSource scans a recording for chirps transmitted under p and
// returns every one heard, in order. The source may use any sample
// rate or channel count; it is mixed down and resampled as needed.
func DecodeSource(src audio.Source, p protocol.Protocol) ([]Chirp, error) {
	mono := audio.ToMonoRate(src, p.SampleRate)

	d := modem.NewDemodulator(modem.Config{Protocol: p})
	d.Start()

	// Recordings often begin inside the first chirp. Prime the noise
	// floor with silence so onset detection fires on the opening block
	// instead of mistaking it for the floor.
	d.ProcessBlock(make([]float32, 2048))

	var heard []Chirp
	buf := make([]float32, 4096)
	for {
		n, err := mono.ReadSamples(buf)
		if n > 0 {
			if res := d.ProcessBlock(buf[:n]); res != nil {
				heard = append(heard, Chirp{
					Identifier: res.Identifier,
					ReceivedAt: res.ReceivedAt,
					Confidence: res.Confidence,
				})
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return heard, fmt.Errorf("chirp: reading recording: %w", err)
		}
	}

	// Pad with silence so a chirp ending flush at EOF still has the
	// slack the symbol-timing scan needs.
	pad := make([]float32, p.SymbolSamples)
	for i := 0; i < 2; i++ {
		if res := d.ProcessBlock(pad); res != nil {
			heard = append(heard, Chirp{
				Identifier: res.Identifier,
				ReceivedAt: res.ReceivedAt,
				Confidence: res.Confidence,
			})
		}
	}
	return heard, nil
}

// DecodeFile scans a recording on disk for chirps transmitted under p.
// The decoder is picked from the file extension; WAV, MP3, Ogg Vorbis
// and AIFF are supported.
func DecodeFile(path string, p protocol.Protocol) ([]Chirp, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	dec, ok := Formats().Get(ext)
	if !ok {
		return nil, fmt.Errorf("chirp: unsupported recording format %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("chirp: %w", err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("chirp: decoding %s: %w", filepath.Base(path), err)
	}
	defer src.Close()

	return DecodeSource(src, p)
}

// EncodeWAV modulates identifier under p and writes the waveform as a
// 16-bit PCM WAV, ready for playback by any audio tool.
func EncodeWAV(ws io.WriteSeeker, identifier string, p protocol.Protocol) error {
	src, err := modulated(identifier, p)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := wav.Encode(ws, src); err != nil {
		return fmt.Errorf("chirp: %w", err)
	}
	return nil
}

// modulated validates and encodes identifier, returning its waveform.
func modulated(identifier string, p protocol.Protocol) (audio.Source, error) {
	if !p.ValidIdentifier(identifier) {
		return nil, fmt.Errorf("chirp: %q: %w", identifier, protocol.ErrInvalidIdentifier)
	}
	seq, err := codec.New(p).EncodeIdentifier(identifier)
	if err != nil {
		return nil, fmt.Errorf("chirp: %w", err)
	}
	return modem.NewModulator(p).Modulate(seq), nil
}
