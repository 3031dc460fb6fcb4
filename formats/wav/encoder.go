// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/soniclink/chirp/audio"
	"github.com/soniclink/chirp/utils"
)

// Encode drains src and writes it as 16-bit PCM WAV. The writer must
// seek: the RIFF sizes are patched in on Close. Used to export
// modulated chirps for playback by other tools.
func Encode(ws io.WriteSeeker, src audio.Source) error {
	enc := gowav.NewEncoder(ws, src.SampleRate(), 16, src.Channels(), 1)

	buf := make([]float32, 4096)
	block := &goaudio.IntBuffer{
		Data: make([]int, len(buf)),
		Format: &goaudio.Format{
			NumChannels: src.Channels(),
			SampleRate:  src.SampleRate(),
		},
		SourceBitDepth: 16,
	}

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			block.Data = block.Data[:n]
			for i, s := range buf[:n] {
				block.Data[i] = int(utils.Float32ToInt16(s))
			}
			if werr := enc.Write(block); werr != nil {
				return fmt.Errorf("writing wav block: %w", werr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading source: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}
