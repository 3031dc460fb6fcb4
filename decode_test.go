// SPDX-License-Identifier: EPL-2.0

package chirp_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	chirp "github.com/soniclink/chirp"
	"github.com/soniclink/chirp/codec"
	"github.com/soniclink/chirp/internal/audiotest"
	"github.com/soniclink/chirp/modem"
	"github.com/soniclink/chirp/protocol"
)

// waveform modulates id under p and returns its raw PCM.
func waveform(t *testing.T, p protocol.Protocol, id string) []float32 {
	t.Helper()
	seq, err := codec.New(p).EncodeIdentifier(id)
	if err != nil {
		t.Fatalf("EncodeIdentifier(%q) error = %v", id, err)
	}
	pcm, err := audiotest.Collect(modem.NewModulator(p).Modulate(seq))
	if err != nil {
		t.Fatalf("collecting waveform: %v", err)
	}
	return pcm
}

func TestEncodeWAVDecodeFile(t *testing.T) {
	t.Parallel()

	p := protocol.Standard()
	id := protocol.RandomIdentifier(p)
	path := filepath.Join(t.TempDir(), "chirp.wav")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	if err := chirp.EncodeWAV(f, id, p); err != nil {
		t.Fatalf("EncodeWAV() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing %s: %v", path, err)
	}

	heard, err := chirp.DecodeFile(path, p)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if len(heard) != 1 {
		t.Fatalf("DecodeFile() heard %d chirps, want 1", len(heard))
	}
	if heard[0].Identifier != id {
		t.Errorf("Identifier = %q, want %q", heard[0].Identifier, id)
	}
	if heard[0].Confidence <= 0.5 || heard[0].Confidence > 1 {
		t.Errorf("Confidence = %v, want in (0.5, 1]", heard[0].Confidence)
	}
}

func TestEncodeWAV_InvalidIdentifier(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()

	err = chirp.EncodeWAV(f, "not valid", protocol.Standard())
	if !errors.Is(err, protocol.ErrInvalidIdentifier) {
		t.Fatalf("EncodeWAV() error = %v, want ErrInvalidIdentifier", err)
	}
}

func TestDecodeSource_MultipleChirps(t *testing.T) {
	t.Parallel()

	p := protocol.Standard()
	first := "0123456789"
	second := "8nk34aa0e0"

	var pcm []float32
	pcm = append(pcm, make([]float32, 3000)...)
	pcm = append(pcm, waveform(t, p, first)...)
	pcm = append(pcm, make([]float32, 4096)...)
	pcm = append(pcm, waveform(t, p, second)...)

	src := audiotest.NewMockSource(p.SampleRate, 1, len(pcm), func(i, _ int) float32 {
		return pcm[i]
	})
	heard, err := chirp.DecodeSource(src, p)
	if err != nil {
		t.Fatalf("DecodeSource() error = %v", err)
	}
	if len(heard) != 2 {
		t.Fatalf("DecodeSource() heard %d chirps, want 2", len(heard))
	}
	if heard[0].Identifier != first || heard[1].Identifier != second {
		t.Errorf("heard %q then %q, want %q then %q",
			heard[0].Identifier, heard[1].Identifier, first, second)
	}
}

func TestDecodeSource_StereoRecording(t *testing.T) {
	t.Parallel()

	p := protocol.Standard()
	id := protocol.RandomIdentifier(p)
	pcm := waveform(t, p, id)

	src := audiotest.NewMockSource(p.SampleRate, 2, len(pcm), func(i, _ int) float32 {
		return pcm[i]
	})
	heard, err := chirp.DecodeSource(src, p)
	if err != nil {
		t.Fatalf("DecodeSource() error = %v", err)
	}
	if len(heard) != 1 {
		t.Fatalf("DecodeSource() heard %d chirps, want 1", len(heard))
	}
	if heard[0].Identifier != id {
		t.Errorf("Identifier = %q, want %q", heard[0].Identifier, id)
	}
}

func TestDecodeSource_SilentRecording(t *testing.T) {
	t.Parallel()

	p := protocol.Standard()
	src := audiotest.NewSilentSource(p.SampleRate, 1, 10*p.SymbolSamples)
	heard, err := chirp.DecodeSource(src, p)
	if err != nil {
		t.Fatalf("DecodeSource() error = %v", err)
	}
	if len(heard) != 0 {
		t.Fatalf("DecodeSource() heard %d chirps in silence, want 0", len(heard))
	}
}

func TestDecodeFile_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	if _, err := chirp.DecodeFile("recording.flac", protocol.Standard()); err == nil {
		t.Fatal("DecodeFile() error = nil for unsupported extension")
	}
}

func TestFormats(t *testing.T) {
	t.Parallel()

	reg := chirp.Formats()
	for _, ext := range []string{"wav", "mp3", "ogg", "oga", "aiff", "aif"} {
		if _, ok := reg.Get(ext); !ok {
			t.Errorf("Formats().Get(%q) missing", ext)
		}
	}
	if _, ok := reg.Get("flac"); ok {
		t.Error("Formats().Get(\"flac\") present, want absent")
	}
}
