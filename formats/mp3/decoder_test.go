// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/soniclink/chirp/internal/audiotest"
)

// fakeReader plays a canned int16 PCM byte stream the way
// gomp3.Decoder would.
type fakeReader struct {
	sampleRate int
	data       []byte
	off        int
}

func (f *fakeReader) SampleRate() int { return f.sampleRate }

func (f *fakeReader) Read(p []byte) (int, error) {
	if f.off >= len(f.data) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.off:])
	f.off += n
	return n, nil
}

func pcm16Bytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 16384, -16384, 32767, -32768, 1}
	src := &source{
		dec:        &fakeReader{sampleRate: 44100, data: pcm16Bytes(samples)},
		sampleRate: 44100,
	}

	if got := src.SampleRate(); got != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", got)
	}
	if got := src.Channels(); got != 2 {
		t.Errorf("Channels() = %d, want 2", got)
	}

	got, err := audiotest.Collect(src)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != len(samples) {
		t.Fatalf("read %d samples, want %d", len(got), len(samples))
	}
	for i, s := range samples {
		want := float64(s) / 32768
		if math.Abs(float64(got[i])-want) > 1e-6 {
			t.Errorf("sample %d = %v, want %v", i, got[i], want)
		}
	}
}

func TestSource_ReadSamplesPartial(t *testing.T) {
	t.Parallel()

	src := &source{
		dec: &fakeReader{sampleRate: 22050, data: pcm16Bytes(make([]int16, 10))},
	}

	dst := make([]float32, 4)
	for reads := 0; ; reads++ {
		n, err := src.ReadSamples(dst)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
		if n == 0 {
			t.Fatal("ReadSamples() = 0 with no error")
		}
		if reads > 10 {
			t.Fatal("no EOF after draining the stream")
		}
	}
}

func TestDecoder_RejectsNonMP3(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("not an mp3 stream"))); err == nil {
		t.Error("Decode() accepted garbage input")
	}
}
