// SPDX-License-Identifier: EPL-2.0

package enginetest

import (
	"sync"

	"github.com/soniclink/chirp/engine"
)

// MockDevice implements engine.Device without touching hardware. Tests
// drive the data callback by hand, one period at a time, on their own
// goroutine.
type MockDevice struct {
	// OpenErr, when set, is returned by Open to simulate a missing or
	// busy device.
	OpenErr error

	// HardwareVolume is reported by OutputVolume. Zero means 1.
	HardwareVolume float64

	mu    sync.Mutex
	open  bool
	block int
	fn    engine.DataFunc
}

func (m *MockDevice) Open(sampleRate, blockSize int, fn engine.DataFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OpenErr != nil {
		return m.OpenErr
	}
	m.open = true
	m.block = blockSize
	m.fn = fn
	return nil
}

func (m *MockDevice) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	m.fn = nil
	return nil
}

func (m *MockDevice) OutputVolume() float64 {
	if m.HardwareVolume != 0 {
		return m.HardwareVolume
	}
	return 1
}

// IsOpen reports whether the device is currently open.
func (m *MockDevice) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Step runs one device period with the given capture block (nil means
// silence) and returns the playback block produced.
func (m *MockDevice) Step(in []float32) []float32 {
	m.mu.Lock()
	fn := m.fn
	block := m.block
	m.mu.Unlock()
	if fn == nil {
		return nil
	}

	out := make([]float32, block)
	if in == nil {
		in = make([]float32, block)
	}
	fn(out, in)
	return out
}

// Feed pushes pcm through the device in period-sized blocks, padding
// the tail with silence, and returns everything played back.
func (m *MockDevice) Feed(pcm []float32) []float32 {
	m.mu.Lock()
	block := m.block
	m.mu.Unlock()
	if block == 0 {
		return nil
	}

	var played []float32
	for off := 0; off < len(pcm); off += block {
		end := off + block
		b := make([]float32, block)
		if end > len(pcm) {
			end = len(pcm)
		}
		copy(b, pcm[off:end])
		played = append(played, m.Step(b)...)
	}
	return played
}
