// SPDX-License-Identifier: EPL-2.0

package engine

// DataFunc is invoked on the device clock once per period. out is a
// zeroed playback block to fill; in holds the captured block. Both are
// mono at the opened sample rate and valid only for the duration of the
// call.
type DataFunc func(out, in []float32)

// Device abstracts a duplex (capture + playback) audio device. The
// production implementation wraps miniaudio; tests substitute a mock
// driven by hand.
type Device interface {
	// Open starts the duplex stream. fn runs on the device's real-time
	// thread until Close.
	Open(sampleRate, blockSize int, fn DataFunc) error

	// Close tears the stream down. Safe to call when not open.
	Close() error

	// OutputVolume reports the hardware output level in [0, 1].
	// Read-only: the engine's software gain is applied separately and
	// cannot override it.
	OutputVolume() float64
}
