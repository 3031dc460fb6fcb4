// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	// ErrNotWavFile indicates the input is not a RIFF/WAVE stream.
	ErrNotWavFile = errors.New("not a WAV file")

	// ErrUnsupportedWavLayout indicates a WAV file whose chunk layout
	// the decoder cannot handle.
	ErrUnsupportedWavLayout = errors.New("unsupported WAV layout")

	// ErrUnsupportedBitDepth indicates a sample width outside
	// 8/16/24/32 bits.
	ErrUnsupportedBitDepth = errors.New("unsupported bit depth")
)
