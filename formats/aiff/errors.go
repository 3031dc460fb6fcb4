// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile indicates the input is not a FORM/AIFF stream.
	ErrNotAiffFile = errors.New("not an AIFF file")

	// ErrOnlyPCM16Supported indicates a sample width other than 16-bit
	// PCM.
	ErrOnlyPCM16Supported = errors.New("only 16-bit PCM AIFF is supported")

	// ErrUnsupportedAiffLayout indicates an AIFF file whose chunk
	// layout the decoder cannot handle.
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
