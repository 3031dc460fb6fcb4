// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

// ErrInvalidDstSize is returned by ReadSamples when the destination
// length is not a multiple of the channel count, which would split a
// frame across calls.
var ErrInvalidDstSize = errors.New("destination length must be a multiple of the channel count")
