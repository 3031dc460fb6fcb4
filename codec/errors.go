// SPDX-License-Identifier: EPL-2.0

package codec

import "errors"

var (
	ErrChecksum       = errors.New("checksum mismatch")
	ErrSequenceLength = errors.New("invalid symbol sequence")
)
