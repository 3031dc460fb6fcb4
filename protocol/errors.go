// SPDX-License-Identifier: EPL-2.0

package protocol

import "errors"

var (
	ErrUnknownProtocol   = errors.New("unknown protocol")
	ErrInvalidIdentifier = errors.New("identifier not valid under active protocol")
	ErrInvalidArray      = errors.New("symbol array not valid under active protocol")
)
