// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	// ErrDevice indicates the audio device is unavailable or
	// misconfigured. Fatal to the current session.
	ErrDevice = errors.New("audio device error")

	// ErrNotRunning is returned by operations that need an open device
	// while the engine is stopped.
	ErrNotRunning = errors.New("engine is not running")

	// ErrBusy is returned by Transmit while a previous transmission is
	// still playing out.
	ErrBusy = errors.New("transmission already in flight")
)
