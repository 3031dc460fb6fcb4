// SPDX-License-Identifier: EPL-2.0

package engine

// State is the engine's lifecycle state. Exactly one value is active at
// a time; every transition goes through the engine's single transition
// authority, so illegal jumps (Chirping straight to Receiving, say)
// cannot happen.
type State int32

const (
	// StateStopped: no device open, nothing running.
	StateStopped State = iota
	// StateReady: device open, neither transmitting nor receiving.
	StateReady
	// StateChirping: a modulated chirp is being played out.
	StateChirping
	// StateStreaming: receiving, with streaming-mode suppression of a
	// recently reported chirp in effect.
	StateStreaming
	// StateReceiving: capturing and listening for chirps.
	StateReceiving
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateReady:
		return "ready"
	case StateChirping:
		return "chirping"
	case StateStreaming:
		return "streaming"
	case StateReceiving:
		return "receiving"
	default:
		return "unknown"
	}
}

// validTransition reports whether the engine may move from one state to
// another. Stopped is reachable from anywhere; transmit and receive
// activity always passes through Ready.
func validTransition(from, to State) bool {
	if to == StateStopped || from == to {
		return true
	}
	switch from {
	case StateStopped:
		return to == StateReady
	case StateReady:
		return to == StateChirping || to == StateReceiving
	case StateChirping:
		return to == StateReady
	case StateReceiving:
		return to == StateReady || to == StateStreaming
	case StateStreaming:
		return to == StateReceiving || to == StateReady
	}
	return false
}
