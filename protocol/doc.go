// SPDX-License-Identifier: EPL-2.0

// Package protocol defines the named modulation configurations a chirp
// session can select between, and validates payloads against them.
//
// # Built-in Protocols
//
// Two protocols ship with the SDK:
//
//   - "standard": audible wide-band scheme. 32 tones between ~1.7 kHz
//     and ~5.1 kHz, 10-symbol identifiers (50 payload bits). Best range
//     and robustness.
//   - "ultrasonic": near-inaudible narrow-band scheme. 16 tones above
//     17 kHz, 8-symbol identifiers (32 payload bits). Imperceptible but
//     shorter-ranged.
//
// # Registry
//
// The Registry tracks the active protocol for a session:
//
//	reg := protocol.NewRegistry()
//	if err := reg.SetActive(protocol.NameUltrasonic); err != nil {
//	    // unknown name; active protocol unchanged
//	}
//	p := reg.Active()
//
// Selecting an unknown name fails without mutating the selection.
// Active returns a value snapshot, so in-flight work keeps a consistent
// protocol even while the selection changes.
//
// # Validation
//
// ValidIdentifier and ValidArray are pure functions of the protocol:
//
//	p.ValidIdentifier("8nk34aa0e0") // true under "standard"
//	p.ValidIdentifier("8NK34AA0E0") // false: uppercase not in alphabet
//
// A validation result is only meaningful for the protocol it was
// checked against; switching protocols invalidates prior validations.
//
// # Tone Layout
//
// Tone frequencies are defined as analysis bin indices of the symbol
// window rather than raw Hz, so the demodulator's Goertzel estimators
// land exactly on each candidate tone with no scalloping loss.
package protocol
