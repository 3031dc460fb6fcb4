// SPDX-License-Identifier: EPL-2.0

// Package chirp transmits short identifiers between devices as sound.
//
// An identifier is encoded into a sequence of tones, played through the
// speaker, and recovered by any device in earshot running the decoder.
// No pairing, network, or prior contact between the devices is needed;
// anything that can play and capture audio can take part.
//
// # Quick Start
//
// A Session owns the audio device and the active protocol:
//
//	session, _ := chirp.NewSession(chirp.Config{})
//	session.SetChirpHeardFunc(func(c chirp.Chirp) {
//		fmt.Println("heard:", c.Identifier)
//	})
//	session.Send(session.RandomIdentifier())
//
// Setting a chirp-heard callback starts the audio engine and begins
// listening; Send starts it on first use as well. Call Stop to release
// the device.
//
// # Protocols
//
// Two built-in protocols ship: "standard", an audible wide-band layout
// carrying 50-bit identifiers, and "ultrasonic", a near-inaudible
// narrow-band layout carrying 32 bits. Switch with SetProtocol; both
// ends must use the same protocol.
//
// # Offline decoding
//
// Chirps can also be recovered from recordings. DecodeFile accepts
// WAV, MP3, Ogg Vorbis and AIFF captures at any sample rate or channel
// count:
//
//	heard, _ := chirp.DecodeFile("capture.wav", protocol.Standard())
//	for _, c := range heard {
//		fmt.Println(c.Identifier)
//	}
//
// The lower-level building blocks live in the subpackages: protocol
// (tone layouts and validation), codec (checksum framing), modem
// (modulation and demodulation), engine (device I/O and the state
// machine), audio and formats (sample pipeline and recording codecs).
package chirp
