// SPDX-License-Identifier: EPL-2.0

/*
Package engine orchestrates duplex audio device I/O around the
modulator and demodulator.

# State machine

An Engine is always in exactly one State:

	Stopped -> Ready            Start
	Ready   -> Chirping         Transmit
	Ready   -> Receiving        Listen
	Chirping -> Ready           transmission drained
	Receiving <-> Streaming     streaming-mode suppression
	any     -> Stopped          Stop

One transition authority validates every move, so a chirp can never be
playing and a decode can never be locking at the same time without
passing through Ready in between.

# Real-time path

The device callback runs on the hardware audio clock and must finish
within one buffer period. It takes no locks, performs no allocation and
does no I/O: playback samples come out of a pre-filled lock-free ring,
captured blocks go straight into the demodulator, and everything the
application needs to hear about (decoded chirps, captured blocks, state
changes) crosses to a dispatch goroutine through a single-producer/
single-consumer event ring. Application callbacks therefore run off the
real-time path and may be arbitrarily slow without dropping audio.
Under sustained backpressure notifications are dropped instead.

# Volume

SetVolume controls a software gain stage applied to modulated output
after synthesis. The hardware output level is reported read-only by
OutputVolume and cannot be overridden from here.
*/
package engine
