// SPDX-License-Identifier: EPL-2.0

// Package codec maps between application payloads (identifiers, symbol
// arrays) and the symbol sequences that go on air, adding and verifying
// a CRC-8 checksum block.
//
// The checksum is the primary integrity gate against noise-induced
// symbol errors: Decode rejects any sequence whose checksum fails with
// ErrChecksum rather than guessing at a payload. Combined with the
// demodulator's silent retry this biases the receive path toward
// dropped chirps over corrupted-but-accepted ones.
//
//	c := codec.New(protocol.Standard())
//	seq, _ := c.EncodeIdentifier("8nk34aa0e0") // 10 payload + 2 checksum symbols
//	id, err := c.Decode(seq)                   // "8nk34aa0e0", nil
package codec
