// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"fmt"

	"github.com/soniclink/chirp/protocol"
)

// Codec maps between application payloads and on-air symbol sequences
// under one protocol. A Codec is a value; construct a new one after
// switching protocols.
type Codec struct {
	p protocol.Protocol
}

// New returns a codec bound to p.
//
// The protocol's checksum symbols must be able to carry a full CRC-8,
// i.e. AlphabetSize^ChecksumSymbols must exceed 255; both built-in
// protocols satisfy this.
func New(p protocol.Protocol) Codec {
	return Codec{p: p}
}

// Protocol returns the protocol the codec is bound to.
func (c Codec) Protocol() protocol.Protocol { return c.p }

// EncodeIdentifier converts an identifier to the complete on-air symbol
// sequence: payload symbols followed by checksum symbols.
func (c Codec) EncodeIdentifier(id string) ([]int, error) {
	if !c.p.ValidIdentifier(id) {
		return nil, fmt.Errorf("%w: %q", protocol.ErrInvalidIdentifier, id)
	}

	payload := make([]int, 0, c.p.TotalSymbols())
	for i := 0; i < len(id); i++ {
		v, _ := c.p.SymbolValue(id[i])
		payload = append(payload, v)
	}
	return c.appendChecksum(payload), nil
}

// EncodeArray converts a pre-encoded symbol array to the complete
// on-air sequence, bypassing identifier parsing.
func (c Codec) EncodeArray(arr []int) ([]int, error) {
	if !c.p.ValidArray(arr) {
		return nil, fmt.Errorf("%w: %v", protocol.ErrInvalidArray, arr)
	}

	payload := make([]int, 0, c.p.TotalSymbols())
	payload = append(payload, arr...)
	return c.appendChecksum(payload), nil
}

// Decode verifies the checksum of a received symbol sequence and
// recovers the identifier. A sequence of the wrong length or with a
// checksum mismatch is rejected; the codec never guesses a payload from
// a corrupted receive.
func (c Codec) Decode(seq []int) (string, error) {
	arr, err := c.DecodeArray(seq)
	if err != nil {
		return "", err
	}

	buf := make([]byte, len(arr))
	for i, v := range arr {
		buf[i] = c.p.SymbolChar(v)
	}
	return string(buf), nil
}

// DecodeArray is Decode without the identifier mapping: it verifies the
// checksum and returns the raw payload symbol values.
func (c Codec) DecodeArray(seq []int) ([]int, error) {
	if len(seq) != c.p.TotalSymbols() {
		return nil, fmt.Errorf("%w: got %d symbols, want %d",
			ErrSequenceLength, len(seq), c.p.TotalSymbols())
	}
	for _, v := range seq {
		if v < 0 || v >= c.p.AlphabetSize() {
			return nil, fmt.Errorf("%w: symbol value %d out of range", ErrSequenceLength, v)
		}
	}

	payload := seq[:c.p.PayloadSymbols]
	if !c.checksumMatches(payload, seq[c.p.PayloadSymbols:]) {
		return nil, ErrChecksum
	}

	out := make([]int, len(payload))
	copy(out, payload)
	return out, nil
}

// appendChecksum computes CRC-8 over the payload symbol values and
// appends it as base-AlphabetSize digits, most significant first.
func (c Codec) appendChecksum(payload []int) []int {
	buf := make([]byte, len(payload))
	for i, v := range payload {
		buf[i] = byte(v)
	}
	crc := int(crc8(buf))

	n := c.p.AlphabetSize()
	check := make([]int, c.p.ChecksumSymbols)
	for i := len(check) - 1; i >= 0; i-- {
		check[i] = crc % n
		crc /= n
	}
	return append(payload, check...)
}

func (c Codec) checksumMatches(payload, check []int) bool {
	expected := c.appendChecksum(append([]int(nil), payload...))
	got := expected[len(payload):]
	for i := range got {
		if got[i] != check[i] {
			return false
		}
	}
	return true
}
