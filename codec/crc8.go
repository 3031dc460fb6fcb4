// SPDX-License-Identifier: EPL-2.0

package codec

// crc8 computes an 8-bit CRC (polynomial 0x07, zero init) over data.
// Detection only: an 8-bit CRC catches every single-bit error and every
// burst error up to 8 bits in the protected region, which is exactly
// the integrity gate the decoder needs. No correction is attempted, so
// a corrupted receive is always dropped rather than repaired toward a
// possibly wrong payload.
func crc8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for range 8 {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
