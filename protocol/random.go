// SPDX-License-Identifier: EPL-2.0

package protocol

import "math/rand/v2"

// RandomIdentifier returns a random identifier valid under p,
// e.g. "8nk34aa0e0" for the standard protocol.
func RandomIdentifier(p Protocol) string {
	buf := make([]byte, p.PayloadSymbols)
	for i := range buf {
		buf[i] = p.Alphabet[rand.IntN(p.AlphabetSize())]
	}
	return string(buf)
}

// RandomArray returns a random pre-encoded symbol array valid under p.
func RandomArray(p Protocol) []int {
	arr := make([]int, p.PayloadSymbols)
	for i := range arr {
		arr[i] = rand.IntN(p.AlphabetSize())
	}
	return arr
}
