// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"math"
	"math/rand/v2"
)

// AddWhiteNoise returns a copy of pcm with zero-mean Gaussian noise
// added at the given signal-to-noise ratio in dB, measured against the
// RMS power of pcm itself. snrDB of 0 means noise power equal to signal
// power. Deterministic for a given seed.
func AddWhiteNoise(pcm []float32, snrDB float64, seed uint64) []float32 {
	var power float64
	for _, s := range pcm {
		power += float64(s) * float64(s)
	}
	power /= float64(len(pcm))

	noisePower := power / math.Pow(10, snrDB/10)
	sigma := math.Sqrt(noisePower)

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float32, len(pcm))
	for i, s := range pcm {
		out[i] = s + float32(rng.NormFloat64()*sigma)
	}
	return out
}

// PrependSilence returns pcm with n zero samples in front, simulating
// the dead air before a transmission reaches the microphone.
func PrependSilence(pcm []float32, n int) []float32 {
	out := make([]float32, n, n+len(pcm))
	return append(out, pcm...)
}

// Attenuate scales every sample by gain.
func Attenuate(pcm []float32, gain float32) []float32 {
	out := make([]float32, len(pcm))
	for i, s := range pcm {
		out[i] = s * gain
	}
	return out
}
