// SPDX-License-Identifier: EPL-2.0

package audio

// ToMonoRate builds the standard conditioning pipeline for a recording
// before it reaches the demodulator: mix down to mono, then resample to
// the target rate.
//
// Mixing before resampling halves the interpolation work for stereo
// input; the result is identical either way since both stages are
// linear.
func ToMonoRate(src Source, rate int) Source {
	var s Source = src
	if s.Channels() != 1 {
		s = NewMonoMixer(s)
	}
	if s.SampleRate() != rate {
		s = NewResampler(s, rate)
	}
	return s
}
