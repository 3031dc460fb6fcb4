// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM plumbing shared by every part of the
// SDK: the Source stream interface, sample-rate conversion, channel
// mixing, and a registry of recording-format decoders.
//
// # Source Interface
//
// The Source interface is the currency of the processing pipeline:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Format decoders (formats/wav, formats/mp3, ...) produce Sources from
// recordings, the modulator emits a chirp as a finite Source, and the
// offline decode path drains a Source into the demodulator.
//
// # Conditioning Recordings
//
// The demodulator wants mono PCM at the protocol rate. ToMonoRate
// builds the conditioning chain for arbitrary recordings:
//
//	src, _ := wav.Decoder{}.Decode(file)        // e.g. 48 kHz stereo
//	conditioned := audio.ToMonoRate(src, 44100) // mono 44.1 kHz
//
// MonoMixer averages channels; Resampler converts rates with Catmull-Rom
// cubic interpolation.
//
// # Sample Format
//
// Samples are float32 in the range [-1.0, 1.0]: 0.0 is silence, ±1.0 is
// full scale. ReadSamples returns io.EOF when the stream is finished;
// a short read with io.EOF still delivers the final samples.
package audio
