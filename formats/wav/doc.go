// SPDX-License-Identifier: EPL-2.0

// Package wav decodes WAV recordings into the pipeline sample format
// and encodes modulated chirps back out as 16-bit PCM WAV files, both
// through go-audio/wav.
package wav
