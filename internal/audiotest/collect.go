// SPDX-License-Identifier: EPL-2.0

package audiotest

import "io"

// sampleReader is the subset of audio.Source needed to drain a stream.
type sampleReader interface {
	ReadSamples(dst []float32) (int, error)
}

// Collect drains src into a single slice. Returns any error other than
// io.EOF.
func Collect(src sampleReader) ([]float32, error) {
	var out []float32
	buf := make([]float32, 4096)
	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}
