// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"

	"github.com/gen2brain/malgo"

	"github.com/soniclink/chirp/utils"
)

// malgoDevice drives the default capture and playback devices through
// miniaudio as a single duplex stream: mono, 16-bit, converted to the
// float32 pipeline format at the callback boundary.
type malgoDevice struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device

	in []float32
}

// NewDefaultDevice returns a Device backed by the platform's default
// audio hardware.
func NewDefaultDevice() Device {
	return &malgoDevice{}
}

func (d *malgoDevice) Open(sampleRate, blockSize int, fn DataFunc) error {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}
	d.ctx = ctx

	cfg := malgo.DefaultDeviceConfig(malgo.Duplex)
	cfg.SampleRate = uint32(sampleRate)
	cfg.PeriodSizeInFrames = uint32(blockSize)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = 1

	d.in = make([]float32, blockSize)
	out := make([]float32, blockSize)

	onData := func(pOutput, pInput []byte, frameCount uint32) {
		n := int(frameCount)
		if n > len(d.in) {
			n = len(d.in)
		}

		for i := 0; i < n; i++ {
			d.in[i] = utils.Int16ToFloat32(int16(pInput[i*2]) | int16(pInput[i*2+1])<<8)
		}
		for i := range out[:n] {
			out[i] = 0
		}

		fn(out[:n], d.in[:n])

		for i, s := range out[:n] {
			v := utils.Float32ToInt16(s)
			pOutput[i*2] = byte(v)
			pOutput[i*2+1] = byte(v >> 8)
		}
	}

	device, err := malgo.InitDevice(ctx.Context, cfg, malgo.DeviceCallbacks{Data: onData})
	if err != nil {
		d.teardownContext()
		return fmt.Errorf("init duplex device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		d.teardownContext()
		return fmt.Errorf("start duplex device: %w", err)
	}

	d.device = device
	return nil
}

func (d *malgoDevice) Close() error {
	if d.device != nil {
		d.device.Uninit()
		d.device = nil
	}
	d.teardownContext()
	return nil
}

// OutputVolume reports full scale: miniaudio exposes no portable
// master-volume query, and the engine treats hardware volume as
// read-only either way.
func (d *malgoDevice) OutputVolume() float64 { return 1 }

func (d *malgoDevice) teardownContext() {
	if d.ctx == nil {
		return
	}
	_ = d.ctx.Uninit()
	d.ctx.Free()
	d.ctx = nil
}
