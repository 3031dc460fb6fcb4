// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/soniclink/chirp/codec"
	"github.com/soniclink/chirp/modem"
	"github.com/soniclink/chirp/protocol"
)

// mockDevice stands in for the hardware: tests drive the data callback
// by hand, one period at a time, on their own goroutine.
type mockDevice struct {
	mu      sync.Mutex
	open    bool
	block   int
	fn      DataFunc
	openErr error
	volume  float64
}

func (m *mockDevice) Open(sampleRate, blockSize int, fn DataFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openErr != nil {
		return m.openErr
	}
	m.open = true
	m.block = blockSize
	m.fn = fn
	return nil
}

func (m *mockDevice) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	m.fn = nil
	return nil
}

func (m *mockDevice) OutputVolume() float64 {
	if m.volume != 0 {
		return m.volume
	}
	return 1
}

// step runs one device period with the given capture block (nil means
// silence) and returns the playback block the engine produced.
func (m *mockDevice) step(in []float32) []float32 {
	m.mu.Lock()
	fn := m.fn
	block := m.block
	m.mu.Unlock()
	if fn == nil {
		return nil
	}

	out := make([]float32, block)
	if in == nil {
		in = make([]float32, block)
	}
	fn(out, in)
	return out
}

// feed pushes pcm through the device in period-sized blocks, padding
// the tail with silence, and returns everything played back.
func (m *mockDevice) feed(pcm []float32) []float32 {
	var played []float32
	for off := 0; off < len(pcm); off += m.block {
		end := off + m.block
		block := make([]float32, m.block)
		if end > len(pcm) {
			end = len(pcm)
		}
		copy(block, pcm[off:end])
		played = append(played, m.step(block)...)
	}
	return played
}

func silence(n int) []float32 { return make([]float32, n) }

type harness struct {
	eng    *Engine
	dev    *mockDevice
	states chan State
	chirps chan modem.Result
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	h := &harness{
		dev:    &mockDevice{},
		states: make(chan State, 64),
		chirps: make(chan modem.Result, 16),
	}
	cfg.Device = h.dev
	h.eng = New(cfg)
	h.eng.SetCallbacks(Callbacks{
		ChirpHeard:   func(r modem.Result) { h.chirps <- r },
		StateChanged: func(s State) { h.states <- s },
	})
	t.Cleanup(func() { _ = h.eng.Stop() })
	return h
}

func (h *harness) waitState(t *testing.T, want State) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-h.states:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %v (engine at %v)", want, h.eng.State())
		}
	}
}

func (h *harness) waitChirp(t *testing.T) modem.Result {
	t.Helper()
	select {
	case r := <-h.chirps:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a decoded chirp")
		return modem.Result{}
	}
}

func (h *harness) noChirp(t *testing.T) {
	t.Helper()
	select {
	case r := <-h.chirps:
		t.Fatalf("unexpected chirp %q", r.Identifier)
	case <-time.After(100 * time.Millisecond):
	}
}

func chirpPCM(t *testing.T, p protocol.Protocol, id string) []float32 {
	t.Helper()
	seq, err := codec.New(p).EncodeIdentifier(id)
	if err != nil {
		t.Fatalf("EncodeIdentifier(%q) error = %v", id, err)
	}
	src := modem.NewModulator(p).Modulate(seq)
	pcm, err := drain(src)
	if err != nil {
		t.Fatalf("drain modulator: %v", err)
	}
	return pcm
}

func TestEngine_StartStop(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Config{})
	if got := h.eng.State(); got != StateStopped {
		t.Fatalf("initial State() = %v, want %v", got, StateStopped)
	}

	if err := h.eng.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	h.waitState(t, StateReady)

	// Idempotent while running.
	if err := h.eng.Start(); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if got := h.eng.State(); got != StateReady {
		t.Fatalf("State() = %v, want %v", got, StateReady)
	}

	if err := h.eng.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	h.waitState(t, StateStopped)
	if h.dev.open {
		t.Error("device still open after Stop")
	}

	// Stop is unconditional and repeatable.
	if err := h.eng.Stop(); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}
}

func TestEngine_StartDeviceError(t *testing.T) {
	t.Parallel()

	dev := &mockDevice{openErr: errors.New("no such device")}
	eng := New(Config{Device: dev})

	err := eng.Start()
	if !errors.Is(err, ErrDevice) {
		t.Fatalf("Start() error = %v, want ErrDevice", err)
	}
	if got := eng.State(); got != StateStopped {
		t.Errorf("State() after failed Start = %v, want %v", got, StateStopped)
	}
}

func TestEngine_ListenRequiresRunning(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Config{})
	if err := h.eng.Listen(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Listen() error = %v, want ErrNotRunning", err)
	}

	if err := h.eng.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := h.eng.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	h.waitState(t, StateReceiving)
}

func TestEngine_TransmitRoundTrip(t *testing.T) {
	t.Parallel()

	p := protocol.Standard()
	id := protocol.RandomIdentifier(p)

	h := newHarness(t, Config{Protocol: p})
	if err := h.eng.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := h.eng.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	h.waitState(t, StateReceiving)

	seq, err := codec.New(p).EncodeIdentifier(id)
	if err != nil {
		t.Fatalf("EncodeIdentifier() error = %v", err)
	}
	if err := h.eng.Transmit(modem.NewModulator(p).Modulate(seq)); err != nil {
		t.Fatalf("Transmit() error = %v", err)
	}
	h.waitState(t, StateChirping)

	// Play the transmission out and capture it, as a nearby device
	// would hear it.
	var heard []float32
	total := (p.TotalSymbols() + 1) * p.SymbolSamples
	for len(heard) < total {
		heard = append(heard, h.dev.step(nil)...)
	}

	// The queue drained, so the engine returns to receiving.
	h.waitState(t, StateReceiving)

	// Feed the recording back in after a stretch of room silence.
	h.dev.feed(silence(8 * 1024))
	h.dev.feed(append(heard, silence(4096)...))

	res := h.waitChirp(t)
	if res.Identifier != id {
		t.Errorf("heard %q, want %q", res.Identifier, id)
	}
}

func TestEngine_TransmitGain(t *testing.T) {
	t.Parallel()

	p := protocol.Standard()
	h := newHarness(t, Config{Protocol: p, Volume: 0.5})
	if err := h.eng.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	seq, err := codec.New(p).EncodeIdentifier(protocol.RandomIdentifier(p))
	if err != nil {
		t.Fatalf("EncodeIdentifier() error = %v", err)
	}
	if err := h.eng.Transmit(modem.NewModulator(p).Modulate(seq)); err != nil {
		t.Fatalf("Transmit() error = %v", err)
	}

	var peak float32
	for i := 0; i < 64; i++ {
		for _, s := range h.dev.step(nil) {
			if s > peak {
				peak = s
			}
			if -s > peak {
				peak = -s
			}
		}
	}
	// Full-scale synthesis is 0.8; at half gain the peak sits near 0.4.
	if peak < 0.3 || peak > 0.45 {
		t.Errorf("peak playback amplitude = %v, want ≈0.4", peak)
	}
}

func TestEngine_TransmitBusy(t *testing.T) {
	t.Parallel()

	p := protocol.Standard()
	h := newHarness(t, Config{Protocol: p})

	seq, err := codec.New(p).EncodeIdentifier(protocol.RandomIdentifier(p))
	if err != nil {
		t.Fatalf("EncodeIdentifier() error = %v", err)
	}

	if err := h.eng.Transmit(modem.NewModulator(p).Modulate(seq)); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Transmit() while stopped error = %v, want ErrNotRunning", err)
	}

	if err := h.eng.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := h.eng.Transmit(modem.NewModulator(p).Modulate(seq)); err != nil {
		t.Fatalf("Transmit() error = %v", err)
	}
	if err := h.eng.Transmit(modem.NewModulator(p).Modulate(seq)); !errors.Is(err, ErrBusy) {
		t.Fatalf("overlapping Transmit() error = %v, want ErrBusy", err)
	}
}

func TestEngine_StopAbortsDecode(t *testing.T) {
	t.Parallel()

	p := protocol.Standard()
	id := protocol.RandomIdentifier(p)
	h := newHarness(t, Config{Protocol: p})

	if err := h.eng.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := h.eng.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	h.waitState(t, StateReceiving)

	// Preamble plus a few symbols: enough to be mid-decode.
	pcm := chirpPCM(t, p, id)
	h.dev.feed(silence(8 * 1024))
	h.dev.feed(pcm[:5*p.SymbolSamples])

	if err := h.eng.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	h.waitState(t, StateStopped)

	// The aborted attempt must not surface, then or later.
	h.noChirp(t)
}

func TestEngine_ProtocolSwapDeferredPastDecode(t *testing.T) {
	t.Parallel()

	std := protocol.Standard()
	ultra := protocol.Ultrasonic()
	stdID := protocol.RandomIdentifier(std)
	ultraID := protocol.RandomIdentifier(ultra)

	h := newHarness(t, Config{Protocol: std})
	if err := h.eng.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := h.eng.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	h.waitState(t, StateReceiving)

	// Get a decode attempt in flight, then swap protocols under it.
	pcm := chirpPCM(t, std, stdID)
	h.dev.feed(silence(8 * 1024))
	h.dev.feed(pcm[:5*std.SymbolSamples])
	h.eng.SetProtocol(ultra)

	// The in-flight attempt completes under the protocol it started
	// with.
	h.dev.feed(pcm[5*std.SymbolSamples:])
	h.dev.feed(silence(4096))
	if res := h.waitChirp(t); res.Identifier != stdID {
		t.Fatalf("heard %q, want %q", res.Identifier, stdID)
	}

	// Then the swap lands and the new protocol decodes.
	h.dev.feed(silence(8 * 1024))
	h.dev.feed(append(chirpPCM(t, ultra, ultraID), silence(4096)...))
	if res := h.waitChirp(t); res.Identifier != ultraID {
		t.Fatalf("heard %q, want %q", res.Identifier, ultraID)
	}
}

func TestEngine_BufferUpdated(t *testing.T) {
	t.Parallel()

	blocks := make(chan int, 64)
	dev := &mockDevice{}
	eng := New(Config{Device: dev})
	eng.SetCallbacks(Callbacks{
		BufferUpdated: func(block []float32) { blocks <- len(block) },
	})
	t.Cleanup(func() { _ = eng.Stop() })

	if err := eng.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for i := 0; i < 4; i++ {
		dev.step(nil)
		select {
		case n := <-blocks:
			if n != 256 {
				t.Fatalf("block %d: len = %d, want 256", i, n)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("block %d: no buffer-updated callback", i)
		}
	}
}

// A full event ring must not cost the callback a pool buffer: returns
// to the pool happen only on the dispatch side, so the callback skips
// the capture copy instead of pushing the buffer back itself.
func TestEngine_BlockPoolIntactWhenEventsFull(t *testing.T) {
	t.Parallel()

	eng := New(Config{Device: &mockDevice{}})
	eng.state.Store(int32(StateReady))

	for eng.events.push(event{kind: eventTxDone}) {
	}
	poolBefore := eng.blockPool.len()

	out := make([]float32, eng.cfg.BlockSize)
	in := make([]float32, eng.cfg.BlockSize)
	eng.onBlock(out, in)

	if got := eng.blockPool.len(); got != poolBefore {
		t.Errorf("block pool len = %d after a dropped block, want %d", got, poolBefore)
	}
	if got := eng.events.len(); got != eng.events.cap() {
		t.Errorf("event ring len = %d, want %d (still full)", got, eng.events.cap())
	}
}

func TestEngine_Volume(t *testing.T) {
	t.Parallel()

	dev := &mockDevice{volume: 0.7}
	eng := New(Config{Device: dev})

	if got := eng.Volume(); got != 1 {
		t.Errorf("default Volume() = %v, want 1", got)
	}

	eng.SetVolume(2)
	if got := eng.Volume(); got != 1 {
		t.Errorf("Volume() after SetVolume(2) = %v, want 1", got)
	}
	eng.SetVolume(-0.5)
	if got := eng.Volume(); got != 0 {
		t.Errorf("Volume() after SetVolume(-0.5) = %v, want 0", got)
	}
	eng.SetVolume(0.25)
	if got := eng.Volume(); got != 0.25 {
		t.Errorf("Volume() = %v, want 0.25", got)
	}

	// Hardware volume is reported as-is; software gain cannot touch it.
	if got := eng.OutputVolume(); got != 0.7 {
		t.Errorf("OutputVolume() = %v, want 0.7", got)
	}
}

func TestEngine_StreamingToggle(t *testing.T) {
	t.Parallel()

	eng := New(Config{Device: &mockDevice{}})
	if eng.Streaming() {
		t.Fatal("Streaming() = true by default")
	}
	eng.SetStreaming(true)
	if !eng.Streaming() {
		t.Fatal("Streaming() = false after SetStreaming(true)")
	}
}

func TestEngine_SampleRate(t *testing.T) {
	t.Parallel()

	eng := New(Config{Device: &mockDevice{}})
	if got := eng.SampleRate(); got != protocol.Standard().SampleRate {
		t.Errorf("SampleRate() = %d, want %d", got, protocol.Standard().SampleRate)
	}
}
