// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soniclink/chirp/audio"
	"github.com/soniclink/chirp/modem"
	"github.com/soniclink/chirp/protocol"
)

// Config tunes an Engine. Zero values select defaults.
type Config struct {
	// Protocol selects tone layout and sample rate. Default: standard.
	Protocol protocol.Protocol

	// Streaming enables receive-side deduplication of repeated
	// broadcasts.
	Streaming bool

	// StreamCooldown overrides the streaming suppression window.
	StreamCooldown time.Duration

	// BlockSize is the device period in frames. Default 256.
	BlockSize int

	// Volume is the initial software output gain in [0, 1]. Default 1.
	Volume float64

	// Device overrides the audio device. Default: platform hardware.
	Device Device
}

// Callbacks is the notification surface an application can attach.
// All callbacks run on the engine's dispatch goroutine, off the
// real-time path; they must return promptly and must not call Stop.
type Callbacks struct {
	// ChirpHeard fires once per successfully decoded chirp.
	ChirpHeard func(modem.Result)

	// BufferUpdated fires with each captured block. The slice is only
	// valid for the duration of the call.
	BufferUpdated func(block []float32)

	// StateChanged fires after every engine state transition.
	StateChanged func(State)
}

type eventKind int

const (
	eventChirp eventKind = iota
	eventTxDone
	eventRxState
	eventBuffer
)

// event crosses from the real-time device callback to the dispatch
// goroutine through a lock-free ring, so the callback never takes a
// lock or waits on the application.
type event struct {
	kind  eventKind
	chirp *modem.Result
	rx    modem.State
	block []float32
}

// Engine orchestrates duplex device I/O and drives the modulator and
// demodulator. It is the single authority over State: every transition
// is validated in one place, and the state is mutated only from the
// controller side (API methods and the dispatch goroutine), never from
// the device callback.
type Engine struct {
	mu  sync.Mutex
	cfg Config
	dev Device
	cbs Callbacks

	running bool
	state   atomic.Int32

	gain atomic.Uint64 // math.Float64bits of the software output gain

	// demod is owned by the device callback while the engine runs;
	// controller-side swaps go through nextDemod and take effect only
	// between decode attempts.
	demod     *modem.Demodulator
	nextDemod atomic.Pointer[modem.Demodulator]
	listenOn  atomic.Bool
	prevRx    modem.State

	tx       *ring[float32]
	txActive atomic.Bool

	events    *ring[event]
	blockPool *ring[[]float32]

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// New builds a stopped engine. Start opens the device.
func New(cfg Config) *Engine {
	if cfg.Protocol.Name == "" {
		cfg.Protocol = protocol.Standard()
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = 256
	}
	if cfg.Volume == 0 {
		cfg.Volume = 1
	}
	if cfg.Device == nil {
		cfg.Device = NewDefaultDevice()
	}

	e := &Engine{
		cfg:  cfg,
		dev:  cfg.Device,
		wake: make(chan struct{}, 1),
		// Room for several queued chirps at the widest builtin layout.
		tx:        newRing[float32](4 * (cfg.Protocol.TotalSymbols() + 1) * cfg.Protocol.SymbolSamples),
		events:    newRing[event](256),
		blockPool: newRing[[]float32](8),
	}
	for i := 0; i < 8; i++ {
		e.blockPool.push(make([]float32, cfg.BlockSize))
	}

	e.demod = modem.NewDemodulator(e.demodConfig(cfg.Protocol))
	e.SetVolume(cfg.Volume)
	e.state.Store(int32(StateStopped))
	return e
}

func (e *Engine) demodConfig(p protocol.Protocol) modem.Config {
	return modem.Config{
		Protocol:       p,
		Streaming:      e.cfg.Streaming,
		StreamCooldown: e.cfg.StreamCooldown,
	}
}

// State returns the current engine state. Safe from any goroutine.
func (e *Engine) State() State { return State(e.state.Load()) }

// SampleRate reports the engine's fixed processing rate in Hz.
func (e *Engine) SampleRate() int { return e.cfg.Protocol.SampleRate }

// Volume returns the software output gain in [0, 1].
func (e *Engine) Volume() float64 {
	return math.Float64frombits(e.gain.Load())
}

// SetVolume sets the software output gain, clamped to [0, 1]. It is
// applied to modulated output only and is independent of the hardware
// volume.
func (e *Engine) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	e.gain.Store(math.Float64bits(v))
}

// OutputVolume reports the hardware output level. Read-only: the
// engine cannot override it.
func (e *Engine) OutputVolume() float64 { return e.dev.OutputVolume() }

// SetCallbacks replaces the notification surface.
func (e *Engine) SetCallbacks(cbs Callbacks) {
	e.mu.Lock()
	e.cbs = cbs
	e.mu.Unlock()
}

// Start opens the duplex device and moves Stopped to Ready. Idempotent
// while running. A device failure wraps ErrDevice and leaves the
// engine stopped.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	e.tx.reset()
	e.events.reset()
	e.txActive.Store(false)
	e.done = make(chan struct{})
	dev := e.dev
	rate := e.cfg.Protocol.SampleRate
	block := e.cfg.BlockSize
	e.mu.Unlock()

	if err := dev.Open(rate, block, e.onBlock); err != nil {
		return fmt.Errorf("engine: open device: %w: %v", ErrDevice, err)
	}

	e.mu.Lock()
	e.running = true
	e.wg.Add(1)
	go e.dispatch(e.done, e.wake)
	notify := e.setStateLocked(StateReady)
	e.mu.Unlock()

	notify()
	return nil
}

// Stop tears down capture and playback unconditionally: any in-flight
// decode attempt is aborted without emitting a chirp, queued output is
// discarded, pending notifications are dropped, and the engine ends in
// Stopped. No buffer-updated callbacks fire after Stop returns.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = false
	dev := e.dev
	done := e.done
	e.mu.Unlock()

	closeErr := dev.Close()
	close(done)
	e.wg.Wait()

	e.mu.Lock()
	e.listenOn.Store(false)
	e.demod.Stop()
	if next := e.nextDemod.Swap(nil); next != nil {
		e.demod = next
	}
	e.prevRx = modem.StateIdle
	e.txActive.Store(false)
	e.tx.reset()
	notify := e.setStateLocked(StateStopped)
	e.mu.Unlock()

	notify()
	if closeErr != nil {
		return fmt.Errorf("engine: close device: %w: %v", ErrDevice, closeErr)
	}
	return nil
}

// Listen begins receiving: the demodulator starts watching captured
// blocks and the engine moves to Receiving.
func (e *Engine) Listen() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrNotRunning
	}
	e.listenOn.Store(true)
	var notify func()
	if e.State() == StateReady {
		notify = e.setStateLocked(StateReceiving)
	}
	e.mu.Unlock()

	if notify != nil {
		notify()
	}
	return nil
}

// Transmit queues one chirp for playback and moves to Chirping. The
// source is drained up front (resampled and mixed down if its format
// differs from the engine's); playback then runs on the device clock
// with the software gain applied per block. Completion is signaled by
// the transition back to Ready (and on to Receiving when listening).
func (e *Engine) Transmit(src audio.Source) error {
	rate := e.SampleRate()
	if src.SampleRate() != rate || src.Channels() != 1 {
		src = audio.ToMonoRate(src, rate)
	}

	pcm, err := drain(src)
	if err != nil {
		return fmt.Errorf("engine: read chirp source: %w", err)
	}

	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrNotRunning
	}
	if e.txActive.Load() || e.State() == StateChirping || len(pcm) > e.tx.cap()-e.tx.len() {
		e.mu.Unlock()
		return ErrBusy
	}

	var notifies []func()
	switch e.State() {
	case StateReceiving, StateStreaming:
		notifies = append(notifies, e.setStateLocked(StateReady))
	}
	notifies = append(notifies, e.setStateLocked(StateChirping))

	// Publish the whole waveform in one push so the device callback
	// never observes a partially queued chirp.
	e.txActive.Store(true)
	e.tx.pushSlice(pcm)
	e.mu.Unlock()

	for _, fn := range notifies {
		fn()
	}
	return nil
}

// SetProtocol swaps the active receive protocol. While the engine runs
// the swap is deferred past any in-flight decode attempt, which
// completes or times out under the protocol it started with.
func (e *Engine) SetProtocol(p protocol.Protocol) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg.Protocol = p
	e.replaceDemodLocked(modem.NewDemodulator(e.demodConfig(p)))
}

// SetStreaming toggles streaming-mode deduplication. Takes effect like
// a protocol swap: past any in-flight decode attempt.
func (e *Engine) SetStreaming(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg.Streaming = on
	e.replaceDemodLocked(modem.NewDemodulator(e.demodConfig(e.cfg.Protocol)))
}

// Streaming reports whether streaming-mode deduplication is enabled.
func (e *Engine) Streaming() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Streaming
}

func (e *Engine) replaceDemodLocked(nd *modem.Demodulator) {
	if !e.running {
		e.demod.Stop()
		e.demod = nd
		e.nextDemod.Store(nil)
		return
	}
	e.nextDemod.Store(nd)
}

// setStateLocked validates and applies a transition, returning the
// notification to fire once the lock is released. Invalid transitions
// are ignored; with every mutation funneled through here they indicate
// a stale event, not a caller error.
func (e *Engine) setStateLocked(to State) func() {
	from := State(e.state.Load())
	if from == to || !validTransition(from, to) {
		return func() {}
	}
	e.state.Store(int32(to))
	cb := e.cbs.StateChanged
	if cb == nil {
		return func() {}
	}
	return func() { cb(to) }
}

// onBlock is the real-time device callback: fill the playback block
// from the transmit queue, feed the captured block to the demodulator,
// queue notifications. No locks, no allocation, no I/O.
func (e *Engine) onBlock(out, in []float32) {
	if e.State() == StateStopped {
		return
	}

	if n := e.tx.popSlice(out); n > 0 {
		if g := float32(e.Volume()); g != 1 {
			for i := range out[:n] {
				out[i] *= g
			}
		}
		if e.tx.len() == 0 && e.txActive.CompareAndSwap(true, false) {
			e.postEvent(event{kind: eventTxDone})
		}
	}

	e.adoptPending()

	d := e.demod
	if e.listenOn.Load() && !e.txActive.Load() {
		// Half-duplex: input is ignored while our own chirp plays.
		if d.State() == modem.StateIdle {
			d.Start()
		}
		if res := d.ProcessBlock(in); res != nil {
			e.postEvent(event{kind: eventChirp, chirp: res})
		}
	} else if d.State() != modem.StateIdle {
		d.Stop()
	}

	if rx := d.State(); rx != e.prevRx {
		e.prevRx = rx
		e.postEvent(event{kind: eventRxState, rx: rx})
	}

	// Buffers return to the pool only on the dispatch side, so check
	// for event-ring room before taking one. This callback is the
	// ring's only producer; space can only grow underneath the check.
	if e.events.len() < e.events.cap() {
		if buf, ok := e.blockPool.pop(); ok {
			n := copy(buf[:cap(buf)], in)
			e.events.push(event{kind: eventBuffer, block: buf[:n]})
		}
	}

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// adoptPending installs a swapped-in demodulator, but never under an
// attempt in flight.
func (e *Engine) adoptPending() {
	next := e.nextDemod.Load()
	if next == nil {
		return
	}
	switch e.demod.State() {
	case modem.StateSynchronizing, modem.StateDecoding:
		return
	}
	if e.nextDemod.CompareAndSwap(next, nil) {
		e.demod.Stop()
		e.demod = next
	}
}

func (e *Engine) postEvent(ev event) {
	e.events.push(ev)
}

// dispatch delivers queued events to application callbacks. It stops
// dead on done: events still queued at Stop are dropped, which is what
// guarantees no callbacks fire after Stop.
func (e *Engine) dispatch(done <-chan struct{}, wake <-chan struct{}) {
	defer e.wg.Done()
	for {
		select {
		case <-done:
			return
		case <-wake:
		}
		for {
			select {
			case <-done:
				return
			default:
			}
			ev, ok := e.events.pop()
			if !ok {
				break
			}
			e.handle(ev)
		}
	}
}

func (e *Engine) handle(ev event) {
	switch ev.kind {
	case eventChirp:
		e.mu.Lock()
		cb := e.cbs.ChirpHeard
		e.mu.Unlock()
		if cb != nil {
			cb(*ev.chirp)
		}

	case eventTxDone:
		e.mu.Lock()
		var notifies []func()
		if e.State() == StateChirping {
			notifies = append(notifies, e.setStateLocked(StateReady))
			if e.listenOn.Load() {
				notifies = append(notifies, e.setStateLocked(StateReceiving))
			}
		}
		e.mu.Unlock()
		for _, fn := range notifies {
			fn()
		}

	case eventRxState:
		e.mu.Lock()
		var notify func()
		switch {
		case ev.rx == modem.StateStreamSuppressing && e.State() == StateReceiving:
			notify = e.setStateLocked(StateStreaming)
		case ev.rx != modem.StateStreamSuppressing && e.State() == StateStreaming:
			notify = e.setStateLocked(StateReceiving)
		}
		e.mu.Unlock()
		if notify != nil {
			notify()
		}

	case eventBuffer:
		e.mu.Lock()
		cb := e.cbs.BufferUpdated
		e.mu.Unlock()
		if cb != nil {
			cb(ev.block)
		}
		e.blockPool.push(ev.block[:cap(ev.block)])
	}
}

// drain reads a finite source to completion.
func drain(src audio.Source) ([]float32, error) {
	var pcm []float32
	buf := make([]float32, 4096)
	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			pcm = append(pcm, buf[:n]...)
		}
		if err == io.EOF {
			return pcm, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
