// SPDX-License-Identifier: EPL-2.0

package modem

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/soniclink/chirp/codec"
	"github.com/soniclink/chirp/protocol"
)

// State is the demodulator's receive state.
type State int32

const (
	// StateIdle: not processing; ProcessBlock discards input.
	StateIdle State = iota
	// StateListening: watching band energy for a transmission onset.
	StateListening
	// StateSynchronizing: onset seen, searching for the preamble sweep.
	StateSynchronizing
	// StateDecoding: locked, accumulating one symbol per window.
	StateDecoding
	// StateStreamSuppressing: streaming mode, recently reported a chirp;
	// identical re-decodes are swallowed until the cooldown elapses.
	StateStreamSuppressing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateSynchronizing:
		return "synchronizing"
	case StateDecoding:
		return "decoding"
	case StateStreamSuppressing:
		return "stream-suppressing"
	default:
		return "unknown"
	}
}

// Result is a completed, checksum-valid decode. It is only ever
// produced after the codec accepts the full symbol sequence.
type Result struct {
	// Identifier is the decoded payload.
	Identifier string
	// Payload holds the raw symbol values of the identifier.
	Payload []int
	// Confidence in [0, 1]: mean margin of the winning tone over the
	// runner-up across all symbol windows. Low values mean the decode
	// barely cleared the noise.
	Confidence float64
	// ReceivedAt is the wall-clock receipt time.
	ReceivedAt time.Time
}

// Config tunes a Demodulator. Zero values select defaults.
type Config struct {
	// Protocol the demodulator listens under. Required.
	Protocol protocol.Protocol

	// Streaming enables stream deduplication: after a successful
	// decode, identical identifiers are reported once per cooldown
	// window instead of once per broadcast.
	Streaming bool

	// StreamCooldown is the streaming-mode suppression window.
	// Default: twice the on-air duration of one chirp.
	StreamCooldown time.Duration

	// OnsetSNR is the factor (in dB) by which band energy must exceed
	// the adaptive noise floor to count as an onset. Default 9 dB.
	OnsetSNR float64

	// DwellHops is how many consecutive hops must clear the onset
	// threshold before synchronization starts. Default 2.
	DwellHops int

	// SyncWindows bounds the preamble search: if no correlation lock
	// is found within this many symbol windows of the onset, the
	// attempt times out back to listening. Default 4.
	SyncWindows int
}

// Hop size for onset detection, in samples. Small enough that two hops
// of dwell still land inside the preamble window.
const onsetHop = 1024

// driftMax is the slack kept around the symbol grid for timing
// re-centering, in samples.
const driftMax = 64

// Demodulator recovers symbol sequences from streamed PCM blocks.
//
// ProcessBlock must be called from a single goroutine (the audio
// callback path); it never blocks on locks and does no I/O. State may
// be read from any goroutine.
//
// Failures (checksum mismatches, sync timeouts, onsets that fizzle)
// are silently recoverable: the demodulator drops the attempt and
// returns to listening without surfacing anything. Only complete,
// checksum-valid decodes produce a Result. Near the detection threshold
// this biases toward dropped chirps rather than corrupted ones. At most
// one decode attempt is in flight at a time: energy onsets seen while
// already synchronizing or decoding are ignored until the current
// attempt resolves.
type Demodulator struct {
	cfg      Config
	p        protocol.Protocol
	cdc      codec.Codec
	preamble []float32
	tones    []float64 // candidate tone frequencies, one per symbol value

	state atomic.Int32

	pending   []float32 // unconsumed samples
	evaluated int       // samples of pending already hop-scanned (listening)

	noiseFloor float64
	hasFloor   bool
	dwell      int

	scanOffset int // next correlation offset to try (synchronizing)

	symbols    []int
	confidence float64
	drift      int

	processed      int64 // total samples processed, the demodulator clock
	lastIdentifier string
	lastEmitted    int64 // processed count at last emission
	emitted        bool  // at least one chirp reported

	now func() time.Time
}

// NewDemodulator returns a demodulator in the Idle state.
func NewDemodulator(cfg Config) *Demodulator {
	if cfg.OnsetSNR == 0 {
		cfg.OnsetSNR = 9
	}
	if cfg.DwellHops == 0 {
		cfg.DwellHops = 2
	}
	if cfg.SyncWindows == 0 {
		cfg.SyncWindows = 4
	}

	p := cfg.Protocol
	if cfg.StreamCooldown == 0 {
		cfg.StreamCooldown = 2 * time.Duration(p.TotalSymbols()+1) * p.SymbolDuration()
	}

	tones := make([]float64, p.AlphabetSize())
	for v := range tones {
		tones[v] = p.ToneFrequency(v)
	}

	d := &Demodulator{
		cfg:      cfg,
		p:        p,
		cdc:      codec.New(p),
		preamble: Sweep(p),
		tones:    tones,
		symbols:  make([]int, 0, p.TotalSymbols()),
		now:      time.Now,
	}
	d.state.Store(int32(StateIdle))
	return d
}

// Protocol returns the protocol the demodulator listens under.
func (d *Demodulator) Protocol() protocol.Protocol { return d.p }

// State returns the current receive state. Safe from any goroutine.
func (d *Demodulator) State() State { return State(d.state.Load()) }

// IsStreaming reports whether a stream is currently being suppressed.
func (d *Demodulator) IsStreaming() bool { return d.State() == StateStreamSuppressing }

// Start moves Idle to Listening. No-op in any other state.
func (d *Demodulator) Start() {
	d.state.CompareAndSwap(int32(StateIdle), int32(StateListening))
}

// Stop aborts any in-flight attempt and returns to Idle. Nothing is
// emitted for a partially decoded chirp.
func (d *Demodulator) Stop() {
	d.resetAttempt()
	d.pending = d.pending[:0]
	d.evaluated = 0
	d.hasFloor = false
	d.state.Store(int32(StateIdle))
}

// resetAttempt clears per-attempt accumulators without touching the
// sample buffer or the noise floor.
func (d *Demodulator) resetAttempt() {
	d.dwell = 0
	d.scanOffset = 0
	d.symbols = d.symbols[:0]
	d.confidence = 0
	d.drift = 0
}

// ProcessBlock consumes one block of mono PCM at the protocol rate and
// advances the receive state machine. It returns a non-nil Result for
// each completed, checksum-valid decode, at most one per call.
func (d *Demodulator) ProcessBlock(block []float32) *Result {
	if d.State() == StateIdle {
		return nil
	}

	d.pending = append(d.pending, block...)
	d.processed += int64(len(block))

	d.maybeExpireSuppression()

	for {
		switch d.State() {
		case StateListening, StateStreamSuppressing:
			if !d.stepListen() {
				return nil
			}
		case StateSynchronizing:
			if !d.stepSync() {
				return nil
			}
		case StateDecoding:
			res, progressed := d.stepDecode()
			if res != nil {
				return res
			}
			if !progressed {
				return nil
			}
		default:
			return nil
		}
	}
}

// maybeExpireSuppression retires the streaming cooldown once enough
// samples have passed since the last emission.
func (d *Demodulator) maybeExpireSuppression() {
	if d.State() != StateStreamSuppressing {
		return
	}
	if d.processed-d.lastEmitted >= d.cooldownSamples() {
		d.state.Store(int32(StateListening))
	}
}

func (d *Demodulator) cooldownSamples() int64 {
	return int64(d.cfg.StreamCooldown * time.Duration(d.p.SampleRate) / time.Second)
}

// stepListen hop-scans new samples for band energy above the noise
// floor. Returns false when there is nothing further to process.
func (d *Demodulator) stepListen() bool {
	if len(d.pending)-d.evaluated < onsetHop {
		d.trimListening()
		return false
	}

	hop := d.pending[d.evaluated : d.evaluated+onsetHop]
	d.evaluated += onsetHop

	e := d.bandEnergy(hop)

	if !d.hasFloor {
		d.noiseFloor = e
		d.hasFloor = true
		return true
	}

	threshold := d.noiseFloor * math.Pow(10, d.cfg.OnsetSNR/10)
	if e > threshold {
		d.dwell++
		if d.dwell >= d.cfg.DwellHops {
			// Coarse onset confirmed. Under heavy noise the onset may
			// only fire on the first data tone, so the preamble can be
			// more than a window back; the retained history covers it.
			d.dwell = 0
			d.scanOffset = 0
			d.state.Store(int32(StateSynchronizing))
		}
		return true
	}

	d.dwell = 0
	// Track the floor only on quiet hops so a long transmission does
	// not push the threshold up over itself.
	const alpha = 0.05
	d.noiseFloor = (1-alpha)*d.noiseFloor + alpha*e
	return true
}

// trimListening drops samples that can no longer matter. Two symbol
// windows of history are kept so the preamble is still in the buffer
// when the onset only fires on the tones that follow it.
func (d *Demodulator) trimListening() {
	retain := 2 * d.p.SymbolSamples
	if excess := d.evaluated - retain; excess > 0 {
		d.pending = d.pending[excess:]
		d.evaluated -= excess
	}
}

// stepSync searches for the preamble by normalized cross-correlation,
// coarse first, refined around the first candidate crossing. Returns
// false when more samples are needed.
//
// The sweep's autocorrelation collapses within a few samples of the
// true start, so the coarse grid must be fine enough that one grid
// point always lands inside the peak's shoulder. The lock threshold is
// applied to the refined peak, not the grid sample.
func (d *Demodulator) stepSync() bool {
	w := d.p.SymbolSamples
	maxSearch := d.cfg.SyncWindows * w

	const coarseStep = 2

	for d.scanOffset+w <= len(d.pending) {
		if d.scanOffset > maxSearch {
			// Timed out: whatever tripped the onset was not a chirp.
			d.abortToListening()
			return true
		}

		corr := NormalizedCorrelation(d.pending[d.scanOffset:d.scanOffset+w], d.preamble)
		if corr >= d.p.SyncThreshold {
			best, bestCorr := d.refineSync(d.scanOffset, coarseStep)
			if bestCorr >= d.p.SyncThreshold {
				// Symbols begin one window after the preamble start.
				// Keep driftMax slack in front of the grid for
				// re-centering.
				d.dropFront(best + w - driftMax)
				d.symbols = d.symbols[:0]
				d.confidence = 0
				d.drift = 0
				d.state.Store(int32(StateDecoding))
				return true
			}
		}

		d.scanOffset += coarseStep
	}

	return false
}

// refineSync scans ±step samples around a coarse candidate for the
// correlation peak, returning the peak offset and its correlation.
func (d *Demodulator) refineSync(around, step int) (int, float64) {
	w := d.p.SymbolSamples
	best := around
	bestCorr := NormalizedCorrelation(d.pending[around:around+w], d.preamble)

	for off := around - step; off <= around+step; off++ {
		if off < 0 || off == around || off+w > len(d.pending) {
			continue
		}
		c := NormalizedCorrelation(d.pending[off:off+w], d.preamble)
		if c > bestCorr {
			bestCorr = c
			best = off
		}
	}
	return best, bestCorr
}

// stepDecode consumes one symbol window when available. Returns a
// Result on a completed valid decode; progressed=false when more
// samples are needed.
func (d *Demodulator) stepDecode() (res *Result, progressed bool) {
	w := d.p.SymbolSamples

	// driftMax slack on both sides of the nominal window for the
	// timing scan.
	if len(d.pending) < 2*driftMax+w {
		return nil, false
	}

	start := driftMax + d.drift
	window := d.pending[start : start+w]

	value, margin := d.bestTone(window)
	d.symbols = append(d.symbols, value)
	d.confidence += margin

	d.adjustDrift(start, value)

	// Advance the nominal symbol grid by one window; the slack stays.
	d.dropFront(w)

	if len(d.symbols) < d.p.TotalSymbols() {
		return nil, true
	}

	// Full sequence accumulated: the checksum gate decides.
	id, err := d.cdc.Decode(d.symbols)
	conf := d.confidence / float64(len(d.symbols))
	d.abortToListening()

	if err != nil {
		// Corrupted or partial receive: drop silently, keep listening.
		return nil, true
	}

	emit := d.shouldEmit(id)
	if emit {
		d.lastIdentifier = id
		d.lastEmitted = d.processed
		d.emitted = true
	}
	if d.cfg.Streaming && d.emitted &&
		d.processed-d.lastEmitted < d.cooldownSamples() {
		d.state.Store(int32(StateStreamSuppressing))
	}

	if !emit {
		return nil, true
	}

	payload := make([]int, len(id))
	for i := 0; i < len(id); i++ {
		v, _ := d.p.SymbolValue(id[i])
		payload[i] = v
	}

	return &Result{
		Identifier: id,
		Payload:    payload,
		Confidence: conf,
		ReceivedAt: d.now(),
	}, true
}

// abortToListening ends the current attempt and scans fresh from the
// retained tail.
func (d *Demodulator) abortToListening() {
	d.resetAttempt()
	d.evaluated = len(d.pending)
	d.trimListening()
	d.state.Store(int32(StateListening))
}

// shouldEmit applies streaming-mode deduplication: an identical
// identifier inside the cooldown window is reported only once.
func (d *Demodulator) shouldEmit(id string) bool {
	if !d.cfg.Streaming || !d.emitted {
		return true
	}
	if id != d.lastIdentifier {
		return true
	}
	return d.processed-d.lastEmitted >= d.cooldownSamples()
}

// bestTone scores every candidate tone over the window and returns the
// winning symbol value with its margin over the runner-up.
func (d *Demodulator) bestTone(window []float32) (value int, margin float64) {
	var best, second float64
	for v := 0; v < d.p.AlphabetSize(); v++ {
		e := ToneEnergy(window, d.p.ToneFrequency(v), d.p.SampleRate)
		if e > best {
			second = best
			best = e
			value = v
		} else if e > second {
			second = e
		}
	}
	if best > 0 {
		margin = 1 - second/best
	}
	return value, margin
}

// adjustDrift nudges the symbol grid toward the timing that maximizes
// the detected tone's energy, tolerating clock skew between the
// transmitter's and receiver's audio clocks. Two extra Goertzel passes
// per symbol.
func (d *Demodulator) adjustDrift(start, value int) {
	w := d.p.SymbolSamples
	freq := d.p.ToneFrequency(value)
	const shift = driftMax / 2

	center := ToneEnergy(d.pending[start:start+w], freq, d.p.SampleRate)
	early := ToneEnergy(d.pending[start-shift:start-shift+w], freq, d.p.SampleRate)
	late := ToneEnergy(d.pending[start+shift:start+shift+w], freq, d.p.SampleRate)

	const bias = 1.1 // require a clear win before moving the grid
	switch {
	case early > center*bias && early > late:
		d.drift -= shift / 2
	case late > center*bias && late > early:
		d.drift += shift / 2
	}

	// Keep the grid inside the slack so the scan never leaves pending.
	const limit = driftMax - shift
	if d.drift > limit {
		d.drift = limit
	}
	if d.drift < -limit {
		d.drift = -limit
	}
}

// dropFront discards n consumed samples.
func (d *Demodulator) dropFront(n int) {
	if n < 0 {
		n = 0
	}
	if n > len(d.pending) {
		n = len(d.pending)
	}
	d.pending = d.pending[n:]
	d.evaluated -= n
	if d.evaluated < 0 {
		d.evaluated = 0
	}
	d.scanOffset = 0
}

// bandEnergy estimates in-band power over a hop as the mean energy of
// every candidate tone. Scanning the full alphabet instead of a few
// probe tones is what lets a single data tone stand out against a 0 dB
// noise floor; at one pass per tone per hop it is still well under the
// per-block budget.
func (d *Demodulator) bandEnergy(hop []float32) float64 {
	var sum float64
	for _, f := range d.tones {
		sum += ToneEnergy(hop, f, d.p.SampleRate)
	}
	return sum / float64(len(d.tones))
}
