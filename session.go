// SPDX-License-Identifier: EPL-2.0

package chirp

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/soniclink/chirp/codec"
	"github.com/soniclink/chirp/engine"
	"github.com/soniclink/chirp/modem"
	"github.com/soniclink/chirp/protocol"
)

// Chirp is one successfully received transmission. Immutable; a Session
// keeps the most recent one until the next arrives.
type Chirp struct {
	// Identifier is the decoded payload.
	Identifier string
	// ReceivedAt is when decoding completed.
	ReceivedAt time.Time
	// Confidence in [0, 1]: how clearly the tones stood out from the
	// noise during decoding.
	Confidence float64
}

// Config tunes a Session. Zero values select defaults.
type Config struct {
	// Protocol is the registry name of the initial protocol.
	// Default "standard".
	Protocol string

	// Streaming enables deduplication of repeated identical
	// transmissions on receive.
	Streaming bool

	// StreamCooldown overrides the streaming suppression window.
	StreamCooldown time.Duration

	// Volume is the initial software output gain in [0, 1]. Default 1.
	Volume float64

	// BlockSize is the audio device period in frames. Default 256.
	BlockSize int

	// Device overrides the audio device, mainly for tests.
	Device engine.Device
}

// Session is the user-facing coordinator: one audio engine, one active
// protocol, the last chirp heard. Construct with NewSession and pass it
// through the call graph; there is no shared global instance.
//
// All methods are safe for concurrent use. Callbacks are delivered on
// an internal goroutine and must not call Stop.
type Session struct {
	reg *protocol.Registry
	eng *engine.Engine

	mu         sync.Mutex
	lastHeard  *Chirp
	wantListen bool

	onChirp  func(Chirp)
	onBuffer func(block []float32)
	onState  func(engine.State)
}

// NewSession builds a session with both built-in protocols registered.
// The audio device is not opened until the first Start, Send, or
// chirp-heard subscription.
func NewSession(cfg Config) (*Session, error) {
	s := &Session{reg: protocol.NewRegistry()}

	name := cfg.Protocol
	if name == "" {
		name = protocol.NameStandard
	}
	if err := s.reg.SetActive(name); err != nil {
		return nil, fmt.Errorf("chirp: %w", err)
	}

	s.eng = engine.New(engine.Config{
		Protocol:       s.reg.Active(),
		Streaming:      cfg.Streaming,
		StreamCooldown: cfg.StreamCooldown,
		BlockSize:      cfg.BlockSize,
		Volume:         cfg.Volume,
		Device:         cfg.Device,
	})
	s.eng.SetCallbacks(engine.Callbacks{
		ChirpHeard:    s.chirpHeard,
		BufferUpdated: s.bufferUpdated,
		StateChanged:  s.stateChanged,
	})
	return s, nil
}

// Start opens the audio device and begins listening. Idempotent while
// running; most applications never call it directly, since Send and
// SetChirpHeardFunc start the engine on first use.
func (s *Session) Start() error {
	s.mu.Lock()
	s.wantListen = true
	s.mu.Unlock()

	if err := s.eng.Start(); err != nil {
		return err
	}
	return s.eng.Listen()
}

// Stop tears down the audio device unconditionally. Any decode in
// progress is dropped without a chirp-heard callback.
func (s *Session) Stop() error {
	return s.eng.Stop()
}

// State returns the audio engine state.
func (s *Session) State() engine.State { return s.eng.State() }

// Send validates identifier against the active protocol, modulates it
// and plays it out, starting the engine first if needed. Validation
// failures are reported synchronously before anything is transmitted.
func (s *Session) Send(identifier string) error {
	p := s.reg.Active()
	if !p.ValidIdentifier(identifier) {
		return fmt.Errorf("chirp: %q: %w", identifier, protocol.ErrInvalidIdentifier)
	}
	seq, err := codec.New(p).EncodeIdentifier(identifier)
	if err != nil {
		return fmt.Errorf("chirp: %w", err)
	}
	return s.transmit(p, seq)
}

// SendArray is Send for a pre-encoded symbol array.
func (s *Session) SendArray(payload []int) error {
	p := s.reg.Active()
	if !p.ValidArray(payload) {
		return fmt.Errorf("chirp: %w", protocol.ErrInvalidArray)
	}
	seq, err := codec.New(p).EncodeArray(payload)
	if err != nil {
		return fmt.Errorf("chirp: %w", err)
	}
	return s.transmit(p, seq)
}

func (s *Session) transmit(p protocol.Protocol, seq []int) error {
	if err := s.ensureStarted(); err != nil {
		return err
	}
	return s.eng.Transmit(modem.NewModulator(p).Modulate(seq))
}

// ensureStarted opens the engine on first use, resuming listening when
// a receive subscription exists.
func (s *Session) ensureStarted() error {
	if s.eng.State() != engine.StateStopped {
		return nil
	}
	if err := s.eng.Start(); err != nil {
		return err
	}
	s.mu.Lock()
	listen := s.wantListen
	s.mu.Unlock()
	if listen {
		return s.eng.Listen()
	}
	return nil
}

// SetProtocol selects the active protocol by registry name. An unknown
// name fails without touching the active protocol. While receiving, a
// decode attempt already in flight finishes under the protocol it
// started with.
func (s *Session) SetProtocol(name string) error {
	if err := s.reg.SetActive(name); err != nil {
		return fmt.Errorf("chirp: %w", err)
	}
	s.eng.SetProtocol(s.reg.Active())
	return nil
}

// ProtocolName returns the active protocol's registry name.
func (s *Session) ProtocolName() string { return s.reg.Active().Name }

// Protocols lists the registered protocol names, sorted.
func (s *Session) Protocols() []string { return s.reg.Names() }

// LastHeardChirp returns the most recently received chirp, or nil if
// none has been heard yet.
func (s *Session) LastHeardChirp() *Chirp {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHeard
}

// StreamingMode reports whether streaming-mode deduplication is
// enabled.
func (s *Session) StreamingMode() bool { return s.eng.Streaming() }

// SetStreamingMode toggles streaming-mode deduplication.
func (s *Session) SetStreamingMode(on bool) { s.eng.SetStreaming(on) }

// IsStreaming reports whether a repeated transmission is currently
// being suppressed.
func (s *Session) IsStreaming() bool { return s.eng.State() == engine.StateStreaming }

// Volume returns the software output gain in [0, 1].
func (s *Session) Volume() float64 { return s.eng.Volume() }

// SetVolume sets the software output gain, clamped to [0, 1].
func (s *Session) SetVolume(v float64) { s.eng.SetVolume(v) }

// SystemVolume reports the hardware output level. Read-only; raising
// the software gain cannot override a muted device.
func (s *Session) SystemVolume() float64 { return s.eng.OutputVolume() }

// SampleRate reports the engine's processing rate in Hz.
func (s *Session) SampleRate() int { return s.eng.SampleRate() }

// SetChirpHeardFunc subscribes to received chirps. A non-nil fn starts
// the engine and begins listening; the returned error is the device
// error when that fails. fn runs off the audio path.
func (s *Session) SetChirpHeardFunc(fn func(Chirp)) error {
	s.mu.Lock()
	s.onChirp = fn
	s.mu.Unlock()

	if fn == nil {
		return nil
	}
	return s.Start()
}

// SetAudioBufferUpdatedFunc subscribes to captured PCM blocks. The
// slice passed to fn is reused; it is only valid during the call.
func (s *Session) SetAudioBufferUpdatedFunc(fn func(block []float32)) {
	s.mu.Lock()
	s.onBuffer = fn
	s.mu.Unlock()
}

// SetAudioStateChangedFunc subscribes to engine state transitions.
func (s *Session) SetAudioStateChangedFunc(fn func(engine.State)) {
	s.mu.Lock()
	s.onState = fn
	s.mu.Unlock()
}

// RandomIdentifier returns a random identifier valid under the active
// protocol, for testing and demos.
func (s *Session) RandomIdentifier() string {
	return protocol.RandomIdentifier(s.reg.Active())
}

// RandomChirpArray returns a random pre-encoded payload valid under
// the active protocol.
func (s *Session) RandomChirpArray() []int {
	return protocol.RandomArray(s.reg.Active())
}

// IsValidChirpIdentifier reports whether identifier could be sent under
// the active protocol. Pure; a later protocol switch invalidates the
// answer.
func (s *Session) IsValidChirpIdentifier(identifier string) bool {
	return s.reg.Active().ValidIdentifier(identifier)
}

// IsValidChirpArray reports whether payload could be sent under the
// active protocol.
func (s *Session) IsValidChirpArray(payload []int) bool {
	return s.reg.Active().ValidArray(payload)
}

// RandomShortcode returns a random identifier.
//
// Deprecated: shortcodes are identifiers; use RandomIdentifier.
func (s *Session) RandomShortcode() string { return s.RandomIdentifier() }

// IsValidShortcode reports whether shortcode could be sent under the
// active protocol.
//
// Deprecated: shortcodes are identifiers; use IsValidChirpIdentifier.
func (s *Session) IsValidShortcode(shortcode string) bool {
	return s.IsValidChirpIdentifier(shortcode)
}

// SetAppKey registers application credentials. Validation happens
// asynchronously and the outcome is reported once through completion
// (which may be nil); a failure never gates local transmit or receive,
// offline operation is first-class.
func (s *Session) SetAppKey(key, secret string, completion func(error)) {
	go func() {
		var err error
		if key == "" || secret == "" {
			err = errors.New("chirp: empty application credentials")
		}
		if completion != nil {
			completion(err)
		}
	}()
}

func (s *Session) chirpHeard(res modem.Result) {
	c := Chirp{
		Identifier: res.Identifier,
		ReceivedAt: res.ReceivedAt,
		Confidence: res.Confidence,
	}

	s.mu.Lock()
	s.lastHeard = &c
	fn := s.onChirp
	s.mu.Unlock()

	if fn != nil {
		fn(c)
	}
}

func (s *Session) bufferUpdated(block []float32) {
	s.mu.Lock()
	fn := s.onBuffer
	s.mu.Unlock()
	if fn != nil {
		fn(block)
	}
}

func (s *Session) stateChanged(st engine.State) {
	s.mu.Lock()
	fn := s.onState
	s.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}
