// Package printer wraps one transport adapter per physical printer in a
// lifecycle session and coordinates the receipt and label sessions to
// fulfill composite print requests.
package printer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nixxel-company-limited/laundry-print-server/adapter"
)

// State tracks the session lifecycle.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateInitializing
	StateReady
	StateSending
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateSending:
		return "sending"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrNotConnected is returned by Send when the session is not Ready.
var ErrNotConnected = errors.New("printer session not connected")

// Session owns exactly one transport connection to one physical printer.
// All operations run to completion under the session lock; there is never
// more than one in-flight operation per session.
type Session struct {
	name      string
	transport adapter.Adapter
	initSeq   []byte
	state     State
	mu        sync.Mutex
	log       zerolog.Logger
}

func newSession(name string, transport adapter.Adapter, initSeq []byte, log zerolog.Logger) *Session {
	return &Session{
		name:      name,
		transport: transport,
		initSeq:   initSeq,
		state:     StateDisconnected,
		log:       log.With().Str("printer", name).Logger(),
	}
}

// Connect opens the transport and transmits the family init sequence.
// A failed step releases whatever was acquired and returns the session to
// Disconnected, so a later Connect under the same conditions can succeed.
// Connecting an already-Ready session is a no-op.
func (s *Session) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateReady {
		return nil
	}

	s.state = StateConnecting
	s.log.Debug().Msg("connecting")

	if err := s.transport.Open(); err != nil {
		s.rollback()
		s.log.Warn().Err(err).Msg("connect failed")
		return fmt.Errorf("%s: open failed: %w", s.name, err)
	}

	s.state = StateInitializing
	if len(s.initSeq) > 0 {
		if _, err := s.transport.Write(s.initSeq); err != nil {
			s.rollback()
			s.log.Warn().Err(err).Msg("init sequence failed")
			return fmt.Errorf("%s: init failed: %w", s.name, err)
		}
	}

	s.state = StateReady
	s.log.Info().Msg("printer ready")
	return nil
}

// rollback releases partially-acquired resources after a failed connect
// step. Close errors are irrelevant here; the transport tolerates them.
func (s *Session) rollback() {
	s.state = StateFailed
	s.transport.Close()
	s.state = StateDisconnected
}

// Send writes one complete command payload. Valid only from Ready.
func (s *Session) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady || !s.transport.IsOpen() {
		return ErrNotConnected
	}

	s.state = StateSending
	n, err := s.transport.Write(payload)
	s.state = StateReady

	if err != nil {
		s.log.Error().Err(err).Int("written", n).Msg("send failed")
		return fmt.Errorf("%s: send failed: %w", s.name, err)
	}
	s.log.Debug().Int("bytes", n).Msg("payload sent")
	return nil
}

// Disconnect releases the transport, tolerating close failures, and
// unconditionally ends in Disconnected.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.transport.Close()
	s.state = StateDisconnected

	if err != nil {
		s.log.Warn().Err(err).Msg("disconnect reported error")
		return fmt.Errorf("%s: disconnect failed: %w", s.name, err)
	}
	s.log.Info().Msg("printer disconnected")
	return nil
}

// IsConnected reflects true readiness: the session must be Ready and the
// underlying handle must still be held. A stale handle reports false.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateReady && s.transport.IsOpen()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Name returns the session's printer family name.
func (s *Session) Name() string {
	return s.name
}
