// Package playback tracks audio playback sessions for guided practices.
package playback

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoSession is returned when an operation needs an active session.
var ErrNoSession = errors.New("playback: no active session")

// Session is one playback session's state.
type Session struct {
	ID        string        `json:"id"`
	TrackKey  string        `json:"track_key"`
	Position  time.Duration `json:"position"`
	Duration  time.Duration `json:"duration"`
	Paused    bool          `json:"paused"`
	StartedAt time.Time     `json:"started_at"`
}

// Manager holds at most one active session. Starting a new session
// stops the previous one. Callers share a single injected instance.
type Manager struct {
	mu      sync.Mutex
	current *Session
	logger  *zap.Logger
}

// NewManager creates a playback manager.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger}
}

// Start begins playback of a track, replacing any active session.
func (m *Manager) Start(trackKey string, duration time.Duration) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.logger.Debug("stopping previous playback session",
			zap.String("session_id", m.current.ID),
			zap.String("track_key", m.current.TrackKey))
	}

	m.current = &Session{
		ID:        uuid.NewString(),
		TrackKey:  trackKey,
		Duration:  duration,
		StartedAt: time.Now(),
	}

	m.logger.Info("playback started",
		zap.String("session_id", m.current.ID),
		zap.String("track_key", trackKey))
	return *m.current
}

// Current returns the active session, or ErrNoSession.
func (m *Manager) Current() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Session{}, ErrNoSession
	}
	return *m.current, nil
}

// Seek updates the playback position. Positions are clamped to
// [0, duration].
func (m *Manager) Seek(position time.Duration) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Session{}, ErrNoSession
	}

	if position < 0 {
		position = 0
	}
	if m.current.Duration > 0 && position > m.current.Duration {
		position = m.current.Duration
	}
	m.current.Position = position
	return *m.current, nil
}

// Pause suspends the active session.
func (m *Manager) Pause() (Session, error) {
	return m.setPaused(true)
}

// Resume continues a paused session.
func (m *Manager) Resume() (Session, error) {
	return m.setPaused(false)
}

func (m *Manager) setPaused(paused bool) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Session{}, ErrNoSession
	}
	m.current.Paused = paused
	return *m.current, nil
}

// Stop ends the active session. Stopping with no session is not an
// error.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.logger.Info("playback stopped", zap.String("session_id", m.current.ID))
		m.current = nil
	}
}
