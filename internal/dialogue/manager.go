package dialogue

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/job-advisor/internal/logger"
)

// ErrSessionNotFound is returned for unknown or already ended session ids.
var ErrSessionNotFound = errors.New("session not found")

type managedSession struct {
	mu      sync.Mutex
	session *Session
}

// Manager hosts many sessions over one Engine. Turns of the same session are serialized;
// different sessions proceed independently.
type Manager struct {
	engine *Engine
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*managedSession
}

// NewManager creates an empty session registry.
func NewManager(engine *Engine, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{engine: engine, logger: logger, sessions: make(map[string]*managedSession)}
}

// Start opens a session and returns its id and greeting.
func (m *Manager) Start() (string, string) {
	s := NewSession(uuid.NewString())

	m.mu.Lock()
	m.sessions[s.ID] = &managedSession{session: s}
	m.mu.Unlock()

	logger.WithSession(m.logger, s.ID).Info("session started")
	return s.ID, s.Greeting()
}

// Handle applies one utterance to the session. A session that ends is dropped, so ended
// is true exactly once.
func (m *Manager) Handle(ctx context.Context, id, utterance string) (reply string, ended bool, err error) {
	ms, ok := m.lookup(id)
	if !ok {
		return "", false, ErrSessionNotFound
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	reply, err = m.engine.Handle(ctx, ms.session, utterance)
	if errors.Is(err, ErrSessionEnded) {
		return "", false, ErrSessionNotFound
	}
	if err != nil {
		return "", false, err
	}

	if ms.session.Ended() {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		logger.WithSession(m.logger, id).Info("session ended", zap.Int("turns", len(ms.session.History)))
		return reply, true, nil
	}

	return reply, false, nil
}

// Snapshot returns a copy of the session state.
func (m *Manager) Snapshot(id string) (Session, error) {
	ms, ok := m.lookup(id)
	if !ok {
		return Session{}, ErrSessionNotFound
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.session.Snapshot(), nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) lookup(id string) (*managedSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.sessions[id]
	return ms, ok
}
