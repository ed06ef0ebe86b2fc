package services

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pizza-service/internal/apperr"
)

// SessionManager owns every live session. Sessions are never persisted.
type SessionManager struct {
	deliveryFee decimal.Decimal
	log         *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager(deliveryFee decimal.Decimal, log *zap.Logger) *SessionManager {
	return &SessionManager{
		deliveryFee: deliveryFee,
		log:         log,
		sessions:    make(map[string]*Session),
	}
}

func (m *SessionManager) Create() *Session {
	s := NewSession(uuid.NewString(), m.deliveryFee, m.log)

	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.log.Debug("session created", zap.String("session_id", s.ID), zap.Int("sessions", n))
	return s
}

func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperr.ErrSessionNotFound
	}
	return s, nil
}

// Delete tears a session down and stops its order tracker.
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return apperr.ErrSessionNotFound
	}
	if t := s.close(); t != nil {
		t.Stop()
	}
	m.log.Debug("session deleted", zap.String("session_id", id))
	return nil
}

func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close tears down all sessions. Used on shutdown.
func (m *SessionManager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		if t := s.close(); t != nil {
			t.Stop()
		}
	}
	m.log.Info("sessions closed", zap.Int("count", len(sessions)))
}
