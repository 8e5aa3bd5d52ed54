package session

import (
	"sync"

	"go.uber.org/zap"
)

// Factory builds (or restores from storage) the session for an account.
type Factory func(accountID int64, username, alias string) (*Session, error)

// Manager owns the live sessions, one per logged-in account.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	factory  Factory
	logger   *zap.Logger
}

// NewManager creates a Manager using factory to build missing sessions.
func NewManager(factory Factory, logger *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
		factory:  factory,
		logger:   logger,
	}
}

// Get returns the live session for accountID, or nil.
func (m *Manager) Get(accountID int64) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[accountID]
}

// GetOrCreate returns the live session for accountID, building it through
// the factory on first access.
func (m *Manager) GetOrCreate(accountID int64, username, alias string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[accountID]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok = m.sessions[accountID]; ok {
		return s, nil
	}
	s, err := m.factory(accountID, username, alias)
	if err != nil {
		return nil, err
	}
	m.sessions[accountID] = s
	m.logger.Info("session created", zap.Int64("account_id", accountID), zap.String("username", username))
	return s, nil
}

// Remove drops the session for accountID after a final persist.
func (m *Manager) Remove(accountID int64) {
	m.mu.Lock()
	s, ok := m.sessions[accountID]
	if ok {
		delete(m.sessions, accountID)
	}
	m.mu.Unlock()
	if ok {
		s.Lock()
		_ = s.Persist()
		s.Unlock()
		m.logger.Info("session removed", zap.Int64("account_id", accountID))
	}
}

// ForEach runs fn for every live session. fn is responsible for taking each
// session's lock; the manager lock is not held during the calls.
func (m *Manager) ForEach(fn func(*Session)) {
	m.mu.RLock()
	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.RUnlock()
	for _, s := range list {
		fn(s)
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
