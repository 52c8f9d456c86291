package whatsapp

import (
	"sync"
	"time"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// DefaultConfirmationTTL bounds how long a /delete waits for /confirm.
const DefaultConfirmationTTL = 5 * time.Minute

type session struct {
	action  models.PendingAction
	expires time.Time
}

// SessionManager keeps each user's pending destructive action.
type SessionManager struct {
	sessions map[int64]session
	ttl      time.Duration
	now      func() time.Time
	mu       sync.RWMutex
}

// NewSessionManager creates a new session manager. A non-positive ttl uses
// DefaultConfirmationTTL.
func NewSessionManager(ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultConfirmationTTL
	}
	return &SessionManager{
		sessions: make(map[int64]session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Pending returns the user's unexpired pending action.
func (sm *SessionManager) Pending(userID int64) (models.PendingAction, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, exists := sm.sessions[userID]
	if !exists || sm.now().After(s.expires) {
		return models.PendingAction{}, false
	}
	return s.action, true
}

// SetPending replaces the user's pending action.
func (sm *SessionManager) SetPending(userID int64, action models.PendingAction) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[userID] = session{action: action, expires: sm.now().Add(sm.ttl)}
}

// ClearPending removes a user's pending action.
func (sm *SessionManager) ClearPending(userID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, userID)
}
