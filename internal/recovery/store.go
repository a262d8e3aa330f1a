package recovery

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ytvault/archive-server-go/internal/model"
)

const persistTimeout = 2 * time.Second

// Store is the single source of truth for recovery sessions. The collection
// is keyed by entity id (at most one session per entity); all phase mutations
// match by session id so that a callback from a superseded session can never
// touch the entity's current session.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*model.RecoverySession

	storage Storage

	subMu       sync.Mutex
	subscribers map[int]func()
	nextSubID   int
}

// NewStore builds a store and hydrates it from durable storage. Persistence
// is a convenience: any storage or decode failure leaves the store empty and
// operational.
func NewStore(storage Storage) *Store {
	s := &Store{
		sessions:    make(map[string]*model.RecoverySession),
		storage:     storage,
		subscribers: make(map[int]func()),
	}
	s.hydrate()
	return s
}

// StartRecovery creates a fresh pending session for the entity, replacing any
// prior session for the same entity, and returns its session id. The replaced
// session's cancellation token is not triggered; its late callbacks miss on
// session id and fall through as no-ops.
func (s *Store) StartRecovery(entityID string, entityType model.EntityType, entityTitle string, filter *model.RecoveryFilter) string {
	session := &model.RecoverySession{
		SessionID:   uuid.NewString(),
		EntityID:    entityID,
		EntityType:  entityType,
		EntityTitle: entityTitle,
		Phase:       model.PhasePending,
		StartedAt:   time.Now(),
		Filter:      filter,
	}

	s.mu.Lock()
	s.sessions[entityID] = session
	s.mu.Unlock()

	log.Info().
		Str("sessionId", session.SessionID).
		Str("entityId", entityID).
		Str("entityType", string(entityType)).
		Msg("recovery session started")

	s.changed()
	return session.SessionID
}

// UpdatePhase transitions the matching session. Unknown session ids and
// already-terminal sessions are silent no-ops.
func (s *Store) UpdatePhase(sessionID string, phase model.SessionPhase) {
	s.mu.Lock()
	session := s.findBySessionID(sessionID)
	if session == nil || session.Phase.IsTerminal() {
		s.mu.Unlock()
		return
	}
	session.Phase = phase
	if phase.IsTerminal() {
		now := time.Now()
		session.CompletedAt = &now
	}
	s.mu.Unlock()

	s.changed()
}

// SetResult records the structured outcome and completes the session. A
// failed recovery with a failure_reason is still a completed outcome.
func (s *Store) SetResult(sessionID string, result *model.RecoveryResult) {
	s.mu.Lock()
	session := s.findBySessionID(sessionID)
	if session == nil || session.Phase.IsTerminal() {
		s.mu.Unlock()
		return
	}
	now := time.Now()
	session.Result = result
	session.Phase = model.PhaseCompleted
	session.CompletedAt = &now
	s.mu.Unlock()

	s.changed()
}

// SetError records a transport-level failure message and fails the session.
func (s *Store) SetError(sessionID string, message string) {
	s.mu.Lock()
	session := s.findBySessionID(sessionID)
	if session == nil || session.Phase.IsTerminal() {
		s.mu.Unlock()
		return
	}
	now := time.Now()
	session.Error = message
	session.Phase = model.PhaseFailed
	session.CompletedAt = &now
	s.mu.Unlock()

	s.changed()
}

// SetCancelFunc attaches the cancellation token for the in-flight archive
// call so CancelRecovery can abort the wait later.
func (s *Store) SetCancelFunc(sessionID string, cancel context.CancelFunc) {
	s.mu.Lock()
	session := s.findBySessionID(sessionID)
	if session == nil {
		s.mu.Unlock()
		return
	}
	session.CancelFunc = cancel
	s.mu.Unlock()

	s.changed()
}

// CancelRecovery triggers the attached cancellation token, if any, and marks
// the session cancelled. Safe when no token was ever attached; a no-op for
// unknown ids and sessions already in a terminal phase, so the token fires at
// most once.
func (s *Store) CancelRecovery(sessionID string) {
	s.mu.Lock()
	session := s.findBySessionID(sessionID)
	if session == nil || session.Phase.IsTerminal() {
		s.mu.Unlock()
		return
	}
	cancel := session.CancelFunc
	session.CancelFunc = nil
	now := time.Now()
	session.Phase = model.PhaseCancelled
	session.CompletedAt = &now
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	log.Info().Str("sessionId", sessionID).Msg("recovery session cancelled")
	s.changed()
}

// CleanupSession removes the session from the collection entirely.
func (s *Store) CleanupSession(sessionID string) {
	s.mu.Lock()
	session := s.findBySessionID(sessionID)
	if session == nil {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, session.EntityID)
	s.mu.Unlock()

	s.changed()
}

// SessionFor returns the entity's current session in any phase, including
// terminal ones, so callers can show the last result after completion. The
// returned value is a copy; mutations must go through store operations.
func (s *Store) SessionFor(entityID string) (model.RecoverySession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[entityID]
	if !ok {
		return model.RecoverySession{}, false
	}
	return *session, true
}

// ActiveSessions returns copies of all sessions still in an active phase,
// oldest first.
func (s *Store) ActiveSessions() []model.RecoverySession {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []model.RecoverySession
	for _, session := range s.sessions {
		if session.Phase.IsActive() {
			active = append(active, *session)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].StartedAt.Before(active[j].StartedAt)
	})
	return active
}

// HasActiveRecovery reports whether any session is pending or in progress.
func (s *Store) HasActiveRecovery() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, session := range s.sessions {
		if session.Phase.IsActive() {
			return true
		}
	}
	return false
}

// CleanupTerminal removes terminal sessions whose completion is older than
// the retention window and returns how many were removed.
func (s *Store) CleanupTerminal(retention time.Duration) int {
	cutoff := time.Now().Add(-retention)

	s.mu.Lock()
	removed := 0
	for entityID, session := range s.sessions {
		if session.Phase.IsTerminal() && session.CompletedAt != nil && session.CompletedAt.Before(cutoff) {
			delete(s.sessions, entityID)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		s.changed()
	}
	return removed
}

// Subscribe registers a callback invoked synchronously after every mutation.
// The returned function unregisters it.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

// findBySessionID scans the collection for a matching session id. Callers
// must hold s.mu. The linear scan is the point: lookups for mutation go by
// session id, never by entity key, so stale callbacks miss replaced sessions.
func (s *Store) findBySessionID(sessionID string) *model.RecoverySession {
	for _, session := range s.sessions {
		if session.SessionID == sessionID {
			return session
		}
	}
	return nil
}

// changed re-persists the active subset and notifies subscribers. Runs after
// the state lock is released.
func (s *Store) changed() {
	s.persist()

	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
