package recovery

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ytvault/archive-server-go/internal/model"
)

// StaleThreshold is the maximum age of a persisted session at hydration. An
// active session older than this is assumed abandoned (process died mid
// flight) and must not be resurrected as if still running.
const StaleThreshold = 10 * time.Minute

const storageVersion = 1

// persistedState is the durable envelope. The explicit version field lets a
// future format change detect and migrate old snapshots.
type persistedState struct {
	Version  int                      `json:"version"`
	Sessions []model.PersistedSession `json:"sessions"`
}

// encodeActive serializes the active subset of the collection: only pending
// and in-progress sessions, each projected onto its durable view.
func encodeActive(sessions map[string]*model.RecoverySession) ([]byte, error) {
	state := persistedState{Version: storageVersion}
	for _, session := range sessions {
		if session.Phase.IsActive() {
			state.Sessions = append(state.Sessions, session.ToPersisted())
		}
	}
	return json.Marshal(state)
}

// decodeSessions rebuilds the entity keyed collection from a durable
// snapshot, discarding sessions older than StaleThreshold relative to now.
// Sessions exactly at the boundary are kept.
func decodeSessions(data []byte, now time.Time) (map[string]*model.RecoverySession, error) {
	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}

	sessions := make(map[string]*model.RecoverySession)
	for _, p := range state.Sessions {
		if now.Sub(p.StartedAt) > StaleThreshold {
			log.Debug().
				Str("sessionId", p.SessionID).
				Time("startedAt", p.StartedAt).
				Msg("discarding stale persisted session")
			continue
		}
		sessions[p.EntityID] = p.ToSession()
	}
	return sessions, nil
}

// persist writes the active subset to durable storage. Failures are logged
// and swallowed: persistence never blocks a recovery operation.
func (s *Store) persist() {
	if s.storage == nil {
		return
	}

	s.mu.Lock()
	data, err := encodeActive(s.sessions)
	s.mu.Unlock()
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode recovery sessions")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := s.storage.Save(ctx, data); err != nil {
		log.Warn().Err(err).Msg("failed to persist recovery sessions")
	}
}

// hydrate loads the persisted snapshot once at startup. Any read or parse
// failure is treated as no persisted state.
func (s *Store) hydrate() {
	if s.storage == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	data, err := s.storage.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load persisted recovery sessions")
		return
	}
	if len(data) == 0 {
		return
	}

	sessions, err := decodeSessions(data, time.Now())
	if err != nil {
		log.Warn().Err(err).Msg("failed to decode persisted recovery sessions")
		return
	}

	s.mu.Lock()
	s.sessions = sessions
	s.mu.Unlock()

	if len(sessions) > 0 {
		log.Info().Int("count", len(sessions)).Msg("recovery sessions restored")
	}
}
