package recovery

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytvault/archive-server-go/internal/model"
)

type failingStorage struct{}

func (failingStorage) Save(ctx context.Context, data []byte) error {
	return errors.New("storage down")
}

func (failingStorage) Load(ctx context.Context) ([]byte, error) {
	return nil, errors.New("storage down")
}

func TestEncodeActive(t *testing.T) {
	t.Run("persists only active sessions without token", func(t *testing.T) {
		storage := &memoryStorage{}
		store := NewStore(storage)

		pending := store.StartRecovery("v1", model.EntityTypeVideo, "My Video", nil)
		inProgress := store.StartRecovery("v2", model.EntityTypeVideo, "", nil)
		store.SetCancelFunc(inProgress, func() {})
		store.UpdatePhase(inProgress, model.PhaseInProgress)

		completed := store.StartRecovery("v3", model.EntityTypeVideo, "", nil)
		store.SetResult(completed, &model.RecoveryResult{Success: true})
		failed := store.StartRecovery("v4", model.EntityTypeVideo, "", nil)
		store.SetError(failed, "boom")
		cancelled := store.StartRecovery("v5", model.EntityTypeVideo, "", nil)
		store.CancelRecovery(cancelled)

		var state persistedState
		require.NoError(t, json.Unmarshal(storage.data, &state))
		assert.Equal(t, storageVersion, state.Version)
		require.Len(t, state.Sessions, 2)

		ids := map[string]bool{}
		for _, p := range state.Sessions {
			ids[p.SessionID] = true
			assert.True(t, p.Phase.IsActive())
		}
		assert.True(t, ids[pending])
		assert.True(t, ids[inProgress])

		// The raw JSON must not mention the cancellation token at all.
		assert.NotContains(t, string(storage.data), "CancelFunc")
		assert.NotContains(t, string(storage.data), "cancel")
	})

	t.Run("cleanup removes session from storage", func(t *testing.T) {
		storage := &memoryStorage{}
		store := NewStore(storage)

		id := store.StartRecovery("v1", model.EntityTypeVideo, "", nil)
		store.CleanupSession(id)

		var state persistedState
		require.NoError(t, json.Unmarshal(storage.data, &state))
		assert.Empty(t, state.Sessions)
	})
}

func TestDecodeSessions(t *testing.T) {
	now := time.Now()

	persisted := func(id, entityID string, startedAt time.Time) model.PersistedSession {
		return model.PersistedSession{
			SessionID:  id,
			EntityID:   entityID,
			EntityType: model.EntityTypeVideo,
			Phase:      model.PhasePending,
			StartedAt:  startedAt,
		}
	}

	t.Run("drops sessions past the stale threshold", func(t *testing.T) {
		data, err := json.Marshal(persistedState{
			Version: storageVersion,
			Sessions: []model.PersistedSession{
				persisted("s1", "v1", now.Add(-StaleThreshold-time.Second)),
				persisted("s2", "v2", now.Add(-StaleThreshold)), // exactly at the boundary: kept
				persisted("s3", "v3", now.Add(-time.Minute)),
			},
		})
		require.NoError(t, err)

		sessions, err := decodeSessions(data, now)
		require.NoError(t, err)
		assert.Len(t, sessions, 2)
		assert.NotContains(t, sessions, "v1")
		assert.Contains(t, sessions, "v2")
		assert.Contains(t, sessions, "v3")
	})

	t.Run("rehydrated sessions carry no cancellation token", func(t *testing.T) {
		data, err := json.Marshal(persistedState{
			Version:  storageVersion,
			Sessions: []model.PersistedSession{persisted("s1", "v1", now)},
		})
		require.NoError(t, err)

		sessions, err := decodeSessions(data, now)
		require.NoError(t, err)
		require.Contains(t, sessions, "v1")
		assert.Nil(t, sessions["v1"].CancelFunc)
	})

	t.Run("rejects malformed data", func(t *testing.T) {
		_, err := decodeSessions([]byte("{not json"), now)
		assert.Error(t, err)
	})
}

func TestHydration(t *testing.T) {
	t.Run("round trip restores active sessions", func(t *testing.T) {
		storage := &memoryStorage{}
		store := NewStore(storage)

		end := 2024
		id := store.StartRecovery("v1", model.EntityTypeVideo, "My Video", &model.RecoveryFilter{EndYear: &end})
		store.SetCancelFunc(id, func() {})
		store.UpdatePhase(id, model.PhaseInProgress)

		restored := NewStore(storage)

		session, ok := restored.SessionFor("v1")
		require.True(t, ok)
		assert.Equal(t, id, session.SessionID)
		assert.Equal(t, model.PhaseInProgress, session.Phase)
		assert.Equal(t, "My Video", session.EntityTitle)
		require.NotNil(t, session.Filter)
		assert.Equal(t, 2024, *session.Filter.EndYear)
		assert.Nil(t, session.CancelFunc)
	})

	t.Run("corrupt snapshot yields an empty store", func(t *testing.T) {
		storage := &memoryStorage{data: []byte("{{{")}

		store := NewStore(storage)
		assert.False(t, store.HasActiveRecovery())

		// Store stays fully operational.
		id := store.StartRecovery("v1", model.EntityTypeVideo, "", nil)
		assert.NotEmpty(t, id)
	})

	t.Run("storage failures never propagate", func(t *testing.T) {
		store := NewStore(failingStorage{})

		id := store.StartRecovery("v1", model.EntityTypeVideo, "", nil)
		store.UpdatePhase(id, model.PhaseInProgress)
		store.SetResult(id, &model.RecoveryResult{Success: true})

		session, ok := store.SessionFor("v1")
		require.True(t, ok)
		assert.Equal(t, model.PhaseCompleted, session.Phase)
	})
}
