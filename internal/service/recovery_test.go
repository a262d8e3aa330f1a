package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytvault/archive-server-go/internal/model"
	"github.com/ytvault/archive-server-go/internal/recovery"
	"github.com/ytvault/archive-server-go/internal/repository"
)

type mockArchiveClient struct {
	result *model.RecoveryResult
	err    error
	block  bool // wait for ctx cancellation instead of returning

	calls chan struct{}
}

func (m *mockArchiveClient) Recover(ctx context.Context, entityType model.EntityType, entityID string, filter *model.RecoveryFilter) (*model.RecoveryResult, error) {
	if m.calls != nil {
		m.calls <- struct{}{}
	}
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.result, m.err
}

type mockVideoRepo struct {
	mu        sync.Mutex
	video     *model.Video
	recovered []string
}

func (m *mockVideoRepo) recoveredIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.recovered...)
}

func (m *mockVideoRepo) FindByID(ctx context.Context, id string) (*model.Video, error) {
	return m.video, nil
}

func (m *mockVideoRepo) List(ctx context.Context, params repository.ListVideosParams) ([]model.Video, error) {
	return nil, nil
}

func (m *mockVideoRepo) ListByChannel(ctx context.Context, channelID string, limit, offset int) ([]model.Video, error) {
	return nil, nil
}

func (m *mockVideoRepo) UpdateRecovered(ctx context.Context, id string, meta model.RecoveredMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recovered = append(m.recovered, id)
	return nil
}

func (m *mockVideoRepo) FindTranscript(ctx context.Context, videoID string) (*model.Transcript, error) {
	return nil, nil
}

type mockChannelRepo struct {
	channel *model.Channel
}

func (m *mockChannelRepo) FindByID(ctx context.Context, id string) (*model.Channel, error) {
	return m.channel, nil
}

func (m *mockChannelRepo) List(ctx context.Context, query string, limit, offset int) ([]model.Channel, error) {
	return nil, nil
}

func (m *mockChannelRepo) UpdateRecovered(ctx context.Context, id string, meta model.RecoveredMetadata) error {
	return nil
}

func deletedVideo(title string) *model.Video {
	return &model.Video{ID: "v1", Title: title, Availability: model.AvailabilityDeleted}
}

func waitForPhase(t *testing.T, store *recovery.Store, entityID string, phase model.SessionPhase) model.RecoverySession {
	t.Helper()
	var session model.RecoverySession
	require.Eventually(t, func() bool {
		s, ok := store.SessionFor(entityID)
		if ok && s.Phase == phase {
			session = s
			return true
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
	return session
}

func TestStartRecoveryValidation(t *testing.T) {
	store := recovery.NewStore(nil)
	svc := NewRecoveryService(store, &mockArchiveClient{}, &mockVideoRepo{}, &mockChannelRepo{}, nil, time.Minute)

	t.Run("rejects unknown entity type", func(t *testing.T) {
		_, err := svc.StartRecovery(context.Background(), "playlist", "p1", "", nil)
		assert.Error(t, err)
	})

	t.Run("rejects missing entity", func(t *testing.T) {
		_, err := svc.StartRecovery(context.Background(), model.EntityTypeVideo, "v1", "", nil)
		assert.Error(t, err)
	})

	t.Run("rejects still-available entity", func(t *testing.T) {
		videoRepo := &mockVideoRepo{video: &model.Video{ID: "v1", Availability: model.AvailabilityAvailable}}
		svc := NewRecoveryService(store, &mockArchiveClient{}, videoRepo, &mockChannelRepo{}, nil, time.Minute)

		_, err := svc.StartRecovery(context.Background(), model.EntityTypeVideo, "v1", "", nil)
		assert.Error(t, err)
	})
}

func TestRecoveryFlow(t *testing.T) {
	t.Run("successful recovery completes the session and stamps the entity", func(t *testing.T) {
		store := recovery.NewStore(nil)
		snapshot := "20240101000000"
		archive := &mockArchiveClient{result: &model.RecoveryResult{
			Success:         true,
			SnapshotUsed:    &snapshot,
			FieldsRecovered: []string{"title"},
			SnapshotsTried:  1,
		}}
		videoRepo := &mockVideoRepo{video: deletedVideo("Old Title")}
		svc := NewRecoveryService(store, archive, videoRepo, &mockChannelRepo{}, nil, time.Minute)

		id, err := svc.StartRecovery(context.Background(), model.EntityTypeVideo, "v1", "", nil)
		require.NoError(t, err)

		session := waitForPhase(t, store, "v1", model.PhaseCompleted)
		assert.Equal(t, id, session.SessionID)
		assert.Equal(t, "Old Title", session.EntityTitle) // resolved from the library
		require.NotNil(t, session.Result)
		assert.True(t, session.Result.Success)

		require.Eventually(t, func() bool {
			return len(videoRepo.recoveredIDs()) == 1
		}, 2*time.Second, 5*time.Millisecond)
		assert.Equal(t, "v1", videoRepo.recoveredIDs()[0])
	})

	t.Run("unsuccessful result completes without stamping", func(t *testing.T) {
		store := recovery.NewStore(nil)
		reason := model.FailureAllSnapshotsFailed
		archive := &mockArchiveClient{result: &model.RecoveryResult{Success: false, FailureReason: &reason}}
		videoRepo := &mockVideoRepo{video: deletedVideo("")}
		svc := NewRecoveryService(store, archive, videoRepo, &mockChannelRepo{}, nil, time.Minute)

		_, err := svc.StartRecovery(context.Background(), model.EntityTypeVideo, "v1", "", nil)
		require.NoError(t, err)

		session := waitForPhase(t, store, "v1", model.PhaseCompleted)
		require.NotNil(t, session.Result)
		assert.False(t, session.Result.Success)
		assert.Empty(t, videoRepo.recoveredIDs())
	})

	t.Run("transport failure fails the session", func(t *testing.T) {
		store := recovery.NewStore(nil)
		archive := &mockArchiveClient{err: context.DeadlineExceeded}
		videoRepo := &mockVideoRepo{video: deletedVideo("")}
		svc := NewRecoveryService(store, archive, videoRepo, &mockChannelRepo{}, nil, time.Minute)

		_, err := svc.StartRecovery(context.Background(), model.EntityTypeVideo, "v1", "", nil)
		require.NoError(t, err)

		session := waitForPhase(t, store, "v1", model.PhaseFailed)
		assert.NotEmpty(t, session.Error)
		assert.Nil(t, session.Result)
	})

	t.Run("cancel aborts the wait and leaves the session cancelled", func(t *testing.T) {
		store := recovery.NewStore(nil)
		archive := &mockArchiveClient{block: true, calls: make(chan struct{}, 1)}
		videoRepo := &mockVideoRepo{video: deletedVideo("")}
		svc := NewRecoveryService(store, archive, videoRepo, &mockChannelRepo{}, nil, time.Minute)

		id, err := svc.StartRecovery(context.Background(), model.EntityTypeVideo, "v1", "", nil)
		require.NoError(t, err)

		<-archive.calls
		svc.Cancel(id)

		session := waitForPhase(t, store, "v1", model.PhaseCancelled)
		assert.NotNil(t, session.CompletedAt)

		// The aborted archive call must not flip the session to failed.
		time.Sleep(50 * time.Millisecond)
		session, _ = store.SessionFor("v1")
		assert.Equal(t, model.PhaseCancelled, session.Phase)
		assert.Empty(t, session.Error)
	})

	t.Run("recovery for a channel resolves through the channel repo", func(t *testing.T) {
		store := recovery.NewStore(nil)
		archive := &mockArchiveClient{result: &model.RecoveryResult{Success: false}}
		channelRepo := &mockChannelRepo{channel: &model.Channel{
			ID:           "c1",
			Title:        "Lost Channel",
			Availability: model.AvailabilityTerminated,
		}}
		svc := NewRecoveryService(store, archive, &mockVideoRepo{}, channelRepo, nil, time.Minute)

		_, err := svc.StartRecovery(context.Background(), model.EntityTypeChannel, "c1", "", nil)
		require.NoError(t, err)

		session := waitForPhase(t, store, "c1", model.PhaseCompleted)
		assert.Equal(t, model.EntityTypeChannel, session.EntityType)
		assert.Equal(t, "Lost Channel", session.EntityTitle)
	})
}

func TestExplicitTitleWins(t *testing.T) {
	store := recovery.NewStore(nil)
	archive := &mockArchiveClient{result: &model.RecoveryResult{Success: false}}
	videoRepo := &mockVideoRepo{video: deletedVideo("Library Title")}
	svc := NewRecoveryService(store, archive, videoRepo, &mockChannelRepo{}, nil, time.Minute)

	_, err := svc.StartRecovery(context.Background(), model.EntityTypeVideo, "v1", "User Title", nil)
	require.NoError(t, err)

	session, ok := store.SessionFor("v1")
	require.True(t, ok)
	assert.Equal(t, "User Title", session.EntityTitle)
}
