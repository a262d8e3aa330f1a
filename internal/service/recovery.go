package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/ytvault/archive-server-go/internal/errors"
	"github.com/ytvault/archive-server-go/internal/model"
	"github.com/ytvault/archive-server-go/internal/recovery"
	"github.com/ytvault/archive-server-go/internal/repository"
	"github.com/ytvault/archive-server-go/internal/sse"
)

// ArchiveClient performs the long-running archive lookup.
type ArchiveClient interface {
	Recover(ctx context.Context, entityType model.EntityType, entityID string, filter *model.RecoveryFilter) (*model.RecoveryResult, error)
}

// RecoveryService owns the lifecycle of a recovery attempt: it starts the
// session, runs the archive call, and feeds the outcome back into the store.
// The store itself never blocks; all waiting happens here.
type RecoveryService struct {
	store       *recovery.Store
	archive     ArchiveClient
	videoRepo   repository.VideoRepository
	channelRepo repository.ChannelRepository
	broker      *sse.Broker
	timeout     time.Duration
}

func NewRecoveryService(
	store *recovery.Store,
	archive ArchiveClient,
	videoRepo repository.VideoRepository,
	channelRepo repository.ChannelRepository,
	broker *sse.Broker,
	timeout time.Duration,
) *RecoveryService {
	s := &RecoveryService{
		store:       store,
		archive:     archive,
		videoRepo:   videoRepo,
		channelRepo: channelRepo,
		broker:      broker,
		timeout:     timeout,
	}
	store.Subscribe(s.publishUpdate)
	return s
}

// StartRecovery validates the entity, opens a session, and launches the
// archive call. Returns the fresh session id immediately; the outcome arrives
// through the store.
func (s *RecoveryService) StartRecovery(ctx context.Context, entityType model.EntityType, entityID string, title string, filter *model.RecoveryFilter) (string, error) {
	if !entityType.Valid() {
		return "", apperrors.InvalidInput("entityType", "must be video or channel")
	}

	resolved, err := s.resolveEntity(ctx, entityType, entityID)
	if err != nil {
		return "", err
	}
	if title == "" {
		title = resolved.title
	}
	if resolved.availability == model.AvailabilityAvailable {
		return "", apperrors.EntityAvailable(entityID)
	}

	sessionID := s.store.StartRecovery(entityID, entityType, title, filter)

	// The cancel func doubles as the session's cancellation token. Cancelling
	// stops the client-side wait; the server-side search is not aborted.
	runCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	s.store.SetCancelFunc(sessionID, cancel)
	s.store.UpdatePhase(sessionID, model.PhaseInProgress)

	go s.run(runCtx, cancel, sessionID, entityType, entityID, filter)

	return sessionID, nil
}

func (s *RecoveryService) run(ctx context.Context, cancel context.CancelFunc, sessionID string, entityType model.EntityType, entityID string, filter *model.RecoveryFilter) {
	defer cancel()
	defer func() {
		if p := recover(); p != nil {
			log.Error().Any("panic", p).Str("sessionId", sessionID).Msg("recovery run panicked")
			s.store.SetError(sessionID, "internal error during recovery")
		}
	}()

	result, err := s.archive.Recover(ctx, entityType, entityID, filter)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// User cancelled; the session is already terminal.
			log.Debug().Str("sessionId", sessionID).Msg("recovery call aborted")
			return
		}
		log.Warn().Err(err).Str("sessionId", sessionID).Msg("recovery call failed")
		s.store.SetError(sessionID, err.Error())
		return
	}

	s.store.SetResult(sessionID, result)

	log.Info().
		Str("sessionId", sessionID).
		Str("entityId", entityID).
		Bool("success", result.Success).
		Int("snapshotsTried", result.SnapshotsTried).
		Msg("recovery finished")

	if result.Success {
		s.stampRecovered(entityType, entityID)
	}
}

// stampRecovered records in the library that the entity's metadata was
// refreshed from the archive.
func (s *RecoveryService) stampRecovered(entityType model.EntityType, entityID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	switch entityType {
	case model.EntityTypeVideo:
		err = s.videoRepo.UpdateRecovered(ctx, entityID, model.RecoveredMetadata{})
	case model.EntityTypeChannel:
		err = s.channelRepo.UpdateRecovered(ctx, entityID, model.RecoveredMetadata{})
	}
	if err != nil {
		log.Warn().Err(err).Str("entityId", entityID).Msg("failed to stamp recovered entity")
	}
}

type resolvedEntity struct {
	title        string
	availability model.Availability
}

func (s *RecoveryService) resolveEntity(ctx context.Context, entityType model.EntityType, entityID string) (*resolvedEntity, error) {
	switch entityType {
	case model.EntityTypeVideo:
		video, err := s.videoRepo.FindByID(ctx, entityID)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if video == nil {
			return nil, apperrors.NotFound("video")
		}
		return &resolvedEntity{title: video.Title, availability: video.Availability}, nil

	case model.EntityTypeChannel:
		channel, err := s.channelRepo.FindByID(ctx, entityID)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if channel == nil {
			return nil, apperrors.NotFound("channel")
		}
		return &resolvedEntity{title: channel.Title, availability: channel.Availability}, nil
	}
	return nil, apperrors.InvalidInput("entityType", "must be video or channel")
}

// Cancel aborts the client-side wait for the session and marks it cancelled.
func (s *RecoveryService) Cancel(sessionID string) {
	s.store.CancelRecovery(sessionID)
}

// Cleanup removes the session entirely, active or not.
func (s *RecoveryService) Cleanup(sessionID string) {
	s.store.CleanupSession(sessionID)
}

// Session returns the entity's current session in any phase.
func (s *RecoveryService) Session(entityID string) (model.RecoverySession, bool) {
	return s.store.SessionFor(entityID)
}

// ActiveSessions returns all pending and in-progress sessions.
func (s *RecoveryService) ActiveSessions() []model.RecoverySession {
	return s.store.ActiveSessions()
}

// HasActive reports whether any recovery is still running.
func (s *RecoveryService) HasActive() bool {
	return s.store.HasActiveRecovery()
}

type recoveryUpdate struct {
	Active    []model.RecoverySession `json:"active"`
	HasActive bool                    `json:"hasActive"`
}

// publishUpdate pushes the active session snapshot to SSE clients after each
// store mutation.
func (s *RecoveryService) publishUpdate() {
	if s.broker == nil {
		return
	}

	active := s.store.ActiveSessions()
	data, err := json.Marshal(recoveryUpdate{Active: active, HasActive: len(active) > 0})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal recovery update")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.broker.Publish(ctx, sse.TopicRecovery, sse.Event{Type: "recovery_update", Data: data}); err != nil {
		log.Warn().Err(err).Msg("failed to publish recovery update")
	}
}
