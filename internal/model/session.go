package model

import (
	"context"
	"time"
)

// RecoverySession is one tracked attempt to recover metadata for one
// unavailable entity. CancelFunc is the in-memory cancellation token for the
// in-flight archive call; it never leaves the process.
type RecoverySession struct {
	SessionID   string          `json:"sessionId"`
	EntityID    string          `json:"entityId"`
	EntityType  EntityType      `json:"entityType"`
	EntityTitle string          `json:"entityTitle,omitempty"`
	Phase       SessionPhase    `json:"phase"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Filter      *RecoveryFilter `json:"filterOptions,omitempty"`
	Result      *RecoveryResult `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`

	CancelFunc context.CancelFunc `json:"-"`
}

// PersistedSession is the durable view of a RecoverySession: every field
// except the cancellation token, which cannot survive a restart.
type PersistedSession struct {
	SessionID   string          `json:"sessionId"`
	EntityID    string          `json:"entityId"`
	EntityType  EntityType      `json:"entityType"`
	EntityTitle string          `json:"entityTitle,omitempty"`
	Phase       SessionPhase    `json:"phase"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Filter      *RecoveryFilter `json:"filterOptions,omitempty"`
	Result      *RecoveryResult `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// ToPersisted projects the session onto its durable view.
func (s *RecoverySession) ToPersisted() PersistedSession {
	return PersistedSession{
		SessionID:   s.SessionID,
		EntityID:    s.EntityID,
		EntityType:  s.EntityType,
		EntityTitle: s.EntityTitle,
		Phase:       s.Phase,
		StartedAt:   s.StartedAt,
		CompletedAt: s.CompletedAt,
		Filter:      s.Filter,
		Result:      s.Result,
		Error:       s.Error,
	}
}

// ToSession rebuilds an in-memory session from its durable view. The original
// network call cannot be re-attached across a restart, so the cancellation
// token comes back nil.
func (p PersistedSession) ToSession() *RecoverySession {
	return &RecoverySession{
		SessionID:   p.SessionID,
		EntityID:    p.EntityID,
		EntityType:  p.EntityType,
		EntityTitle: p.EntityTitle,
		Phase:       p.Phase,
		StartedAt:   p.StartedAt,
		CompletedAt: p.CompletedAt,
		Filter:      p.Filter,
		Result:      p.Result,
		Error:       p.Error,
	}
}

// RecoveryFilter narrows the archive search window.
type RecoveryFilter struct {
	StartYear *int `json:"startYear,omitempty"`
	EndYear   *int `json:"endYear,omitempty"`
}

// RecoveryResult is the structured outcome of a recovery attempt, in the
// shape returned by the archive recovery endpoint.
type RecoveryResult struct {
	Success            bool     `json:"success"`
	SnapshotUsed       *string  `json:"snapshot_used"`
	FieldsRecovered    []string `json:"fields_recovered"`
	FieldsSkipped      []string `json:"fields_skipped"`
	SnapshotsAvailable int      `json:"snapshots_available"`
	SnapshotsTried     int      `json:"snapshots_tried"`
	FailureReason      *string  `json:"failure_reason"`
	DurationSeconds    float64  `json:"duration_seconds"`
}
