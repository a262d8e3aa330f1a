package model

type EntityType string

const (
	EntityTypeVideo   EntityType = "video"
	EntityTypeChannel EntityType = "channel"
)

func (t EntityType) Valid() bool {
	return t == EntityTypeVideo || t == EntityTypeChannel
}

type SessionPhase string

const (
	PhasePending    SessionPhase = "pending"
	PhaseInProgress SessionPhase = "in-progress"
	PhaseCompleted  SessionPhase = "completed"
	PhaseFailed     SessionPhase = "failed"
	PhaseCancelled  SessionPhase = "cancelled"
)

// IsTerminal reports whether no further transition is expected.
func (p SessionPhase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseFailed || p == PhaseCancelled
}

// IsActive reports whether the session still tracks an in-flight operation.
func (p SessionPhase) IsActive() bool {
	return p == PhasePending || p == PhaseInProgress
}

type Availability string

const (
	AvailabilityAvailable  Availability = "available"
	AvailabilityDeleted    Availability = "deleted"
	AvailabilityPrivate    Availability = "private"
	AvailabilityTerminated Availability = "terminated"
)

// Failure reason codes returned by the archive recovery endpoint. Anything
// else is passed through verbatim for the UI to render as-is.
const (
	FailureNoSnapshotsFound   = "no_snapshots_found"
	FailureAllSnapshotsFailed = "all_snapshots_failed"
	FailureCDXConnectionError = "cdx_connection_error"
)
