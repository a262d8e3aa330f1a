package jobs

import (
	"time"

	"github.com/rs/zerolog/log"
)

// SessionSweeper removes terminal recovery sessions once their retention
// window passes, so stale "last result" entries do not accumulate.
type SessionSweeper interface {
	CleanupTerminal(retention time.Duration) int
}

type CleanupJob struct {
	store     SessionSweeper
	retention time.Duration
	interval  time.Duration
	done      chan struct{}
}

func NewCleanupJob(store SessionSweeper, retention, interval time.Duration) *CleanupJob {
	return &CleanupJob{
		store:     store,
		retention: retention,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	if count := j.store.CleanupTerminal(j.retention); count > 0 {
		log.Info().Int("count", count).Msg("cleaned up settled recovery sessions")
	}
}
