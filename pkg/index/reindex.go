package index

import (
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"albumsync/pkg/photos"
)

// Reindexer triggers the service-wide reindex job. The trigger is
// deduplicated within a run: the job walks the whole personal space, so
// firing it twice buys nothing and doubles the load on the NAS.
type Reindexer struct {
	client  photos.Client
	clock   clockwork.Clock
	settle  time.Duration
	enabled bool

	triggered bool
}

// NewReindexer returns a Reindexer. When enabled is false, Trigger is a
// no-op that reports failure, and callers fall back to plain index polling.
func NewReindexer(client photos.Client, clock clockwork.Clock, settle time.Duration, enabled bool) *Reindexer {
	return &Reindexer{
		client:  client,
		clock:   clock,
		settle:  settle,
		enabled: enabled,
	}
}

// Trigger fires the reindex job and sleeps for the settle delay so the job
// has a chance to pick up filesystem changes before the first poll. Returns
// whether a trigger has been issued this run. Trigger failures are logged
// and reported as false; the synchronizer degrades to waiting on the
// index instead of aborting.
func (r *Reindexer) Trigger() bool {
	if !r.enabled {
		return false
	}
	if r.triggered {
		return true
	}

	ok, err := r.client.TriggerReindex()
	if err != nil {
		log.WithError(err).Warn("Reindex request failed; relying on the service's own indexing schedule")
		return false
	}
	if !ok {
		return false
	}

	r.triggered = true
	log.Info("Requested media reindex")
	if r.settle > 0 {
		r.clock.Sleep(r.settle)
	}
	return true
}

// Triggered reports whether a reindex has been issued this run.
func (r *Reindexer) Triggered() bool {
	return r.triggered
}
