package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brgyhealth/bhc_api/internal/service"
)

// SessionCleanupWorker purges registration sessions that have gone idle past
// their TTL.
type SessionCleanupWorker struct {
	store    *service.SessionStore
	ttl      time.Duration
	interval time.Duration
}

// NewSessionCleanupWorker constructs a SessionCleanupWorker.
func NewSessionCleanupWorker(store *service.SessionStore, ttl, interval time.Duration) *SessionCleanupWorker {
	return &SessionCleanupWorker{
		store:    store,
		ttl:      ttl,
		interval: interval,
	}
}

// Start begins the periodic sweep loop and listens for context cancellation.
func (w *SessionCleanupWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Dur("ttl", w.ttl).Msg("Starting session cleanup worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if purged := w.store.Sweep(w.ttl); purged > 0 {
				log.Info().Int("purged", purged).Int("remaining", w.store.Count()).Msg("Purged idle registration sessions")
			}
		case <-ctx.Done():
			log.Info().Msg("Session cleanup worker stopped")
			return
		}
	}
}
