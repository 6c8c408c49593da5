package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brgyhealth/bhc_api/internal/service"
)

// GeoSyncWorker periodically refreshes the PSGC mirror from the reference
// service.
type GeoSyncWorker struct {
	syncService *service.GeoSyncService
	interval    time.Duration
}

// NewGeoSyncWorker constructs a GeoSyncWorker.
func NewGeoSyncWorker(syncService *service.GeoSyncService, interval time.Duration) *GeoSyncWorker {
	return &GeoSyncWorker{
		syncService: syncService,
		interval:    interval,
	}
}

// Start begins the periodic sync loop and listens for context cancellation.
func (w *GeoSyncWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting geo sync worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Geo sync worker stopped")
			return
		}
	}
}

func (w *GeoSyncWorker) run(ctx context.Context) {
	log.Info().Msg("Syncing PSGC mirror...")

	start := time.Now()
	if err := w.syncService.Sync(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to sync PSGC mirror")
		return
	}

	log.Info().Dur("duration", time.Since(start)).Msg("PSGC mirror sync completed")
}
