package worker

// sync_cron.go
// Background goroutine that periodically refreshes customers whose discount
// terms have gone stale against the external directory. Goes through the
// circuit breaker to avoid hammering a downed directory; existing quotes are
// unaffected since terms are frozen at quote creation.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"cabinetcpq/internal/infra"
	"cabinetcpq/internal/model"
	"cabinetcpq/internal/repository"
)

const (
	syncTickInterval = 15 * time.Minute
	syncBatchSize    = 20
	syncStaleAfter   = 24 * time.Hour
)

// SyncCronConfig holds the dependencies for the customer sync goroutine.
type SyncCronConfig struct {
	CustomerRepo repository.CustomerRepository
	Directory    *infra.DirectoryClient
	CB           *infra.CircuitBreaker
}

// StartSyncCron launches a goroutine that ticks every 15 minutes and
// re-syncs a batch of the stalest customers. It respects the context for
// graceful shutdown.
func StartSyncCron(ctx context.Context, cfg SyncCronConfig) {
	go func() {
		ticker := time.NewTicker(syncTickInterval)
		defer ticker.Stop()

		log.Info().Msg("sync_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("sync_cron: shutting down")
				return
			case <-ticker.C:
				processSyncBatch(ctx, cfg)
			}
		}
	}()
}

func processSyncBatch(ctx context.Context, cfg SyncCronConfig) {
	// If the breaker is open, skip entirely until the directory recovers.
	if cfg.CB.State() == infra.BreakerOpen {
		log.Debug().Msg("sync_cron: circuit breaker is open, skipping tick")
		return
	}

	cutoff := time.Now().Add(-syncStaleAfter)
	customers, err := cfg.CustomerRepo.ListStale(ctx, cutoff, syncBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("sync_cron: failed to query stale customers")
		return
	}
	if len(customers) == 0 {
		return
	}

	log.Info().Int("count", len(customers)).Msg("sync_cron: refreshing stale customer terms")

	for i := range customers {
		c := &customers[i]

		// The breaker may have tripped mid-batch.
		if cfg.CB.State() == infra.BreakerOpen {
			log.Debug().Msg("sync_cron: circuit breaker opened mid-batch, stopping")
			return
		}

		var record *infra.DirectoryRecord
		cbErr := cfg.CB.Execute(func() error {
			var lookupErr error
			record, lookupErr = cfg.Directory.Lookup(ctx, c.DirectoryID)
			return lookupErr
		})
		if cbErr != nil {
			log.Warn().
				Str("directory_id", c.DirectoryID).
				Err(cbErr).
				Msg("sync_cron: directory lookup failed, keeping last-synced terms")
			continue
		}

		if err := cfg.CustomerRepo.Upsert(ctx, &model.Customer{
			DirectoryID:      record.DirectoryID,
			Name:             record.Name,
			Email:            record.Email,
			ContractDiscount: record.ContractDiscount,
			CustomerDiscount: record.CustomerDiscount,
		}); err != nil {
			log.Error().
				Str("directory_id", c.DirectoryID).
				Err(err).
				Msg("sync_cron: failed to store refreshed terms")
		}
	}
}
