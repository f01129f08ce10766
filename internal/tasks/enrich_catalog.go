package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// EnrichCatalogTask enriches every book missing metadata. The
// enrichment runs sequentially under the upstream rate limit, so a
// large catalog keeps a worker busy for a while; MaxAttempts stays at 1
// because a rerun is cheap and idempotent.
type EnrichCatalogTask struct{}

// Config returns the queue configuration for catalog-wide enrichment.
func (t EnrichCatalogTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_catalog",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     60 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichCatalogProcessor creates the processor function for
// EnrichCatalogTask.
func EnrichCatalogProcessor(enricher Enricher) backlite.QueueProcessor[EnrichCatalogTask] {
	return func(ctx context.Context, task EnrichCatalogTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		result, err := enricher.EnrichAllMissing(ctx)
		if err != nil {
			return fmt.Errorf("enrich catalog: %w", err)
		}

		log.Printf("[task] Catalog enrichment complete: %d total, %d enriched, %d skipped, %d failed",
			result.TotalBooks, result.Enriched, result.Skipped, result.Failed)
		return nil
	}
}

// NewEnrichCatalogQueue creates a backlite queue for catalog-wide
// enrichment tasks.
func NewEnrichCatalogQueue(enricher Enricher) backlite.Queue {
	return backlite.NewQueue(EnrichCatalogProcessor(enricher))
}
