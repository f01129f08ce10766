package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/shelfmark/shelfmark/internal/metadata"
)

// Enricher is the slice of the metadata enricher the task processors
// need.
type Enricher interface {
	EnrichBook(ctx context.Context, bookID string) (*metadata.EnrichmentResult, error)
	EnrichAllMissing(ctx context.Context) (*metadata.BulkEnrichmentResult, error)
}

// EnrichBookTask enriches a single book's metadata from Open Library.
type EnrichBookTask struct {
	BookID string `json:"book_id"`
}

// Config returns the queue configuration for book enrichment tasks.
func (t EnrichBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_book",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichBookProcessor creates the processor function for EnrichBookTask.
func EnrichBookProcessor(enricher Enricher) backlite.QueueProcessor[EnrichBookTask] {
	return func(ctx context.Context, task EnrichBookTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		result, err := enricher.EnrichBook(ctx, task.BookID)
		if err != nil {
			return fmt.Errorf("enrich book %s: %w", task.BookID, err)
		}

		if len(result.FieldsUpdated) > 0 {
			log.Printf("[task] Enriched book %s (%s): updated %v",
				task.BookID, result.Book.Title, result.FieldsUpdated)
		} else {
			log.Printf("[task] Book %s (%s): no metadata updates needed",
				task.BookID, result.Book.Title)
		}
		return nil
	}
}

// NewEnrichBookQueue creates a backlite queue for book enrichment tasks.
func NewEnrichBookQueue(enricher Enricher) backlite.Queue {
	return backlite.NewQueue(EnrichBookProcessor(enricher))
}
