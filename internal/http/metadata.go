package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/entities"
)

// MetadataController exposes the admin-only Open Library enrichment
// endpoints.
type MetadataController struct {
	enricher Enricher
	queue    TaskQueue
	auditor  Auditor
}

func NewMetadataController(enricher Enricher, queue TaskQueue, auditor Auditor) *MetadataController {
	return &MetadataController{enricher: enricher, queue: queue, auditor: auditor}
}

// EnrichBook fills in a single book's missing metadata. A single
// lookup is fast enough to run inline.
func (controller *MetadataController) EnrichBook(c *gin.Context) {
	id := c.Param("id")

	result, err := controller.enricher.EnrichBook(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondNotFound(c, "book")
			return
		}
		log.Printf("Enrichment failed for book %s: %v", id, err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Message: "metadata lookup failed"})
		return
	}
	controller.auditor.Record(auth.GetUserID(c), entities.AuditEventCatalog, "enrich_book", id, c.ClientIP())

	c.JSON(http.StatusOK, result)
}

// EnrichMissing queues enrichment of every book missing an ISBN, cover
// or year. The pass runs under the upstream rate limit and can take
// minutes on a large catalog, so it goes to the task queue instead of
// blocking the request.
func (controller *MetadataController) EnrichMissing(c *gin.Context) {
	if controller.queue == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "task queue is not enabled"})
		return
	}

	taskID, err := controller.queue.SubmitEnrichAll()
	if err != nil {
		respondInternalError(c, err, "enqueue enrichment")
		return
	}
	controller.auditor.Record(auth.GetUserID(c), entities.AuditEventCatalog, "enrich_missing", taskID, c.ClientIP())

	c.JSON(http.StatusAccepted, gin.H{
		"message": "enrichment started",
		"task_id": taskID,
	})
}
