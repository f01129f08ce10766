package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AuditController exposes the admin audit trail.
type AuditController struct {
	events AuditLogStore
}

func NewAuditController(events AuditLogStore) *AuditController {
	return &AuditController{events: events}
}

// ListEvents returns the most recent audit events, newest first. The
// limit query parameter caps the page; the store enforces its own
// bounds.
func (controller *AuditController) ListEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := controller.events.ListRecent(limit)
	if err != nil {
		respondStoreError(c, err, "audit events")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
