package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-sqlite3"

	"github.com/shelfmark/shelfmark/internal/database"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Message: resource + " not found"})
}

// respondConflict sends a 409 Conflict response.
func respondConflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, ErrorResponse{Message: message})
}

// respondForbidden sends a 403 Forbidden response.
func respondForbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, ErrorResponse{Message: message})
}

// respondInternalError logs the error and sends a 500 Internal Server Error
// response. The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
}

// respondStoreError maps a data-layer error onto the right HTTP status.
// Unknown errors become a generic 500 so internals never leak.
func respondStoreError(c *gin.Context, err error, resource string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondNotFound(c, resource)
	case errors.Is(err, database.ErrEmailExists):
		respondConflict(c, "email already registered")
	case errors.Is(err, database.ErrBookUnavailable):
		respondConflict(c, "no copies of this book are currently available")
	case errors.Is(err, database.ErrLoanAlreadyReturned):
		respondConflict(c, "loan has already been returned")
	case isStoreUnavailable(err):
		log.Printf("Store unavailable (%s): %v", resource, err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "service temporarily unavailable"})
	default:
		respondInternalError(c, err, resource)
	}
}

// isStoreUnavailable reports whether the error means the database itself
// cannot be reached rather than the query failing.
func isStoreUnavailable(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrCantOpen, sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrIoErr:
			return true
		}
	}
	return false
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}
