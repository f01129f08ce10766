package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/entities"
)

// RequestsController handles book requests. Students see and manage
// their own; admins see all and move requests through the workflow.
type RequestsController struct {
	requests RequestStore
	books    BookStore
	auditor  Auditor
}

func NewRequestsController(requestStore RequestStore, bookStore BookStore, auditor Auditor) *RequestsController {
	return &RequestsController{
		requests: requestStore,
		books:    bookStore,
		auditor:  auditor,
	}
}

// ListRequests returns the user's requests, or every request for admins.
func (controller *RequestsController) ListRequests(c *gin.Context) {
	var (
		result []entities.Request
		err    error
	)
	if auth.IsAdmin(c) {
		result, err = controller.requests.ListAll()
	} else {
		result, err = controller.requests.ListByUser(auth.GetUserID(c))
	}
	if err != nil {
		respondStoreError(c, err, "requests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": result, "count": len(result)})
}

type createRequestBody struct {
	BookID string `json:"book_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Reason string `json:"reason"`
}

// CreateRequest files a request, either for a catalog book by id or as
// free text for a title the library does not hold.
func (controller *RequestsController) CreateRequest(c *gin.Context) {
	var req createRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.BookID == "" && req.Title == "" {
		respondBadRequest(c, "book_id or title is required")
		return
	}
	if req.BookID != "" {
		if _, err := controller.books.GetByID(req.BookID); err != nil {
			respondStoreError(c, err, "book")
			return
		}
	}

	request := &entities.Request{
		UserID: auth.GetUserID(c),
		BookID: req.BookID,
		Title:  req.Title,
		Author: strings.TrimSpace(req.Author),
		Reason: strings.TrimSpace(req.Reason),
	}
	if err := controller.requests.Create(request); err != nil {
		respondStoreError(c, err, "request")
		return
	}
	respondCreated(c, gin.H{
		"message": "request submitted",
		"request": request,
	})
}

type updateRequestStatusBody struct {
	Status string `json:"status"`
}

// UpdateRequestStatus moves a request to approved or rejected. Admin only.
func (controller *RequestsController) UpdateRequestStatus(c *gin.Context) {
	id := c.Param("id")

	var req updateRequestStatusBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	status := entities.RequestStatus(req.Status)
	if status != entities.RequestStatusPending &&
		status != entities.RequestStatusApproved &&
		status != entities.RequestStatusRejected {
		respondBadRequest(c, "status must be pending, approved or rejected")
		return
	}

	if err := controller.requests.UpdateStatus(id, status); err != nil {
		respondStoreError(c, err, "request")
		return
	}
	controller.auditor.Record(auth.GetUserID(c), entities.AuditEventCatalog, "request_"+string(status), id, c.ClientIP())

	request, err := controller.requests.GetByID(id)
	if err != nil {
		respondStoreError(c, err, "request")
		return
	}
	c.JSON(http.StatusOK, request)
}

// DeleteRequest withdraws a request. Owners may delete while pending;
// admins may delete any request.
func (controller *RequestsController) DeleteRequest(c *gin.Context) {
	id := c.Param("id")

	request, err := controller.requests.GetByID(id)
	if err != nil {
		respondStoreError(c, err, "request")
		return
	}
	if !auth.IsAdmin(c) {
		if request.UserID != auth.GetUserID(c) {
			respondForbidden(c, "not your request")
			return
		}
		if request.Status != entities.RequestStatusPending {
			respondConflict(c, "only pending requests can be withdrawn")
			return
		}
	}

	if err := controller.requests.Delete(id); err != nil {
		respondStoreError(c, err, "request")
		return
	}
	respondSuccess(c, "request deleted")
}
