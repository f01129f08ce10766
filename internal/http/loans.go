package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/entities"
)

// LoansController handles borrowing, returning and listing loans. All
// routes operate on the signed-in user's own loans.
type LoansController struct {
	loans      LoanStore
	auditor    Auditor
	periodDays int
}

func NewLoansController(loanStore LoanStore, auditor Auditor, periodDays int) *LoansController {
	return &LoansController{
		loans:      loanStore,
		auditor:    auditor,
		periodDays: periodDays,
	}
}

// ListLoans returns the user's full loan history, newest first.
func (controller *LoansController) ListLoans(c *gin.Context) {
	loans, err := controller.loans.ListByUser(auth.GetUserID(c), false)
	if err != nil {
		respondStoreError(c, err, "loans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans, "count": len(loans)})
}

// ListActiveLoans returns only unreturned loans.
func (controller *LoansController) ListActiveLoans(c *gin.Context) {
	loans, err := controller.loans.ListByUser(auth.GetUserID(c), true)
	if err != nil {
		respondStoreError(c, err, "loans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans, "count": len(loans)})
}

type borrowRequest struct {
	BookID string `json:"book_id"`
}

// Borrow takes one copy of a book for the signed-in user. When no
// copies remain the store reports it and the client gets a 409.
func (controller *LoansController) Borrow(c *gin.Context) {
	var req borrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.BookID == "" {
		respondBadRequest(c, "book_id is required")
		return
	}

	userID := auth.GetUserID(c)
	loan, err := controller.loans.Borrow(userID, req.BookID, controller.periodDays)
	if err != nil {
		respondStoreError(c, err, "book")
		return
	}
	controller.auditor.Record(userID, entities.AuditEventLoans, "borrow", loan.ID, c.ClientIP())

	c.JSON(http.StatusCreated, gin.H{
		"message": "book borrowed",
		"loan":    loan,
	})
}

// Return gives a borrowed copy back. Only the loan's owner may return
// it; a second return is rejected.
func (controller *LoansController) Return(c *gin.Context) {
	loanID := c.Param("id")
	userID := auth.GetUserID(c)

	loan, err := controller.loans.GetByID(loanID)
	if err != nil {
		respondStoreError(c, err, "loan")
		return
	}
	if loan.UserID != userID && !auth.IsAdmin(c) {
		respondForbidden(c, "not your loan")
		return
	}

	returned, err := controller.loans.Return(loanID)
	if err != nil {
		respondStoreError(c, err, "loan")
		return
	}
	controller.auditor.Record(userID, entities.AuditEventLoans, "return", loanID, c.ClientIP())

	c.JSON(http.StatusOK, gin.H{
		"message": "book returned",
		"loan":    returned,
	})
}
