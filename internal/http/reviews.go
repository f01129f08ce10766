package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/auth"
)

// ReviewsController handles book reviews. One review per user per
// book; re-submitting replaces the earlier one.
type ReviewsController struct {
	reviews     ReviewStore
	books       BookStore
	loans       LoanStore
	requireLoan bool
}

func NewReviewsController(reviewStore ReviewStore, bookStore BookStore, loanStore LoanStore, requireLoan bool) *ReviewsController {
	return &ReviewsController{
		reviews:     reviewStore,
		books:       bookStore,
		loans:       loanStore,
		requireLoan: requireLoan,
	}
}

// ListReviews returns a book's reviews and aggregate rating.
func (controller *ReviewsController) ListReviews(c *gin.Context) {
	bookID := c.Param("id")
	if _, err := controller.books.GetByID(bookID); err != nil {
		respondStoreError(c, err, "book")
		return
	}

	reviews, err := controller.reviews.ListByBook(bookID)
	if err != nil {
		respondStoreError(c, err, "reviews")
		return
	}
	average, err := controller.reviews.AverageForBook(bookID)
	if err != nil {
		respondStoreError(c, err, "reviews")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":        reviews,
		"count":          len(reviews),
		"average_rating": average,
	})
}

type reviewRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

// CreateReview stores the user's review of a book. When the
// borrow-first policy is on, users who never borrowed the book are
// turned away.
func (controller *ReviewsController) CreateReview(c *gin.Context) {
	bookID := c.Param("id")

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondBadRequest(c, "rating must be between 1 and 5")
		return
	}

	if _, err := controller.books.GetByID(bookID); err != nil {
		respondStoreError(c, err, "book")
		return
	}

	userID := auth.GetUserID(c)
	if controller.requireLoan {
		borrowed, err := controller.loans.HasUserBorrowed(userID, bookID)
		if err != nil {
			respondStoreError(c, err, "loans")
			return
		}
		if !borrowed {
			respondForbidden(c, "you can only review books you have borrowed")
			return
		}
	}

	review, err := controller.reviews.Upsert(userID, bookID, req.Rating, req.Text)
	if err != nil {
		respondStoreError(c, err, "review")
		return
	}
	respondCreated(c, gin.H{
		"message": "review saved",
		"review":  review,
	})
}
