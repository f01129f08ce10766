package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/auth"
)

// WishlistController manages the signed-in user's wishlist.
type WishlistController struct {
	wishlist WishlistStore
	books    BookStore
}

func NewWishlistController(wishlistStore WishlistStore, bookStore BookStore) *WishlistController {
	return &WishlistController{
		wishlist: wishlistStore,
		books:    bookStore,
	}
}

// ListWishlist returns the user's wishlist, newest first.
func (controller *WishlistController) ListWishlist(c *gin.Context) {
	entries, err := controller.wishlist.ListByUser(auth.GetUserID(c))
	if err != nil {
		respondStoreError(c, err, "wishlist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": entries, "count": len(entries)})
}

type wishlistRequest struct {
	BookID string `json:"book_id"`
}

// AddToWishlist puts a book on the wishlist. Adding a book that is
// already there succeeds and returns the existing entry.
func (controller *WishlistController) AddToWishlist(c *gin.Context) {
	var req wishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.BookID == "" {
		respondBadRequest(c, "book_id is required")
		return
	}

	// Reject unknown books up front; the entry itself has no FK check.
	if _, err := controller.books.GetByID(req.BookID); err != nil {
		respondStoreError(c, err, "book")
		return
	}

	entry, err := controller.wishlist.Add(auth.GetUserID(c), req.BookID)
	if err != nil {
		respondStoreError(c, err, "wishlist")
		return
	}
	respondCreated(c, gin.H{
		"message": "added to wishlist",
		"entry":   entry,
	})
}

// RemoveFromWishlist takes a book off the wishlist.
func (controller *WishlistController) RemoveFromWishlist(c *gin.Context) {
	err := controller.wishlist.Remove(auth.GetUserID(c), c.Param("bookId"))
	if err != nil {
		respondStoreError(c, err, "wishlist entry")
		return
	}
	respondSuccess(c, "removed from wishlist")
}
