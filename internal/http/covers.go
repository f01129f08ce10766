package http

import (
	"log"

	"github.com/gin-gonic/gin"
)

// CoversController serves locally cached book cover images.
type CoversController struct {
	books BookStore
	cache CoverCache
}

func NewCoversController(books BookStore, cache CoverCache) *CoversController {
	return &CoversController{books: books, cache: cache}
}

// GetCover streams the cover image for a book, fetching it into the
// local cache on first access.
func (controller *CoversController) GetCover(c *gin.Context) {
	book, err := controller.books.GetByID(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "book")
		return
	}

	if book.CoverURL == "" {
		respondNotFound(c, "cover")
		return
	}

	path, err := controller.cache.GetCover(book.ID, book.CoverURL)
	if err != nil {
		log.Printf("Failed to fetch cover for book %s: %v", book.ID, err)
		respondNotFound(c, "cover")
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.File(path)
}
