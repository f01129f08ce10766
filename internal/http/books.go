package http

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/database/books"
	"github.com/shelfmark/shelfmark/internal/entities"
)

// BooksController serves the catalog: public listing and detail,
// admin-only mutations.
type BooksController struct {
	books   BookStore
	authors AuthorStore
	genres  GenreStore
	reviews ReviewStore
	auditor Auditor
	queue   TaskQueue
}

func NewBooksController(bookStore BookStore, authorStore AuthorStore, genreStore GenreStore, reviewStore ReviewStore, auditor Auditor, queue TaskQueue) *BooksController {
	return &BooksController{
		books:   bookStore,
		authors: authorStore,
		genres:  genreStore,
		reviews: reviewStore,
		auditor: auditor,
		queue:   queue,
	}
}

// ListBooks returns catalog books filtered by the query parameters
// genre, language, available and q.
func (controller *BooksController) ListBooks(c *gin.Context) {
	filter := books.Filter{
		Genre:         c.Query("genre"),
		Language:      c.Query("language"),
		AvailableOnly: c.Query("available") == "true",
		Query:         strings.TrimSpace(c.Query("q")),
	}

	result, err := controller.books.List(filter)
	if err != nil {
		respondStoreError(c, err, "books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": result, "count": len(result)})
}

// GetBook returns one book with its aggregate rating.
func (controller *BooksController) GetBook(c *gin.Context) {
	book, err := controller.books.GetByID(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "book")
		return
	}

	average, err := controller.reviews.AverageForBook(book.ID)
	if err != nil {
		respondStoreError(c, err, "book rating")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"book":           book,
		"average_rating": average,
	})
}

type bookRequest struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	AuthorBio       string `json:"author_bio"`
	Genre           string `json:"genre"`
	Language        string `json:"language"`
	Year            int    `json:"year"`
	ISBN            string `json:"isbn"`
	Description     string `json:"description"`
	TotalCopies     *int   `json:"total_copies"`
	AvailableCopies *int   `json:"available_copies"`
}

// CreateBook adds a book to the catalog. Author and genre arrive as
// names and are resolved or created on the fly.
func (controller *BooksController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if req.Title == "" {
		respondBadRequest(c, "title is required")
		return
	}
	if req.Author == "" {
		respondBadRequest(c, "author is required")
		return
	}
	if req.TotalCopies != nil && *req.TotalCopies < 0 {
		respondBadRequest(c, "total_copies cannot be negative")
		return
	}
	if req.AvailableCopies != nil && *req.AvailableCopies < 0 {
		respondBadRequest(c, "available_copies cannot be negative")
		return
	}

	author, err := controller.authors.GetOrCreate(req.Author, req.AuthorBio)
	if err != nil {
		respondStoreError(c, err, "author")
		return
	}

	book := &entities.Book{
		Title:       req.Title,
		AuthorID:    author.ID,
		Language:    req.Language,
		Year:        req.Year,
		ISBN:        req.ISBN,
		Description: req.Description,
		TotalCopies: 1,
	}
	if req.TotalCopies != nil {
		book.TotalCopies = *req.TotalCopies
	}
	if req.AvailableCopies != nil {
		book.AvailableCopies = *req.AvailableCopies
	}
	if req.Genre != "" {
		genre, err := controller.genres.GetOrCreate(req.Genre)
		if err != nil {
			respondStoreError(c, err, "genre")
			return
		}
		book.GenreID = genre.ID
	}

	if err := controller.books.Create(book); err != nil {
		respondStoreError(c, err, "book")
		return
	}
	controller.auditor.Record(auth.GetUserID(c), entities.AuditEventCatalog, "create_book", book.ID, c.ClientIP())

	// Backfill missing bibliographic data in the background.
	if controller.queue != nil && (book.ISBN == "" || book.Year == 0) {
		if _, err := controller.queue.SubmitEnrichBook(book.ID); err != nil {
			log.Printf("Failed to queue enrichment for book %s: %v", book.ID, err)
		}
	}

	created, err := controller.books.GetByID(book.ID)
	if err != nil {
		respondStoreError(c, err, "book")
		return
	}
	respondCreated(c, created)
}

// UpdateBook applies a partial update to a book.
func (controller *BooksController) UpdateBook(c *gin.Context) {
	id := c.Param("id")

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updates := map[string]any{}
	if title := strings.TrimSpace(req.Title); title != "" {
		updates["title"] = title
	}
	if name := strings.TrimSpace(req.Author); name != "" {
		author, err := controller.authors.GetOrCreate(name, req.AuthorBio)
		if err != nil {
			respondStoreError(c, err, "author")
			return
		}
		updates["author_id"] = author.ID
	}
	if req.Genre != "" {
		genre, err := controller.genres.GetOrCreate(req.Genre)
		if err != nil {
			respondStoreError(c, err, "genre")
			return
		}
		updates["genre_id"] = genre.ID
	}
	if req.Language != "" {
		updates["language"] = req.Language
	}
	if req.Year != 0 {
		updates["year"] = req.Year
	}
	if req.ISBN != "" {
		updates["isbn"] = req.ISBN
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.TotalCopies != nil {
		updates["total_copies"] = *req.TotalCopies
	}
	if req.AvailableCopies != nil {
		updates["available_copies"] = *req.AvailableCopies
	}
	if len(updates) == 0 {
		respondBadRequest(c, "no fields to update")
		return
	}

	if err := controller.books.Update(id, updates); err != nil {
		respondStoreError(c, err, "book")
		return
	}
	controller.auditor.Record(auth.GetUserID(c), entities.AuditEventCatalog, "update_book", id, c.ClientIP())

	book, err := controller.books.GetByID(id)
	if err != nil {
		respondStoreError(c, err, "book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteBook removes a book from the catalog.
func (controller *BooksController) DeleteBook(c *gin.Context) {
	id := c.Param("id")
	if err := controller.books.Delete(id); err != nil {
		respondStoreError(c, err, "book")
		return
	}
	controller.auditor.Record(auth.GetUserID(c), entities.AuditEventCatalog, "delete_book", id, c.ClientIP())
	respondSuccess(c, "book deleted")
}

// ListGenres returns all genres for the catalog filter dropdown.
func (controller *BooksController) ListGenres(c *gin.Context) {
	genres, err := controller.genres.List()
	if err != nil {
		respondStoreError(c, err, "genres")
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

// ListLanguages returns the distinct catalog languages.
func (controller *BooksController) ListLanguages(c *gin.Context) {
	languages, err := controller.books.Languages()
	if err != nil {
		respondStoreError(c, err, "languages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"languages": languages})
}
