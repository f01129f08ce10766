package metadata

import (
	"context"
	"fmt"

	"github.com/shelfmark/shelfmark/internal/entities"
)

// Provider fetches book metadata from an external source.
type Provider interface {
	SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error)
	SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error)
}

// Catalog is the slice of the books repository the enricher needs.
type Catalog interface {
	GetByID(id string) (*entities.Book, error)
	Update(id string, updates map[string]any) error
	ListMissingMetadata() ([]entities.Book, error)
}

// CoverInvalidator drops a cached cover when its URL changes.
type CoverInvalidator interface {
	InvalidateCover(bookID string) error
}

// EnrichmentResult describes what a single enrichment changed.
type EnrichmentResult struct {
	Book          *entities.Book `json:"book"`
	FieldsUpdated []string       `json:"fields_updated"`
	Source        string         `json:"source"`
}

// BulkEnrichmentResult summarises a catalog-wide enrichment run.
type BulkEnrichmentResult struct {
	TotalBooks int      `json:"total_books"`
	Enriched   int      `json:"enriched"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// Enricher fills in missing catalog fields (ISBN, cover, year,
// description) from an external metadata source.
type Enricher struct {
	provider Provider
	catalog  Catalog
	covers   CoverInvalidator
}

// NewEnricher creates an Enricher over the given provider and catalog.
func NewEnricher(provider Provider, catalog Catalog) *Enricher {
	return &Enricher{
		provider: provider,
		catalog:  catalog,
	}
}

// SetCoverInvalidator sets the cover cache invalidator (optional).
func (e *Enricher) SetCoverInvalidator(invalidator CoverInvalidator) {
	e.covers = invalidator
}

// EnrichBook fetches metadata for a book and fills in its empty fields.
// It tries the book's ISBN first and falls back to a title+author
// search. Existing non-empty fields are never overwritten except the
// cover URL, which is refreshed when the source has a different one.
func (e *Enricher) EnrichBook(ctx context.Context, bookID string) (*EnrichmentResult, error) {
	book, err := e.catalog.GetByID(bookID)
	if err != nil {
		return nil, err
	}

	var metadata *BookMetadata

	if book.ISBN != "" {
		metadata, _ = e.provider.SearchByISBN(ctx, book.ISBN)
	}
	if metadata == nil {
		authorName := ""
		if book.Author != nil {
			authorName = book.Author.Name
		}
		metadata, err = e.provider.SearchByTitle(ctx, book.Title, authorName)
		if err != nil {
			return nil, fmt.Errorf("metadata search failed: %w", err)
		}
	}

	updates, fieldsUpdated := buildUpdates(book, metadata)

	if len(fieldsUpdated) > 0 {
		if _, changed := updates["cover_url"]; changed && e.covers != nil {
			_ = e.covers.InvalidateCover(book.ID)
		}

		if err := e.catalog.Update(book.ID, updates); err != nil {
			return nil, fmt.Errorf("update book metadata: %w", err)
		}

		book, err = e.catalog.GetByID(book.ID)
		if err != nil {
			return nil, err
		}
	}

	return &EnrichmentResult{
		Book:          book,
		FieldsUpdated: fieldsUpdated,
		Source:        "openlibrary",
	}, nil
}

// EnrichAllMissing enriches every book missing an ISBN, cover or
// publication year. Individual failures are collected, not fatal.
func (e *Enricher) EnrichAllMissing(ctx context.Context) (*BulkEnrichmentResult, error) {
	books, err := e.catalog.ListMissingMetadata()
	if err != nil {
		return nil, fmt.Errorf("list books missing metadata: %w", err)
	}

	result := &BulkEnrichmentResult{TotalBooks: len(books)}

	for _, book := range books {
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, "operation cancelled")
			return result, ctx.Err()
		default:
		}

		enriched, err := e.EnrichBook(ctx, book.ID)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", book.Title, err))
			continue
		}

		if len(enriched.FieldsUpdated) > 0 {
			result.Enriched++
		} else {
			result.Skipped++
		}
	}

	return result, nil
}

// buildUpdates compares the stored book with the fetched metadata and
// returns only the fields worth writing.
func buildUpdates(book *entities.Book, metadata *BookMetadata) (map[string]any, []string) {
	updates := map[string]any{}
	var fieldsUpdated []string

	if book.ISBN == "" && metadata.ISBN != "" {
		updates["isbn"] = metadata.ISBN
		fieldsUpdated = append(fieldsUpdated, "isbn")
	}
	if metadata.CoverURL != "" && book.CoverURL != metadata.CoverURL {
		updates["cover_url"] = metadata.CoverURL
		fieldsUpdated = append(fieldsUpdated, "cover_url")
	}
	if book.Year == 0 && metadata.PublicationYear > 0 {
		updates["year"] = metadata.PublicationYear
		fieldsUpdated = append(fieldsUpdated, "year")
	}
	if book.Description == "" && metadata.Description != "" {
		updates["description"] = metadata.Description
		fieldsUpdated = append(fieldsUpdated, "description")
	}

	return updates, fieldsUpdated
}
