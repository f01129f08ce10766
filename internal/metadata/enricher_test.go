package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/shelfmark/shelfmark/internal/entities"
)

type mockProvider struct {
	searchByISBNResult  *BookMetadata
	searchByISBNError   error
	searchByTitleResult *BookMetadata
	searchByTitleError  error
}

func (m *mockProvider) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	return m.searchByISBNResult, m.searchByISBNError
}

func (m *mockProvider) SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error) {
	return m.searchByTitleResult, m.searchByTitleError
}

type mockCatalog struct {
	book         *entities.Book
	getBookError error
	updateError  error
	updates      map[string]any
	missing      []entities.Book
}

func (m *mockCatalog) GetByID(id string) (*entities.Book, error) {
	if m.getBookError != nil {
		return nil, m.getBookError
	}
	return m.book, nil
}

func (m *mockCatalog) Update(id string, updates map[string]any) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.updates = updates
	if isbn, ok := updates["isbn"].(string); ok {
		m.book.ISBN = isbn
	}
	if cover, ok := updates["cover_url"].(string); ok {
		m.book.CoverURL = cover
	}
	if year, ok := updates["year"].(int); ok {
		m.book.Year = year
	}
	if description, ok := updates["description"].(string); ok {
		m.book.Description = description
	}
	return nil
}

func (m *mockCatalog) ListMissingMetadata() ([]entities.Book, error) {
	return m.missing, nil
}

type mockInvalidator struct {
	invalidated []string
}

func (m *mockInvalidator) InvalidateCover(bookID string) error {
	m.invalidated = append(m.invalidated, bookID)
	return nil
}

func TestEnrichBook_WithISBN(t *testing.T) {
	book := &entities.Book{
		ID:    "book-1",
		Title: "The Left Hand of Darkness",
		ISBN:  "9780441478125",
	}

	provider := &mockProvider{
		searchByISBNResult: &BookMetadata{
			Title:           "The Left Hand of Darkness",
			Author:          "Ursula K. Le Guin",
			ISBN:            "9780441478125",
			PublicationYear: 1969,
			CoverURL:        "https://covers.openlibrary.org/b/isbn/9780441478125-L.jpg",
		},
	}

	catalog := &mockCatalog{book: book}
	enricher := NewEnricher(provider, catalog)

	result, err := enricher.EnrichBook(context.Background(), "book-1")
	if err != nil {
		t.Fatalf("EnrichBook failed: %v", err)
	}

	if result.Book.Year != 1969 {
		t.Errorf("expected year 1969, got %d", result.Book.Year)
	}
	if result.Book.CoverURL == "" {
		t.Error("expected cover URL to be set")
	}
	if len(result.FieldsUpdated) != 2 {
		t.Errorf("expected 2 fields updated (cover_url, year), got %v", result.FieldsUpdated)
	}
}

func TestEnrichBook_FallsBackToTitleSearch(t *testing.T) {
	book := &entities.Book{
		ID:     "book-1",
		Title:  "Solaris",
		Author: &entities.Author{Name: "Stanislaw Lem"},
	}

	provider := &mockProvider{
		searchByISBNError: errors.New("not found"),
		searchByTitleResult: &BookMetadata{
			Title:           "Solaris",
			ISBN:            "9780156027601",
			PublicationYear: 1961,
		},
	}

	catalog := &mockCatalog{book: book}
	enricher := NewEnricher(provider, catalog)

	result, err := enricher.EnrichBook(context.Background(), "book-1")
	if err != nil {
		t.Fatalf("EnrichBook failed: %v", err)
	}

	if result.Book.ISBN != "9780156027601" {
		t.Errorf("expected ISBN to be filled in, got %q", result.Book.ISBN)
	}
	if result.Book.Year != 1961 {
		t.Errorf("expected year 1961, got %d", result.Book.Year)
	}
}

func TestEnrichBook_NeverOverwritesExistingFields(t *testing.T) {
	book := &entities.Book{
		ID:          "book-1",
		Title:       "Dune",
		ISBN:        "9780441172719",
		Year:        1965,
		Description: "hand-written description",
	}

	provider := &mockProvider{
		searchByISBNResult: &BookMetadata{
			ISBN:            "9999999999999",
			PublicationYear: 2007,
			Description:     "publisher blurb",
		},
	}

	catalog := &mockCatalog{book: book}
	enricher := NewEnricher(provider, catalog)

	result, err := enricher.EnrichBook(context.Background(), "book-1")
	if err != nil {
		t.Fatalf("EnrichBook failed: %v", err)
	}

	if len(result.FieldsUpdated) != 0 {
		t.Errorf("expected no fields updated, got %v", result.FieldsUpdated)
	}
	if book.ISBN != "9780441172719" {
		t.Errorf("ISBN was overwritten: %q", book.ISBN)
	}
	if book.Description != "hand-written description" {
		t.Errorf("description was overwritten: %q", book.Description)
	}
}

func TestEnrichBook_InvalidatesChangedCover(t *testing.T) {
	book := &entities.Book{
		ID:       "book-1",
		Title:    "Hyperion",
		CoverURL: "https://example.com/old.jpg",
	}

	provider := &mockProvider{
		searchByTitleResult: &BookMetadata{
			CoverURL: "https://example.com/new.jpg",
		},
	}

	catalog := &mockCatalog{book: book}
	invalidator := &mockInvalidator{}
	enricher := NewEnricher(provider, catalog)
	enricher.SetCoverInvalidator(invalidator)

	if _, err := enricher.EnrichBook(context.Background(), "book-1"); err != nil {
		t.Fatalf("EnrichBook failed: %v", err)
	}

	if len(invalidator.invalidated) != 1 || invalidator.invalidated[0] != "book-1" {
		t.Errorf("expected cover invalidation for book-1, got %v", invalidator.invalidated)
	}
	if book.CoverURL != "https://example.com/new.jpg" {
		t.Errorf("cover URL not refreshed: %q", book.CoverURL)
	}
}

func TestEnrichBook_SearchFailure(t *testing.T) {
	book := &entities.Book{ID: "book-1", Title: "Unknown"}

	provider := &mockProvider{
		searchByTitleError: errors.New("no results"),
	}

	enricher := NewEnricher(provider, &mockCatalog{book: book})

	if _, err := enricher.EnrichBook(context.Background(), "book-1"); err == nil {
		t.Error("expected error when search fails")
	}
}

func TestEnrichAllMissing(t *testing.T) {
	missing := []entities.Book{
		{ID: "book-1", Title: "First"},
		{ID: "book-2", Title: "Second"},
	}

	provider := &mockProvider{
		searchByTitleResult: &BookMetadata{PublicationYear: 2001},
	}

	// The shared mock returns the same book for every GetByID; good
	// enough to count outcomes.
	catalog := &mockCatalog{book: &missing[0], missing: missing}
	enricher := NewEnricher(provider, catalog)

	result, err := enricher.EnrichAllMissing(context.Background())
	if err != nil {
		t.Fatalf("EnrichAllMissing failed: %v", err)
	}

	if result.TotalBooks != 2 {
		t.Errorf("expected 2 total books, got %d", result.TotalBooks)
	}
	if result.Enriched+result.Skipped != 2 {
		t.Errorf("expected all books processed, got enriched=%d skipped=%d", result.Enriched, result.Skipped)
	}
	if result.Failed != 0 {
		t.Errorf("expected no failures, got %d", result.Failed)
	}
}

func TestEnrichAllMissing_CollectsFailures(t *testing.T) {
	missing := []entities.Book{{ID: "book-1", Title: "Doomed"}}

	provider := &mockProvider{
		searchByTitleError: errors.New("upstream down"),
	}

	catalog := &mockCatalog{book: &missing[0], missing: missing}
	enricher := NewEnricher(provider, catalog)

	result, err := enricher.EnrichAllMissing(context.Background())
	if err != nil {
		t.Fatalf("EnrichAllMissing failed: %v", err)
	}

	if result.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", result.Failed)
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error collected, got %v", result.Errors)
	}
}
