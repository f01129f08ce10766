package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const openLibraryUserAgent = "Shelfmark/1.0"

// BookMetadata contains book information fetched from an external source.
type BookMetadata struct {
	Title           string `json:"title,omitempty"`
	Author          string `json:"author,omitempty"`
	ISBN            string `json:"isbn,omitempty"`
	CoverURL        string `json:"cover_url,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty"`
	Description     string `json:"description,omitempty"`
}

// OpenLibraryClient fetches book metadata from the Open Library API.
// Requests are rate limited to one per second per their usage policy.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewOpenLibraryClient creates a new Open Library API client.
func NewOpenLibraryClient() *OpenLibraryClient {
	return &OpenLibraryClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     "https://openlibrary.org",
		rateLimiter: newRateLimiter(time.Second),
	}
}

// SearchByISBN looks up a book by its ISBN.
func (c *OpenLibraryClient) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("invalid ISBN")
	}

	c.rateLimiter.wait()

	var bookData openLibraryBook
	if err := c.getJSON(ctx, fmt.Sprintf("%s/isbn/%s.json", c.baseURL, isbn), &bookData); err != nil {
		return nil, err
	}

	metadata := &BookMetadata{
		Title:    bookData.Title,
		ISBN:     isbn,
		CoverURL: coverURLForISBN(isbn),
	}
	if bookData.PublishDate != "" {
		metadata.PublicationYear = extractYear(bookData.PublishDate)
	}
	switch v := bookData.Description.(type) {
	case string:
		metadata.Description = v
	case map[string]any:
		if val, ok := v["value"].(string); ok {
			metadata.Description = val
		}
	}

	// The by-ISBN endpoint only carries author references
	if len(bookData.Authors) > 0 {
		if name, err := c.fetchAuthorName(ctx, bookData.Authors[0].Key); err == nil {
			metadata.Author = name
		}
	}

	return metadata, nil
}

// SearchByTitle looks up a book by title and author, returning the best
// scoring match.
func (c *OpenLibraryClient) SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	c.rateLimiter.wait()

	q := title
	if author != "" {
		q = fmt.Sprintf("%s %s", title, author)
	}
	searchURL := fmt.Sprintf("%s/search.json?q=%s&limit=5", c.baseURL, url.QueryEscape(q))

	var searchResult openLibrarySearchResult
	if err := c.getJSON(ctx, searchURL, &searchResult); err != nil {
		return nil, err
	}
	if len(searchResult.Docs) == 0 {
		return nil, fmt.Errorf("no results found for: %s", title)
	}

	doc := findBestMatch(searchResult.Docs, title, author)

	metadata := &BookMetadata{
		Title:           doc.Title,
		PublicationYear: doc.FirstPublishYear,
	}
	if len(doc.AuthorName) > 0 {
		metadata.Author = doc.AuthorName[0]
	}
	if len(doc.ISBN) > 0 {
		metadata.ISBN = doc.ISBN[0]
		metadata.CoverURL = coverURLForISBN(doc.ISBN[0])
	} else if doc.CoverI != 0 {
		metadata.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", doc.CoverI)
	}

	return metadata, nil
}

func (c *OpenLibraryClient) fetchAuthorName(ctx context.Context, authorKey string) (string, error) {
	if authorKey == "" {
		return "", fmt.Errorf("empty author key")
	}

	c.rateLimiter.wait()

	var authorData struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s%s.json", c.baseURL, authorKey), &authorData); err != nil {
		return "", err
	}
	return authorData.Name, nil
}

func (c *OpenLibraryClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", openLibraryUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("not found")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// findBestMatch prefers exact title matches, matching authors, and
// results that carry an ISBN or cover.
func findBestMatch(docs []openLibrarySearchDoc, title, author string) *openLibrarySearchDoc {
	titleLower := strings.ToLower(title)
	authorLower := strings.ToLower(author)

	var bestMatch *openLibrarySearchDoc
	bestScore := -1

	for i := range docs {
		doc := &docs[i]
		score := 0

		if strings.ToLower(doc.Title) == titleLower {
			score += 10
		} else if strings.Contains(strings.ToLower(doc.Title), titleLower) {
			score += 5
		}

		if author != "" {
			for _, docAuthor := range doc.AuthorName {
				if strings.ToLower(docAuthor) == authorLower {
					score += 10
					break
				} else if strings.Contains(strings.ToLower(docAuthor), authorLower) {
					score += 5
					break
				}
			}
		}

		if len(doc.ISBN) > 0 {
			score += 2
		}
		if doc.CoverI != 0 {
			score += 1
		}

		if score > bestScore {
			bestScore = score
			bestMatch = doc
		}
	}

	if bestMatch == nil && len(docs) > 0 {
		bestMatch = &docs[0]
	}
	return bestMatch
}

func coverURLForISBN(isbn string) string {
	return fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", isbn)
}

// normalizeISBN strips separators and validates the length.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.TrimSpace(isbn)

	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	return isbn
}

// extractYear tries to extract a 4-digit year from a date string.
func extractYear(dateStr string) int {
	dateStr = strings.TrimSpace(dateStr)
	if len(dateStr) < 4 {
		return 0
	}

	formats := []string{
		"2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2006-01-02",
		"January 2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t.Year()
		}
	}

	// Last resort: find 4 consecutive digits
	for i := 0; i <= len(dateStr)-4; i++ {
		if dateStr[i] >= '0' && dateStr[i] <= '9' {
			var year int
			if _, err := fmt.Sscanf(dateStr[i:i+4], "%d", &year); err == nil && year > 1000 && year < 3000 {
				return year
			}
		}
	}
	return 0
}

// Open Library API response types

type openLibraryBook struct {
	Key         string      `json:"key"`
	Title       string      `json:"title"`
	Authors     []authorRef `json:"authors"`
	PublishDate string      `json:"publish_date"`
	Description any         `json:"description"` // string or {type, value}
}

type authorRef struct {
	Key string `json:"key"`
}

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	CoverI           int      `json:"cover_i"`
}
