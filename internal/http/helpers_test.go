package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/database/audit"
	"github.com/shelfmark/shelfmark/internal/database/authors"
	"github.com/shelfmark/shelfmark/internal/database/books"
	"github.com/shelfmark/shelfmark/internal/database/genres"
	"github.com/shelfmark/shelfmark/internal/database/loans"
	"github.com/shelfmark/shelfmark/internal/database/requests"
	"github.com/shelfmark/shelfmark/internal/database/reviews"
	"github.com/shelfmark/shelfmark/internal/database/users"
	"github.com/shelfmark/shelfmark/internal/database/wishlist"
	"github.com/shelfmark/shelfmark/internal/entities"
)

// testStores bundles the repositories backing the controllers under test.
type testStores struct {
	db       *database.Database
	users    *users.Repository
	books    *books.Repository
	authors  *authors.Repository
	genres   *genres.Repository
	loans    *loans.Repository
	wishlist *wishlist.Repository
	reviews  *reviews.Repository
	requests *requests.Repository
	audit    *audit.Repository
}

func setupTestStores(t *testing.T) (*testStores, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	stores := &testStores{
		db:       db,
		users:    users.NewRepository(db.DB),
		books:    books.NewRepository(db.DB),
		authors:  authors.NewRepository(db.DB),
		genres:   genres.NewRepository(db.DB),
		loans:    loans.NewRepository(db.DB),
		wishlist: wishlist.NewRepository(db.DB),
		reviews:  reviews.NewRepository(db.DB),
		requests: requests.NewRepository(db.DB),
		audit:    audit.NewRepository(db.DB),
	}
	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return stores, cleanup
}

// asUser fakes the session-loading middleware so handler tests can run
// without real cookies.
func asUser(user *entities.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, user.ID)
		c.Set(auth.ContextKeyEmail, user.Email)
		c.Set(auth.ContextKeyRole, user.Role)
		c.Next()
	}
}

func createTestUser(t *testing.T, stores *testStores, email string, role entities.UserRole) *entities.User {
	t.Helper()
	user := &entities.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Role:         role,
	}
	require.NoError(t, stores.users.Create(user))
	return user
}

func createTestBook(t *testing.T, stores *testStores, title string, copies int) *entities.Book {
	t.Helper()
	author, err := stores.authors.GetOrCreate("Ursula K. Le Guin", "")
	require.NoError(t, err)
	genre, err := stores.genres.GetOrCreate("Fiction")
	require.NoError(t, err)

	book := &entities.Book{
		Title:       title,
		AuthorID:    author.ID,
		GenreID:     genre.ID,
		Language:    "English",
		TotalCopies: copies,
	}
	require.NoError(t, stores.books.Create(book))
	return book
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, jsonBody(t, body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}
