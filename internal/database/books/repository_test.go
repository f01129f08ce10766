package books

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/entities"
)

func setupTestRepo(t *testing.T) (*Repository, *database.Database, func()) {
	t.Helper()
	dbPath := "./test_books_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), db, cleanup
}

func addBook(t *testing.T, db *database.Database, repo *Repository, title, authorName, genreName, language string, copies int) *entities.Book {
	t.Helper()
	author := &entities.Author{Name: authorName}
	require.NoError(t, db.DB.Where(entities.Author{Name: authorName}).FirstOrCreate(author).Error)
	genre := &entities.Genre{Name: genreName}
	require.NoError(t, db.DB.Where(entities.Genre{Name: genreName}).FirstOrCreate(genre).Error)

	book := &entities.Book{
		Title:       title,
		AuthorID:    author.ID,
		GenreID:     genre.ID,
		Language:    language,
		TotalCopies: copies,
	}
	require.NoError(t, repo.Create(book))
	return book
}

func TestRepository_Create(t *testing.T) {
	t.Run("defaults available copies to total", func(t *testing.T) {
		repo, db, cleanup := setupTestRepo(t)
		defer cleanup()

		book := addBook(t, db, repo, "Defaults", "Author", "Genre", "English", 4)

		stored, err := repo.GetByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, stored.TotalCopies)
		assert.Equal(t, 4, stored.AvailableCopies)
	})

	t.Run("clamps available above total", func(t *testing.T) {
		repo, _, cleanup := setupTestRepo(t)
		defer cleanup()

		book := &entities.Book{Title: "Clamped", TotalCopies: 2, AvailableCopies: 9}
		require.NoError(t, repo.Create(book))
		assert.Equal(t, 2, book.AvailableCopies)
	})

	t.Run("clamps negative available to zero", func(t *testing.T) {
		repo, _, cleanup := setupTestRepo(t)
		defer cleanup()

		book := &entities.Book{Title: "Negative", TotalCopies: 3, AvailableCopies: -2}
		require.NoError(t, repo.Create(book))

		stored, err := repo.GetByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, stored.TotalCopies)
		assert.Equal(t, 0, stored.AvailableCopies)
	})

	t.Run("clamps negative total to an empty book", func(t *testing.T) {
		repo, _, cleanup := setupTestRepo(t)
		defer cleanup()

		book := &entities.Book{Title: "Nothing", TotalCopies: -1, AvailableCopies: -1}
		require.NoError(t, repo.Create(book))

		stored, err := repo.GetByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stored.TotalCopies)
		assert.Equal(t, 0, stored.AvailableCopies)
	})
}

func TestRepository_List(t *testing.T) {
	repo, db, cleanup := setupTestRepo(t)
	defer cleanup()

	addBook(t, db, repo, "Dune", "Frank Herbert", "Science Fiction", "English", 2)
	addBook(t, db, repo, "Solaris", "Stanislaw Lem", "Science Fiction", "Polish", 1)
	addBook(t, db, repo, "Cien años de soledad", "Gabriel García Márquez", "Fiction", "Spanish", 1)

	t.Run("no filter returns everything sorted by title", func(t *testing.T) {
		books, err := repo.List(Filter{})
		require.NoError(t, err)
		require.Len(t, books, 3)
		assert.Equal(t, "Cien años de soledad", books[0].Title)
	})

	t.Run("filters by genre name", func(t *testing.T) {
		books, err := repo.List(Filter{Genre: "Science Fiction"})
		require.NoError(t, err)
		assert.Len(t, books, 2)
	})

	t.Run("filters by language", func(t *testing.T) {
		books, err := repo.List(Filter{Language: "Polish"})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Solaris", books[0].Title)
	})

	t.Run("substring match covers author name", func(t *testing.T) {
		books, err := repo.List(Filter{Query: "Herbert"})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Dune", books[0].Title)
	})

	t.Run("preloads author and genre", func(t *testing.T) {
		books, err := repo.List(Filter{Query: "Solaris"})
		require.NoError(t, err)
		require.Len(t, books, 1)
		require.NotNil(t, books[0].Author)
		assert.Equal(t, "Stanislaw Lem", books[0].Author.Name)
		require.NotNil(t, books[0].Genre)
		assert.Equal(t, "Science Fiction", books[0].Genre.Name)
	})
}

func TestRepository_Update(t *testing.T) {
	t.Run("raising total adds available copies", func(t *testing.T) {
		repo, db, cleanup := setupTestRepo(t)
		defer cleanup()
		book := addBook(t, db, repo, "Growing", "A", "G", "English", 1)

		require.NoError(t, repo.Update(book.ID, map[string]any{"total_copies": 5}))

		updated, err := repo.GetByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, updated.TotalCopies)
		assert.Equal(t, 5, updated.AvailableCopies)
	})

	t.Run("lowering total never strands negative availability", func(t *testing.T) {
		repo, db, cleanup := setupTestRepo(t)
		defer cleanup()
		book := addBook(t, db, repo, "Shrinking", "A", "G", "English", 3)

		// Two copies out on loan.
		require.NoError(t, db.DB.Model(&entities.Book{}).Where("id = ?", book.ID).
			Update("available_copies", 1).Error)

		require.NoError(t, repo.Update(book.ID, map[string]any{"total_copies": 1}))

		updated, err := repo.GetByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.TotalCopies)
		assert.Equal(t, 0, updated.AvailableCopies)
	})

	t.Run("explicit available is clamped to total", func(t *testing.T) {
		repo, db, cleanup := setupTestRepo(t)
		defer cleanup()
		book := addBook(t, db, repo, "Clamp Me", "A", "G", "English", 2)

		require.NoError(t, repo.Update(book.ID, map[string]any{"available_copies": 10}))

		updated, err := repo.GetByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, updated.AvailableCopies)
	})

	t.Run("unknown id yields ErrNotFound", func(t *testing.T) {
		repo, _, cleanup := setupTestRepo(t)
		defer cleanup()

		err := repo.Update("missing", map[string]any{"title": "X"})
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}

func TestRepository_Languages(t *testing.T) {
	repo, db, cleanup := setupTestRepo(t)
	defer cleanup()

	addBook(t, db, repo, "One", "A", "G", "English", 1)
	addBook(t, db, repo, "Two", "A", "G", "English", 1)
	addBook(t, db, repo, "Three", "A", "G", "German", 1)

	languages, err := repo.Languages()
	require.NoError(t, err)
	assert.Equal(t, []string{"English", "German"}, languages)
}
