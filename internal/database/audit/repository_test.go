package audit

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/entities"
)

func setupTestRepo(t *testing.T) (*Repository, func()) {
	t.Helper()
	dbPath := "./test_audit_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), cleanup
}

func TestRepository_Record(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	repo.Record("user-1", entities.AuditEventAuth, "login", "", "127.0.0.1")
	repo.Record("user-1", entities.AuditEventCatalog, "create_book", "book-1", "127.0.0.1")

	events, err := repo.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	for _, event := range events {
		assert.NotEmpty(t, event.ID)
		assert.Equal(t, "user-1", event.UserID)
		assert.False(t, event.CreatedAt.IsZero())
	}
}

func TestRepository_ListRecent(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	for i := 0; i < 5; i++ {
		repo.Record("user-1", entities.AuditEventAuth, "login", "", "")
	}

	events, err := repo.ListRecent(3)
	require.NoError(t, err)
	assert.Len(t, events, 3)

	// Out-of-range limits fall back to the default.
	events, err = repo.ListRecent(0)
	require.NoError(t, err)
	assert.Len(t, events, 5)
}
