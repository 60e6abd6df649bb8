package favorites

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupFavoritesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS favorites (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  user_id TEXT NOT NULL,
  listing_id TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  UNIQUE (user_id, listing_id)
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func TestInsertReportsNewRowOnce(t *testing.T) {
	db := setupFavoritesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	listingID := uuid.New()

	created, err := repo.Insert(ctx, userID, listingID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Insert(ctx, userID, listingID)
	require.NoError(t, err)
	assert.False(t, created, "duplicate insert should be swallowed")

	exists, err := repo.Exists(ctx, userID, listingID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDeleteReportsMissingRow(t *testing.T) {
	db := setupFavoritesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	listingID := uuid.New()

	removed, err := repo.Delete(ctx, userID, listingID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.Insert(ctx, userID, listingID)
	require.NoError(t, err)

	removed, err = repo.Delete(ctx, userID, listingID)
	require.NoError(t, err)
	assert.True(t, removed)

	exists, err := repo.Exists(ctx, userID, listingID)
	require.NoError(t, err)
	assert.False(t, exists)
}
