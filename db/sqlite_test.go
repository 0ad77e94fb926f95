package db

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/nowplaying/migrations"
	"github.com/marcus-crane/nowplaying/shared"
)

func setupTestDB(t *testing.T) *SqliteStore {
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	// Every new connection to :memory: is a brand new database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		db.Close()
	})

	s := &SqliteStore{DB: db}
	require.NoError(t, s.ApplyMigrations(migrations.GetMigrations()))
	return s
}

func TestSqliteStore_UpsertAndGet(t *testing.T) {
	s := setupTestDB(t)

	_, err := s.GetArtwork("Daft Punk - Discovery")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.UpsertArtwork("Daft Punk - Discovery", shared.MISSING_COVER, time.Unix(100, 0))
	require.NoError(t, err)

	entry, err := s.GetArtwork("Daft Punk - Discovery")
	require.NoError(t, err)
	assert.True(t, entry.Negative())
	assert.Equal(t, "Daft Punk - Discovery", entry.AlbumID)
	assert.Equal(t, int64(100), entry.CreatedAt)

	// Forced re-resolution overwrites the previous value
	err = s.UpsertArtwork("Daft Punk - Discovery", "https://example.com/discovery.png", time.Unix(200, 0))
	require.NoError(t, err)

	entry, err = s.GetArtwork("Daft Punk - Discovery")
	require.NoError(t, err)
	assert.False(t, entry.Negative())
	assert.Equal(t, "https://example.com/discovery.png", entry.URL)
	assert.Equal(t, int64(200), entry.CreatedAt)
}

func TestSqliteStore_PruneNegative(t *testing.T) {
	s := setupTestDB(t)

	require.NoError(t, s.UpsertArtwork("a - 1", shared.MISSING_COVER, time.Unix(100, 0)))
	require.NoError(t, s.UpsertArtwork("a - 2", shared.MISSING_COVER, time.Unix(300, 0)))
	require.NoError(t, s.UpsertArtwork("a - 3", "https://example.com/3.jpg", time.Unix(100, 0)))

	pruned, err := s.PruneNegative(time.Unix(200, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	_, err = s.GetArtwork("a - 1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetArtwork("a - 2")
	assert.NoError(t, err)
	_, err = s.GetArtwork("a - 3")
	assert.NoError(t, err)
}

func TestSqliteStore_GetArtworkQueryError(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	mock.ExpectQuery("SELECT album_key, album_id, url, created_at FROM artwork_cache WHERE album_key = ?").
		WithArgs(ArtworkKey("x - y")).
		WillReturnError(errors.New("disk I/O error"))

	s := &SqliteStore{DB: sqlx.NewDb(db, "sqlmock")}
	_, err = s.GetArtwork("x - y")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArtworkKey_Stable(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ArtworkKey("Artist - Album"), ArtworkKey("Artist - Album"))
	assert.NotEqual(t, ArtworkKey("Artist - Album"), ArtworkKey("Artist - Album 2"))
	assert.Contains(t, ArtworkKey("Artist - Album"), "album:")
}
