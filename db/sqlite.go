package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/marcus-crane/nowplaying/shared"

	_ "modernc.org/sqlite"
)

type SqliteStore struct {
	DB *sqlx.DB
}

func NewSqliteStore(dsn string) (*SqliteStore, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single writer is all we ever have and it keeps sqlite happy
	db.SetMaxOpenConns(1)
	return &SqliteStore{
		DB: db,
	}, nil
}

func (s *SqliteStore) ApplyMigrations(migrations embed.FS) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return err
	}

	if err := goose.Up(s.DB.DB, "."); err != nil {
		return err
	}

	return nil
}

func (s *SqliteStore) GetArtwork(albumID string) (ArtworkEntry, error) {
	e := ArtworkEntry{}
	err := s.DB.Get(&e, "SELECT album_key, album_id, url, created_at FROM artwork_cache WHERE album_key = ?", ArtworkKey(albumID))
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrNotFound
	}
	if err != nil {
		return e, fmt.Errorf("failed to read artwork cache: %w", err)
	}
	return e, nil
}

func (s *SqliteStore) UpsertArtwork(albumID, url string, at time.Time) error {
	query := `
	INSERT INTO artwork_cache (album_key, album_id, url, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (album_key) DO UPDATE SET
	url = excluded.url,
	created_at = excluded.created_at
	`
	_, err := s.DB.Exec(query, ArtworkKey(albumID), albumID, url, at.Unix())
	return err
}

func (s *SqliteStore) PruneNegative(before time.Time) (int64, error) {
	res, err := s.DB.Exec("DELETE FROM artwork_cache WHERE url = ? AND created_at < ?", shared.MISSING_COVER, before.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}
