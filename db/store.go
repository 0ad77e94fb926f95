package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/marcus-crane/nowplaying/shared"
)

var ErrNotFound = errors.New("no cached artwork for album")

// ArtworkEntry is one cached lookup result. URL is either a resolved
// image URL or shared.MISSING_COVER when nothing could be found.
type ArtworkEntry struct {
	Key       string `db:"album_key"`
	AlbumID   string `db:"album_id"`
	URL       string `db:"url"`
	CreatedAt int64  `db:"created_at"`
}

func (e ArtworkEntry) Negative() bool {
	return e.URL == shared.MISSING_COVER
}

// Store is a dumb key/value layer. Deciding what gets written and when
// is entirely up to the artwork resolver.
type Store interface {
	GetArtwork(albumID string) (ArtworkEntry, error)
	UpsertArtwork(albumID, url string, at time.Time) error
	// PruneNegative deletes negative entries created before the cutoff
	PruneNegative(before time.Time) (int64, error)
	Close() error
}

// ArtworkKey hashes an album identity so keys have a fixed shape no
// matter how long or odd the album and artist names are.
func ArtworkKey(albumID string) string {
	return fmt.Sprintf("album:%d", xxhash.Sum64String(albumID))
}
