package playback

import (
	"context"
	"errors"
)

var (
	// ErrProviderUnavailable means the backend used to enumerate sources
	// (D-Bus, media-control) could not be reached at all.
	ErrProviderUnavailable = errors.New("media source provider unavailable")
	ErrNoSource            = errors.New("no eligible media source")
	ErrSnapshotUnreadable  = errors.New("could not read metadata from source")
)

// Provider is implemented once per platform. The reconciliation loop only
// ever talks to this interface.
type Provider interface {
	// ListCandidates enumerates every trackable source. Proxy sources
	// such as playerctld are never returned.
	ListCandidates(ctx context.Context) ([]Candidate, error)
	// ActiveSource is the provider's own notion of "the" current player,
	// used when no allowlist is configured.
	ActiveSource(ctx context.Context) (Candidate, error)
	Snapshot(ctx context.Context, sourceID string) (Snapshot, error)
}

type Status string

const (
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusStopped Status = "stopped"
)

// Priority orders candidates during selection, lower wins.
func (s Status) Priority() int {
	switch s {
	case StatusPlaying:
		return 0
	case StatusPaused:
		return 1
	default:
		return 2
	}
}

// Category picks which presence identity is used for a source.
type Category string

const (
	Audio Category = "audio"
	Video Category = "video"
)

// Snapshot is a single read of a source. Position and Duration are in
// whole seconds, Duration of 0 means unknown.
type Snapshot struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Position    uint64
	HasPosition bool
	Duration    uint64
	IsPlaying   bool
	TrackURL    string
	ArtURL      string
	SourceID    string
}

// AlbumID is the album identity used as the artwork cache key.
func (s Snapshot) AlbumID() string {
	return s.AlbumArtist + " - " + s.Album
}

func (s Snapshot) Status() Status {
	if s.IsPlaying {
		return StatusPlaying
	}
	return StatusPaused
}

// Candidate is one discoverable source at a point in time.
type Candidate struct {
	ID          string
	DisplayName string
	Status      Status
	// HasMetadata is true when the source currently reports a non-empty
	// title and artist.
	HasMetadata bool
	// Proxy marks aggregator pseudo-sources which must never be selected.
	Proxy bool
}

func (c Candidate) PlaybackPriority() int {
	return c.Status.Priority()
}

func (c Candidate) MetadataQuality() int {
	if c.HasMetadata {
		return 0
	}
	return 1
}
