package artwork

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/marcus-crane/nowplaying/db"
	"github.com/marcus-crane/nowplaying/shared"
)

// ErrNotFound is what a Lookup wraps when the catalogue answered and does
// not have the album. Any other error is treated as transient.
var ErrNotFound = errors.New("artwork not found")

// Lookup is an external catalogue that can map an album to a cover URL.
type Lookup interface {
	Name() string
	Lookup(ctx context.Context, artist, album string) (string, error)
}

// Apple Music tacks these onto album names but Last.fm doesn't have them
var releaseTypeSuffixes = []string{" - EP", " - Single"}

type Options struct {
	// Primary is skipped entirely when nil, ie; no Last.fm API key
	Primary Lookup
	// Fallback is skipped entirely when nil
	Fallback Lookup
	Store    db.Store
	// NegativeTTL makes negative entries eligible for another lookup once
	// they're older than this. Zero means they never expire.
	NegativeTTL time.Duration
}

type Request struct {
	AlbumID     string
	Album       string
	AlbumArtist string
	// ArtURL is whatever art the source itself reported
	ArtURL           string
	NativeArtAllowed bool
}

type Resolver struct {
	primary     Lookup
	fallback    Lookup
	store       db.Store
	negativeTTL time.Duration
	now         func() time.Time

	resolved    bool
	lastAlbumID string
	lastCover   string
}

func NewResolver(opts Options) *Resolver {
	store := opts.Store
	if store == nil {
		store = db.NewMemoryStore()
	}
	return &Resolver{
		primary:     opts.Primary,
		fallback:    opts.Fallback,
		store:       store,
		negativeTTL: opts.NegativeTTL,
		now:         time.Now,
	}
}

// Resolve returns the image to display for a snapshot. The result is a
// remote URL or shared.MISSING_COVER, never empty.
func (r *Resolver) Resolve(ctx context.Context, req Request) string {
	cover := r.lookup(ctx, req)
	if cover != shared.MISSING_COVER {
		return cover
	}
	// Source provided art changes per item (think YouTube thumbnails
	// under one channel) so it's never cached against the album
	if req.NativeArtAllowed && IsRemoteURL(req.ArtURL) {
		return req.ArtURL
	}
	return shared.MISSING_COVER
}

// lookup only touches the cache or network when the album identity
// changes, so call volume is bounded by album transitions, not polls.
func (r *Resolver) lookup(ctx context.Context, req Request) string {
	if r.resolved && req.AlbumID == r.lastAlbumID {
		return r.lastCover
	}

	cover, ok := r.cached(req.AlbumID)
	if !ok {
		var conclusive bool
		cover, conclusive = r.resolveRemote(ctx, req)
		// A cancelled or failed lookup tells us nothing about the album
		if ctx.Err() != nil || !conclusive {
			return cover
		}
		if err := r.store.UpsertArtwork(req.AlbumID, cover, r.now()); err != nil {
			slog.Error("Failed to save artwork to cache",
				slog.String("error", err.Error()),
				slog.String("album_id", req.AlbumID))
		}
	}

	r.resolved = true
	r.lastAlbumID = req.AlbumID
	r.lastCover = cover
	return cover
}

func (r *Resolver) cached(albumID string) (string, bool) {
	entry, err := r.store.GetArtwork(albumID)
	if errors.Is(err, db.ErrNotFound) {
		return "", false
	}
	if err != nil {
		slog.Error("Failed to read artwork cache",
			slog.String("error", err.Error()),
			slog.String("album_id", albumID))
		return "", false
	}
	if entry.Negative() && r.negativeTTL > 0 {
		if r.now().Sub(time.Unix(entry.CreatedAt, 0)) > r.negativeTTL {
			slog.Debug("Negative artwork cache entry expired", slog.String("album_id", albumID))
			return "", false
		}
	}
	slog.Debug("Artwork found in cache", slog.String("album_id", albumID), slog.String("url", entry.URL))
	return entry.URL, true
}

// resolveRemote runs the lookup chain. The bool is false when nothing
// was found and no catalogue gave a definite answer, ie; every step
// failed on the network or was rate limited.
func (r *Resolver) resolveRemote(ctx context.Context, req Request) (string, bool) {
	steps, answered := r.steps(req)
	cover, step := RunChain(ctx, steps)
	if cover == "" {
		if len(steps) > 0 && *answered == 0 {
			slog.Debug("Artwork lookups failed, not caching", slog.String("album_id", req.AlbumID))
			return shared.MISSING_COVER, false
		}
		slog.Debug("No artwork found for album", slog.String("album_id", req.AlbumID))
		return shared.MISSING_COVER, true
	}
	slog.Debug("Resolved artwork",
		slog.String("album_id", req.AlbumID),
		slog.String("step", step),
		slog.String("url", cover))
	return cover, true
}

// steps builds the lookup chain for req. The counter is bumped by every
// step whose catalogue gave a definite answer.
func (r *Resolver) steps(req Request) ([]Step, *int) {
	answered := new(int)
	var steps []Step
	if r.primary != nil {
		steps = append(steps, lookupStep(r.primary, req.AlbumArtist, req.Album, answered))
		if stripped, ok := StripReleaseType(req.Album); ok {
			steps = append(steps, lookupStep(r.primary, req.AlbumArtist, stripped, answered))
		}
	}
	if r.fallback != nil {
		steps = append(steps, lookupStep(r.fallback, req.AlbumArtist, req.Album, answered))
	}
	return steps, answered
}

func lookupStep(l Lookup, artist, album string, answered *int) Step {
	return Step{
		Name: l.Name() + ": " + album,
		Run: func(ctx context.Context) (string, error) {
			cover, err := l.Lookup(ctx, artist, album)
			if err == nil || errors.Is(err, ErrNotFound) {
				*answered++
			}
			if err != nil {
				return "", err
			}
			if cover == shared.MISSING_COVER {
				return "", nil
			}
			return cover, nil
		},
	}
}

// PruneExpired drops negative cache entries older than the TTL.
func (r *Resolver) PruneExpired() {
	if r.negativeTTL <= 0 {
		return
	}
	pruned, err := r.store.PruneNegative(r.now().Add(-r.negativeTTL))
	if err != nil {
		slog.Error("Failed to prune artwork cache", slog.String("error", err.Error()))
		return
	}
	slog.Debug("Pruned expired negative artwork entries", slog.Int64("count", pruned))
}

// StripReleaseType removes a trailing " - EP" or " - Single".
func StripReleaseType(album string) (string, bool) {
	album = strings.TrimSpace(album)
	for _, suffix := range releaseTypeSuffixes {
		if stripped, ok := strings.CutSuffix(album, suffix); ok && stripped != "" {
			return stripped, true
		}
	}
	return "", false
}

// IsRemoteURL is true for http(s) URLs with a host. Local file:// art
// from players can't be shown by the sink.
func IsRemoteURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
