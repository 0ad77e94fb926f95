package mediacontrol

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/marcus-crane/nowplaying/playback"
)

// NowPlaying is the subset of `media-control get --now` output we use.
// Times are in (fractional) seconds.
type NowPlaying struct {
	BundleIdentifier string  `json:"bundleIdentifier"`
	Title            string  `json:"title"`
	Artist           string  `json:"artist"`
	Album            string  `json:"album"`
	Duration         float64 `json:"duration"`
	ElapsedTime      float64 `json:"elapsedTime"`
	ElapsedTimeNow   float64 `json:"elapsedTimeNow"`
	Playing          bool    `json:"playing"`
	// Set when elapsed time is reported at all
	HasElapsed bool `json:"-"`
}

// Runner executes a command and returns its stdout
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s is not installed", playback.ErrProviderUnavailable, name)
		}
		return nil, fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Provider asks the media-control CLI what macOS thinks is playing. There
// is only ever one source at a time.
type Provider struct {
	Command string
	Run     Runner
}

func NewProvider() *Provider {
	return &Provider{
		Command: "media-control",
		Run:     execRunner,
	}
}

func (p *Provider) current(ctx context.Context) (NowPlaying, bool, error) {
	out, err := p.Run(ctx, p.Command, "get", "--now")
	if err != nil {
		return NowPlaying{}, false, err
	}
	return Parse(out)
}

// Parse decodes media-control output. A literal null means nothing is
// playing.
func Parse(out []byte) (NowPlaying, bool, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 || bytes.Equal(out, []byte("null")) {
		return NowPlaying{}, false, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(out, &raw); err != nil {
		return NowPlaying{}, false, fmt.Errorf("failed to decode media-control output: %w", err)
	}
	var np NowPlaying
	if err := json.Unmarshal(out, &np); err != nil {
		return NowPlaying{}, false, fmt.Errorf("failed to decode media-control output: %w", err)
	}
	_, hasNow := raw["elapsedTimeNow"]
	_, hasElapsed := raw["elapsedTime"]
	np.HasElapsed = hasNow || hasElapsed
	if !hasNow {
		np.ElapsedTimeNow = np.ElapsedTime
	}
	return np, np.BundleIdentifier != "", nil
}

func (p *Provider) ListCandidates(ctx context.Context) ([]playback.Candidate, error) {
	np, ok, err := p.current(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return []playback.Candidate{candidate(np)}, nil
}

func (p *Provider) ActiveSource(ctx context.Context) (playback.Candidate, error) {
	np, ok, err := p.current(ctx)
	if err != nil {
		return playback.Candidate{}, err
	}
	if !ok {
		return playback.Candidate{}, playback.ErrNoSource
	}
	return candidate(np), nil
}

// Snapshot ignores sourceID, the loop notices a different app through
// the returned SourceID.
func (p *Provider) Snapshot(ctx context.Context, sourceID string) (playback.Snapshot, error) {
	np, ok, err := p.current(ctx)
	if err != nil {
		return playback.Snapshot{}, fmt.Errorf("%w: %w", playback.ErrSnapshotUnreadable, err)
	}
	if !ok {
		return playback.Snapshot{}, fmt.Errorf("%w: nothing is playing", playback.ErrSnapshotUnreadable)
	}
	snap := playback.Snapshot{
		Title:       np.Title,
		Artist:      np.Artist,
		Album:       np.Album,
		AlbumArtist: np.Artist,
		HasPosition: np.HasElapsed,
		IsPlaying:   np.Playing,
		SourceID:    np.BundleIdentifier,
	}
	if np.Duration > 0 {
		snap.Duration = uint64(np.Duration)
	}
	if np.ElapsedTimeNow > 0 {
		snap.Position = uint64(np.ElapsedTimeNow)
	}
	return snap, nil
}

func candidate(np NowPlaying) playback.Candidate {
	status := playback.StatusPaused
	if np.Playing {
		status = playback.StatusPlaying
	}
	return playback.Candidate{
		ID:          np.BundleIdentifier,
		DisplayName: AppName(np.BundleIdentifier),
		Status:      status,
		HasMetadata: np.Title != "" && np.Artist != "",
	}
}

var knownApps = map[string]string{
	"com.apple.Music":           "Apple Music",
	"com.apple.podcasts":        "Podcasts",
	"com.apple.TV":              "Apple TV",
	"com.apple.Safari":          "Safari",
	"com.spotify.client":        "Spotify",
	"com.google.Chrome":         "Google Chrome",
	"org.mozilla.firefox":       "Firefox",
	"com.brave.Browser":         "Brave Browser",
	"com.microsoft.edgemac":     "Microsoft Edge",
	"com.tidal.desktop":         "TIDAL",
	"com.colliderli.iina":       "IINA",
	"org.videolan.vlc":          "VLC",
	"com.swinsian.Swinsian":     "Swinsian",
	"com.deezer.deezer-desktop": "Deezer",
}

// AppName turns a bundle id into something presentable, falling back to
// the last segment of the id.
func AppName(bundleID string) string {
	if name, ok := knownApps[bundleID]; ok {
		return name
	}
	if i := strings.LastIndex(bundleID, "."); i >= 0 && i < len(bundleID)-1 {
		return bundleID[i+1:]
	}
	return bundleID
}
