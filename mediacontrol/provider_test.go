package mediacontrol

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/nowplaying/playback"
)

const sample = `{
  "bundleIdentifier": "com.apple.Music",
  "playing": true,
  "title": "Roygbiv",
  "artist": "Boards of Canada",
  "album": "Music Has the Right to Children",
  "duration": 150.5,
  "elapsedTime": 12.2,
  "elapsedTimeNow": 42.9,
  "timestamp": "2025-04-13T20:10:00Z",
  "artworkMimeType": "image/jpeg"
}`

func fakeRunner(out string, err error) Runner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte(out), err
	}
}

func TestParse(t *testing.T) {
	np, ok, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "com.apple.Music", np.BundleIdentifier)
	assert.Equal(t, 42.9, np.ElapsedTimeNow)
	assert.True(t, np.HasElapsed)
}

func TestParse_Null(t *testing.T) {
	_, ok, err := Parse([]byte("null\n"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParse_Garbage(t *testing.T) {
	_, _, err := Parse([]byte("not json"))
	assert.Error(t, err)
}

func TestSnapshot(t *testing.T) {
	p := &Provider{Command: "media-control", Run: fakeRunner(sample, nil)}
	snap, err := p.Snapshot(context.Background(), "com.apple.Music")
	require.NoError(t, err)
	assert.Equal(t, playback.Snapshot{
		Title:       "Roygbiv",
		Artist:      "Boards of Canada",
		Album:       "Music Has the Right to Children",
		AlbumArtist: "Boards of Canada",
		Position:    42,
		HasPosition: true,
		Duration:    150,
		IsPlaying:   true,
		SourceID:    "com.apple.Music",
	}, snap)
}

func TestActiveSource(t *testing.T) {
	p := &Provider{Command: "media-control", Run: fakeRunner(sample, nil)}
	c, err := p.ActiveSource(context.Background())
	require.NoError(t, err)
	assert.Equal(t, playback.Candidate{
		ID:          "com.apple.Music",
		DisplayName: "Apple Music",
		Status:      playback.StatusPlaying,
		HasMetadata: true,
	}, c)

	p.Run = fakeRunner("null", nil)
	_, err = p.ActiveSource(context.Background())
	assert.ErrorIs(t, err, playback.ErrNoSource)

	candidates, err := p.ListCandidates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestSnapshot_RunFailure(t *testing.T) {
	p := &Provider{Command: "media-control", Run: fakeRunner("", errors.New("exit status 1"))}
	_, err := p.Snapshot(context.Background(), "com.apple.Music")
	assert.ErrorIs(t, err, playback.ErrSnapshotUnreadable)
}

func TestExecRunner_MissingBinary(t *testing.T) {
	_, err := execRunner(context.Background(), "definitely-not-media-control-binary")
	assert.ErrorIs(t, err, playback.ErrProviderUnavailable)
}

func TestAppName(t *testing.T) {
	assert.Equal(t, "Spotify", AppName("com.spotify.client"))
	assert.Equal(t, "Cider", AppName("com.cider.Cider"))
	assert.Equal(t, "weird", AppName("weird"))
}
