package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/nowplaying/presence"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NOWPLAYING_INTERVAL", "LASTFM_API_KEY", "LASTFM_NAME", "LISTENBRAINZ_NAME",
		"NOWPLAYING_LOG_LEVEL", "NOWPLAYING_CACHE_DIR", "NOWPLAYING_RPC_NAME",
		"NOWPLAYING_SMALL_IMAGE", "NOWPLAYING_DEBUG_LOG",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `
interval = 15
allowlist = ["Spotify*", "org.mpris.MediaPlayer2.strawberry"]
video_players = ["mpv"]
rpc_name = "track"
small_image = "player"
buttons = ["mprisUrl", "shamelessAd"]
hide_album_name = true
negative_cache_ttl = "72h"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 15, cfg.Interval)
	assert.Equal(t, 15*time.Second, cfg.PollInterval())
	assert.Equal(t, []string{"Spotify*", "org.mpris.MediaPlayer2.strawberry"}, cfg.Allowlist)
	assert.Equal(t, []string{"mpv"}, cfg.VideoPlayers)
	assert.Equal(t, presence.NameTrack, cfg.RPCName)
	assert.Equal(t, presence.SmallImagePlayer, cfg.SmallImage)
	assert.Equal(t, []string{"mprisUrl", "shamelessAd"}, cfg.Buttons)
	assert.True(t, cfg.HideAlbumName)
	assert.Equal(t, 72*time.Hour, cfg.NegativeTTL())
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
interval: 20
allowlist:
  - mpv
only_when_playing: true
lastfm_name: someone
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Interval)
	assert.Equal(t, []string{"mpv"}, cfg.Allowlist)
	assert.True(t, cfg.OnlyWhenPlaying)
	assert.Equal(t, "someone", cfg.LastfmName)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `
lastfm_api_key = "from-file"
interval = 30
`)
	t.Setenv("LASTFM_API_KEY", "from-env")
	t.Setenv("NOWPLAYING_INTERVAL", "12")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LastfmAPIKey)
	assert.Equal(t, 12, cfg.Interval)
}

func TestLoad_MissingDefaultFileIsFine(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultInterval, cfg.Interval)
	assert.Equal(t, presence.NameArtist, cfg.RPCName)
	assert.Equal(t, presence.SmallImageStatus, cfg.SmallImage)
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `interval = "ten"`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{Interval: 1, SmallImage: "playPause"}
	cfg.ApplyDefaults()
	assert.Equal(t, MinInterval, cfg.Interval)
	assert.Equal(t, presence.SmallImageStatus, cfg.SmallImage)
	assert.Equal(t, []string{presence.ButtonYouTube, presence.ButtonLastfm}, cfg.Buttons)

	// An explicitly empty button list stays empty
	cfg = &Config{Buttons: []string{}}
	cfg.ApplyDefaults()
	assert.Empty(t, cfg.Buttons)
	assert.Equal(t, DefaultInterval, cfg.Interval)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.RPCName = "album"
	cfg.SmallImage = "cover"
	cfg.Buttons = []string{"yt", "spotify", ""}
	cfg.NegativeCacheTTL = "soon"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc_name")
	assert.Contains(t, err.Error(), "small_image")
	assert.Contains(t, err.Error(), `"spotify"`)
	assert.ErrorIs(t, err, errEmptyButton)
	assert.Contains(t, err.Error(), "negative_cache_ttl")

	cfg = Default()
	cfg.NegativeCacheTTL = "-1h"
	assert.Error(t, cfg.Validate())
}

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		debugLog bool
		want     slog.Leveler
	}{
		{"error", false, slog.LevelError},
		{"WARNING", false, slog.LevelWarn},
		{"info", false, slog.LevelInfo},
		{"debug", false, slog.LevelDebug},
		{"verbose", false, slog.LevelInfo},
		{"error", true, slog.LevelDebug},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level, DebugLog: tt.debugLog}
		assert.Equal(t, tt.want, cfg.GetLogLevel(), tt.level)
	}
}
