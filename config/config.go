package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	golobby "github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
	"gopkg.in/yaml.v3"

	"github.com/marcus-crane/nowplaying/utils"
)

const AppName = "nowplaying"

type Config struct {
	// Interval is the polling interval in seconds
	Interval     int      `toml:"interval" yaml:"interval" env:"NOWPLAYING_INTERVAL"`
	Allowlist    []string `toml:"allowlist" yaml:"allowlist"`
	VideoPlayers []string `toml:"video_players" yaml:"video_players"`

	ForcePlayerName string `toml:"force_player_name" yaml:"force_player_name" env:"NOWPLAYING_FORCE_PLAYER_NAME"`
	ForcePlayerID   string `toml:"force_player_id" yaml:"force_player_id" env:"NOWPLAYING_FORCE_PLAYER_ID"`

	RPCName    string   `toml:"rpc_name" yaml:"rpc_name" env:"NOWPLAYING_RPC_NAME"`
	SmallImage string   `toml:"small_image" yaml:"small_image" env:"NOWPLAYING_SMALL_IMAGE"`
	Buttons    []string `toml:"buttons" yaml:"buttons"`

	DisableCache            bool `toml:"disable_cache" yaml:"disable_cache" env:"NOWPLAYING_DISABLE_CACHE"`
	DisableMusicBrainzCover bool `toml:"disable_musicbrainz_cover" yaml:"disable_musicbrainz_cover" env:"NOWPLAYING_DISABLE_MUSICBRAINZ_COVER"`
	DisableMprisArtURL      bool `toml:"disable_mpris_art_url" yaml:"disable_mpris_art_url" env:"NOWPLAYING_DISABLE_MPRIS_ART_URL"`
	OnlyWhenPlaying         bool `toml:"only_when_playing" yaml:"only_when_playing" env:"NOWPLAYING_ONLY_WHEN_PLAYING"`
	HideAlbumName           bool `toml:"hide_album_name" yaml:"hide_album_name" env:"NOWPLAYING_HIDE_ALBUM_NAME"`

	LastfmName       string `toml:"lastfm_name" yaml:"lastfm_name" env:"LASTFM_NAME"`
	ListenbrainzName string `toml:"listenbrainz_name" yaml:"listenbrainz_name" env:"LISTENBRAINZ_NAME"`
	LastfmAPIKey     string `toml:"lastfm_api_key" yaml:"lastfm_api_key" env:"LASTFM_API_KEY"`

	// NegativeCacheTTL is a duration string, ie; "720h". Empty means
	// negative artwork lookups are never retried.
	NegativeCacheTTL string `toml:"negative_cache_ttl" yaml:"negative_cache_ttl" env:"NOWPLAYING_NEGATIVE_CACHE_TTL"`
	CacheDir         string `toml:"cache_dir" yaml:"cache_dir" env:"NOWPLAYING_CACHE_DIR"`

	LogLevel string `toml:"log_level" yaml:"log_level" env:"NOWPLAYING_LOG_LEVEL"`
	DebugLog bool   `toml:"debug_log" yaml:"debug_log" env:"NOWPLAYING_DEBUG_LOG"`
}

// Load reads the config file (if any) and then applies environment
// overrides on top. An empty path searches the default location.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		path = DefaultPath()
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from %s: %w", path, err)
		}
		slog.Debug("Loaded config file", slog.String("path", path))
	}

	c := golobby.New()
	c.AddFeeder(feeder.Env{})
	c.AddStruct(cfg)
	if err := c.Feed(); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// DefaultPath is $XDG_CONFIG_HOME/nowplaying/config.toml, or the ~/.config
// equivalent
func DefaultPath() string {
	dir, ok := utils.ConfigDir(AppName)
	if !ok {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

func decodeFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return yaml.Unmarshal(data, cfg)
	default:
		_, err := toml.DecodeFile(path, cfg)
		return err
	}
}

// PollInterval is the interval as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// NegativeTTL returns 0 when negative entries should never expire. Call
// Validate first, unparseable values are treated as 0 here.
func (c *Config) NegativeTTL() time.Duration {
	if c.NegativeCacheTTL == "" {
		return 0
	}
	d, err := time.ParseDuration(c.NegativeCacheTTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func (c *Config) GetLogLevel() slog.Leveler {
	if c.DebugLog {
		return slog.LevelDebug
	}
	logLevel := strings.ToLower(c.LogLevel)
	if logLevel == "error" {
		return slog.LevelError
	}
	if logLevel == "warning" {
		return slog.LevelWarn
	}
	if logLevel == "info" {
		return slog.LevelInfo
	}
	if logLevel == "debug" {
		return slog.LevelDebug
	}
	// default to info if unknown
	slog.With(slog.String("log_level", logLevel)).Info("Received invalid log level. Defaulting to INFO.")
	return slog.LevelInfo
}

var errEmptyButton = errors.New("button kind must not be empty")
