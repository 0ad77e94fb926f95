package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus-crane/nowplaying/artwork"
	"github.com/marcus-crane/nowplaying/config"
	"github.com/marcus-crane/nowplaying/db"
	"github.com/marcus-crane/nowplaying/discord"
	"github.com/marcus-crane/nowplaying/jobs"
	"github.com/marcus-crane/nowplaying/lastfm"
	"github.com/marcus-crane/nowplaying/mediacontrol"
	"github.com/marcus-crane/nowplaying/migrations"
	"github.com/marcus-crane/nowplaying/mpris"
	"github.com/marcus-crane/nowplaying/musicbrainz"
	"github.com/marcus-crane/nowplaying/playback"
	"github.com/marcus-crane/nowplaying/presence"
	"github.com/marcus-crane/nowplaying/reconcile"
	"github.com/marcus-crane/nowplaying/shared"
	"github.com/marcus-crane/nowplaying/utils"
)

const (
	cacheFile  = "album_cache.db"
	pruneEvery = time.Hour
)

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := newProvider(runtime.GOOS)
	if err != nil {
		return err
	}
	if closer, ok := provider.(io.Closer); ok {
		defer closer.Close()
	}

	if listPlayers {
		return printPlayers(ctx, cmd.OutOrStdout(), provider)
	}
	if getPlayerID {
		return printPlayerID(ctx, cmd.OutOrStdout(), provider, cfg.Allowlist)
	}

	store := openStore(cfg)
	defer store.Close()

	primary, fallback := lookups(cfg)
	resolver := artwork.NewResolver(artwork.Options{
		Primary:     primary,
		Fallback:    fallback,
		Store:       store,
		NegativeTTL: cfg.NegativeTTL(),
	})

	if ttl := cfg.NegativeTTL(); ttl > 0 {
		scheduler, err := jobs.SetupInBackground(resolver, pruneEvery)
		if err != nil {
			return fmt.Errorf("failed to schedule cache pruning: %w", err)
		}
		scheduler.StartAsync()
		defer scheduler.Stop()
	}

	publisher := presence.NewPublisher(
		discord.NewClient(shared.AUDIO_CLIENT_ID),
		discord.NewClient(shared.VIDEO_CLIENT_ID),
		presenceOptions(ctx, cfg, primary),
	)
	publisher.ForceIdentity(cfg.ForcePlayerName, cfg.ForcePlayerID)

	loop := reconcile.New(provider, resolver, publisher, reconcile.Options{
		Interval:         cfg.PollInterval(),
		Allowlist:        cfg.Allowlist,
		VideoPlayers:     cfg.VideoPlayers,
		OnlyWhenPlaying:  cfg.OnlyWhenPlaying,
		NativeArtAllowed: !cfg.DisableMprisArtURL,
	})

	slog.Info("Watching for players", slog.Duration("interval", cfg.PollInterval()))
	err = loop.Run(ctx)
	slog.Info("Shutting down")
	return err
}

func newProvider(goos string) (playback.Provider, error) {
	switch goos {
	case "linux":
		return mpris.NewProvider(), nil
	case "darwin":
		return mediacontrol.NewProvider(), nil
	default:
		return nil, fmt.Errorf("%s is not supported, only linux and macOS are", goos)
	}
}

// openStore never fails, the worst case is a cache that only lasts as
// long as the process
func openStore(c *config.Config) db.Store {
	if c.DisableCache {
		slog.Info("Cache disabled, covers will be looked up again on every run")
		return db.NewMemoryStore()
	}

	dir := c.CacheDir
	if dir == "" {
		var ok bool
		dir, ok = utils.CacheDir(config.AppName)
		if !ok {
			slog.Warn("HOME is not set, cache disabled")
			return db.NewMemoryStore()
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("Could not create cache directory", slog.String("error", err.Error()))
		return db.NewMemoryStore()
	}

	path := filepath.Join(dir, cacheFile)
	store, err := db.NewSqliteStore(path)
	if err != nil {
		slog.Error("Could not open cache", slog.String("error", err.Error()), slog.String("path", path))
		return db.NewMemoryStore()
	}
	if err := store.ApplyMigrations(migrations.GetMigrations()); err != nil {
		slog.Error("Could not migrate cache", slog.String("error", err.Error()), slog.String("path", path))
		store.Close()
		return db.NewMemoryStore()
	}
	slog.Info("Cache loaded from file", slog.String("path", path))
	return store
}

// lookups builds the artwork chain. The primary is a nil interface (not
// a nil *lastfm.Client) when there's no API key.
func lookups(c *config.Config) (artwork.Lookup, artwork.Lookup) {
	var primary, fallback artwork.Lookup
	if c.LastfmAPIKey == "" {
		slog.Warn("Last.fm API key is not set. Album covers from Last.fm will not be available.")
	} else {
		primary = lastfm.NewClient(c.LastfmAPIKey)
	}
	if !c.DisableMusicBrainzCover {
		fallback = musicbrainz.NewClient()
	}
	return primary, fallback
}

func presenceOptions(ctx context.Context, c *config.Config, primary artwork.Lookup) presence.Options {
	opts := presence.Options{
		RPCName:          c.RPCName,
		SmallImage:       c.SmallImage,
		Buttons:          c.Buttons,
		HideAlbumName:    c.HideAlbumName,
		NativeArtAllowed: !c.DisableMprisArtURL,
		LastfmName:       c.LastfmName,
		ListenbrainzName: c.ListenbrainzName,
	}
	if c.SmallImage == presence.SmallImageLastfmAvatar && c.LastfmName != "" {
		if client, ok := primary.(*lastfm.Client); ok {
			avatar, err := client.UserAvatar(ctx, c.LastfmName)
			if err != nil {
				slog.Warn("Could not fetch Last.fm avatar", slog.String("error", err.Error()))
			}
			opts.LastfmAvatar = avatar
		}
	}
	return opts
}
