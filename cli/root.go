package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/marcus-crane/nowplaying/config"
)

var (
	cfgFile     string
	listPlayers bool
	getPlayerID bool

	flags flagValues
	cfg   *config.Config
)

// flagValues mirrors the config fields that can be set from the command
// line. They only win over the file and environment when set explicitly.
type flagValues struct {
	interval                int
	allowlist               []string
	videoPlayers            []string
	forcePlayerName         string
	forcePlayerID           string
	rpcName                 string
	smallImage              string
	buttons                 []string
	disableCache            bool
	disableMusicBrainzCover bool
	disableMprisArtURL      bool
	onlyWhenPlaying         bool
	hideAlbumName           bool
	lastfmName              string
	listenbrainzName        string
	lastfmAPIKey            string
	negativeCacheTTL        string
	cacheDir                string
	logLevel                string
	debugLog                bool
}

var rootCmd = &cobra.Command{
	Use:   "nowplaying",
	Short: "Show what your media players are playing on your Discord profile",
	Long: `nowplaying watches local media players (MPRIS on Linux, media-control on macOS)
and mirrors the current track onto Discord Rich Presence, with album art from
Last.fm or MusicBrainz.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd.Flags())
	},
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file, .toml or .yaml (default: "+config.DefaultPath()+")")

	f := rootCmd.Flags()
	f.BoolVarP(&listPlayers, "list-players", "l", false, "list available players and exit")
	f.BoolVar(&getPlayerID, "get-player-id", false, "print the id of the detected player and exit")

	f.IntVarP(&flags.interval, "interval", "i", config.DefaultInterval, "polling interval in seconds (minimum 5)")
	f.StringArrayVarP(&flags.allowlist, "allowlist", "a", nil, "only use these players, repeatable. A trailing * matches by prefix")
	f.StringArrayVar(&flags.videoPlayers, "video-player", nil, "players that use the \"Watching\" presence, repeatable")
	f.StringVar(&flags.forcePlayerName, "force-player-name", "", "player name shown on Discord")
	f.StringVar(&flags.forcePlayerID, "force-player-id", "", "player icon id used on Discord")
	f.StringVar(&flags.rpcName, "rpc-name", "artist", "what follows \"Listening to\": artist, track or none")
	f.StringVar(&flags.smallImage, "small-image", "status", "icon next to the cover: player, lastfmAvatar, status or none")
	f.StringArrayVarP(&flags.buttons, "button", "b", nil, "buttons to show (yt, lastfm, listenbrainz, mprisUrl, shamelessAd), max 2")
	f.BoolVar(&flags.disableCache, "disable-cache", false, "don't persist album covers between runs")
	f.BoolVar(&flags.disableMusicBrainzCover, "disable-musicbrainz-cover", false, "don't fall back to MusicBrainz for covers")
	f.BoolVar(&flags.disableMprisArtURL, "disable-mpris-art-url", false, "don't use art provided by the player itself")
	f.BoolVar(&flags.onlyWhenPlaying, "only-when-playing", false, "clear the status while playback is paused")
	f.BoolVar(&flags.hideAlbumName, "hide-album-name", false, "don't show the album name on the cover")
	f.StringVar(&flags.lastfmName, "lastfm-name", "", "your Last.fm username, for the profile button and avatar")
	f.StringVar(&flags.listenbrainzName, "listenbrainz-name", "", "your ListenBrainz username, for the profile button")
	f.StringVar(&flags.lastfmAPIKey, "lastfm-api-key", "", "Last.fm API key used for album covers")
	f.StringVar(&flags.negativeCacheTTL, "negative-cache-ttl", "", "retry covers that weren't found after this long, ie; 720h")
	f.StringVar(&flags.cacheDir, "cache-dir", "", "where the cover cache lives")
	f.StringVar(&flags.logLevel, "log-level", "info", "error, warning, info or debug")
	f.BoolVar(&flags.debugLog, "debug-log", false, "shorthand for --log-level debug")
}

func initConfig(fs *pflag.FlagSet) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	applyFlags(fs, cfg, flags)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.GetLogLevel(),
	})))
	slog.Debug("Loaded config", slog.Any("config", redacted(*cfg)))

	return nil
}

func applyFlags(fs *pflag.FlagSet, c *config.Config, v flagValues) {
	if fs.Changed("interval") {
		c.Interval = v.interval
	}
	if fs.Changed("allowlist") {
		c.Allowlist = v.allowlist
	}
	if fs.Changed("video-player") {
		c.VideoPlayers = v.videoPlayers
	}
	if fs.Changed("force-player-name") {
		c.ForcePlayerName = v.forcePlayerName
	}
	if fs.Changed("force-player-id") {
		c.ForcePlayerID = v.forcePlayerID
	}
	if fs.Changed("rpc-name") {
		c.RPCName = v.rpcName
	}
	if fs.Changed("small-image") {
		c.SmallImage = v.smallImage
	}
	if fs.Changed("button") {
		c.Buttons = v.buttons
	}
	if fs.Changed("disable-cache") {
		c.DisableCache = v.disableCache
	}
	if fs.Changed("disable-musicbrainz-cover") {
		c.DisableMusicBrainzCover = v.disableMusicBrainzCover
	}
	if fs.Changed("disable-mpris-art-url") {
		c.DisableMprisArtURL = v.disableMprisArtURL
	}
	if fs.Changed("only-when-playing") {
		c.OnlyWhenPlaying = v.onlyWhenPlaying
	}
	if fs.Changed("hide-album-name") {
		c.HideAlbumName = v.hideAlbumName
	}
	if fs.Changed("lastfm-name") {
		c.LastfmName = v.lastfmName
	}
	if fs.Changed("listenbrainz-name") {
		c.ListenbrainzName = v.listenbrainzName
	}
	if fs.Changed("lastfm-api-key") {
		c.LastfmAPIKey = v.lastfmAPIKey
	}
	if fs.Changed("negative-cache-ttl") {
		c.NegativeCacheTTL = v.negativeCacheTTL
	}
	if fs.Changed("cache-dir") {
		c.CacheDir = v.cacheDir
	}
	if fs.Changed("log-level") {
		c.LogLevel = v.logLevel
	}
	if fs.Changed("debug-log") {
		c.DebugLog = v.debugLog
	}
}

func redacted(c config.Config) config.Config {
	if c.LastfmAPIKey != "" {
		c.LastfmAPIKey = "********"
	}
	return c
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
