package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/marcus-crane/nowplaying/presence"
)

var (
	rpcNames    = []string{presence.NameArtist, presence.NameTrack, presence.NameNone}
	smallImages = []string{presence.SmallImagePlayer, presence.SmallImageLastfmAvatar, presence.SmallImageStatus, presence.SmallImageNone}
	buttonKinds = []string{
		presence.ButtonYouTube,
		presence.ButtonLastfm,
		presence.ButtonListenbrainz,
		presence.ButtonTrackURL,
		presence.ButtonShamelessAd,
	}
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(rpcNames, c.RPCName) {
		errs = append(errs, fmt.Errorf("rpc_name must be one of %v, got %q", rpcNames, c.RPCName))
	}
	if !slices.Contains(smallImages, c.SmallImage) {
		errs = append(errs, fmt.Errorf("small_image must be one of %v, got %q", smallImages, c.SmallImage))
	}
	for _, b := range c.Buttons {
		if b == "" {
			errs = append(errs, errEmptyButton)
			continue
		}
		if !slices.Contains(buttonKinds, b) {
			errs = append(errs, fmt.Errorf("unknown button %q, expected one of %v", b, buttonKinds))
		}
	}
	if c.NegativeCacheTTL != "" {
		d, err := time.ParseDuration(c.NegativeCacheTTL)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid negative_cache_ttl: %w", err))
		} else if d < 0 {
			errs = append(errs, errors.New("negative_cache_ttl must not be negative"))
		}
	}

	return errors.Join(errs...)
}
