package config

import "github.com/marcus-crane/nowplaying/presence"

const (
	DefaultInterval = 10
	// MinInterval keeps us from hammering Discord or the lookup APIs
	MinInterval = 5
)

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Interval:   DefaultInterval,
		RPCName:    presence.NameArtist,
		SmallImage: presence.SmallImageStatus,
		Buttons:    []string{presence.ButtonYouTube, presence.ButtonLastfm},
		LogLevel:   "info",
	}
}

// ApplyDefaults fills in zero values and clamps the interval.
func (c *Config) ApplyDefaults() {
	d := Default()

	if c.Interval == 0 {
		c.Interval = d.Interval
	}
	if c.Interval < MinInterval {
		c.Interval = MinInterval
	}
	if c.RPCName == "" {
		c.RPCName = d.RPCName
	}
	if c.SmallImage == "" || c.SmallImage == "playPause" {
		c.SmallImage = d.SmallImage
	}
	if c.Buttons == nil {
		c.Buttons = d.Buttons
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}
