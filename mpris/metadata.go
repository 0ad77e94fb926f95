package mpris

import (
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/marcus-crane/nowplaying/playback"
)

const (
	busPrefix    = "org.mpris.MediaPlayer2."
	proxyBusName = "org.mpris.MediaPlayer2.playerctld"
)

// playerBusNames filters a bus listing down to MPRIS players. playerctld
// mirrors whichever player is active so tracking it would double up.
func playerBusNames(names []string) []string {
	var players []string
	for _, name := range names {
		if !strings.HasPrefix(name, busPrefix) || name == proxyBusName {
			continue
		}
		players = append(players, name)
	}
	return players
}

type metadata struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	// Length is in microseconds
	Length int64
	ArtURL string
	URL    string
}

func parseMetadata(m map[string]dbus.Variant) metadata {
	md := metadata{
		Title:  stringValue(m["xesam:title"]),
		Artist: firstString(m["xesam:artist"]),
		Album:  stringValue(m["xesam:album"]),
		Length: intValue(m["mpris:length"]),
		ArtURL: stringValue(m["mpris:artUrl"]),
		URL:    stringValue(m["xesam:url"]),
	}
	md.AlbumArtist = firstString(m["xesam:albumArtist"])
	if md.AlbumArtist == "" {
		md.AlbumArtist = md.Artist
	}
	return md
}

// valid mirrors what players themselves consider a "real" track
func (md metadata) valid() bool {
	return md.Title != "" && md.Artist != ""
}

func toSnapshot(busName, status string, md metadata, position int64, hasPosition bool) playback.Snapshot {
	snap := playback.Snapshot{
		Title:       md.Title,
		Artist:      md.Artist,
		Album:       md.Album,
		AlbumArtist: md.AlbumArtist,
		HasPosition: hasPosition,
		IsPlaying:   status == "Playing",
		TrackURL:    md.URL,
		ArtURL:      md.ArtURL,
		SourceID:    busName,
	}
	if md.Length > 0 {
		snap.Duration = uint64(md.Length / 1_000_000)
	}
	if position > 0 {
		snap.Position = uint64(position / 1_000_000)
	}
	return snap
}

func toStatus(status string) playback.Status {
	switch status {
	case "Playing":
		return playback.StatusPlaying
	case "Paused":
		return playback.StatusPaused
	default:
		return playback.StatusStopped
	}
}

func stringValue(v dbus.Variant) string {
	switch s := v.Value().(type) {
	case string:
		return s
	case dbus.ObjectPath:
		return string(s)
	}
	return ""
}

func firstString(v dbus.Variant) string {
	switch s := v.Value().(type) {
	case []string:
		if len(s) > 0 {
			return s[0]
		}
	case string:
		// MPRIS says this is a list but some players send a plain string
		return s
	}
	return ""
}

// Players disagree on what integer type a length is
func intValue(v dbus.Variant) int64 {
	switch n := v.Value().(type) {
	case int64:
		return n
	case uint64:
		return int64(n)
	case int32:
		return int64(n)
	case uint32:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
