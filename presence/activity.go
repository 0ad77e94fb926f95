package presence

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/marcus-crane/nowplaying/playback"
	"github.com/marcus-crane/nowplaying/shared"
)

type ActivityType int

const (
	ActivityListening ActivityType = 2
	ActivityWatching  ActivityType = 3
)

// StatusDisplayType controls which field Discord shows after
// "Listening to" in the member list.
type StatusDisplayType int

const (
	DisplayName    StatusDisplayType = 0
	DisplayState   StatusDisplayType = 1
	DisplayDetails StatusDisplayType = 2
)

// Naming modes for the state line
const (
	NameArtist = "artist"
	NameTrack  = "track"
	NameNone   = "none"
)

// Small image modes
const (
	SmallImagePlayer       = "player"
	SmallImageLastfmAvatar = "lastfmAvatar"
	SmallImageStatus       = "status"
	SmallImageNone         = "none"
)

// Button kinds
const (
	ButtonYouTube      = "yt"
	ButtonLastfm       = "lastfm"
	ButtonListenbrainz = "listenbrainz"
	ButtonTrackURL     = "mprisUrl"
	ButtonShamelessAd  = "shamelessAd"
)

const maxButtons = 2

type Activity struct {
	Type              ActivityType      `json:"type"`
	StatusDisplayType StatusDisplayType `json:"status_display_type"`
	Details           string            `json:"details,omitempty"`
	DetailsURL        string            `json:"details_url,omitempty"`
	State             string            `json:"state,omitempty"`
	Assets            *Assets           `json:"assets,omitempty"`
	Timestamps        *Timestamps       `json:"timestamps,omitempty"`
	Buttons           []Button          `json:"buttons,omitempty"`
}

type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

// Timestamps are unix seconds
type Timestamps struct {
	Start int64 `json:"start,omitempty"`
	End   int64 `json:"end,omitempty"`
}

type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Options is everything about the payload that comes from the user's
// configuration rather than from the snapshot.
type Options struct {
	RPCName          string
	SmallImage       string
	Buttons          []string
	HideAlbumName    bool
	NativeArtAllowed bool
	LastfmName       string
	ListenbrainzName string
	// LastfmAvatar is fetched once at startup when the avatar small image
	// mode is in use
	LastfmAvatar string
}

// Source is the player identity shown in the payload, after any forced
// overrides have been applied.
type Source struct {
	Name     string
	ID       string
	Category playback.Category
}

// BuildActivity maps a snapshot onto a Discord activity.
func BuildActivity(now time.Time, snap playback.Snapshot, artwork string, src Source, opts Options) Activity {
	video := src.Category == playback.Video
	status := shared.ASSET_PAUSED
	if snap.IsPlaying {
		status = shared.ASSET_PLAYING
	}
	if artwork == "" {
		artwork = shared.MISSING_COVER
	}

	activity := Activity{
		Type:              ActivityListening,
		StatusDisplayType: statusDisplayType(opts.RPCName),
		Details:           padded(snap.Title),
	}
	if video {
		activity.Type = ActivityWatching
	}

	state := padded(snap.Artist)
	if opts.RPCName != NameArtist {
		state = "by: " + snap.Artist
	}
	if !hideState(state, video) {
		activity.State = state
	}

	assets := &Assets{LargeImage: artwork}
	if !opts.HideAlbumName {
		assets.LargeText = "album: " + snap.Album
	}
	switch opts.SmallImage {
	case SmallImagePlayer:
		if opts.NativeArtAllowed && strings.Contains(artwork, "ytimg.com/") {
			assets.SmallImage = shared.ASSET_YOUTUBE
			assets.SmallText = "YouTube"
		} else {
			assets.SmallImage = src.ID
			assets.SmallText = src.Name
		}
	case SmallImageLastfmAvatar:
		if opts.LastfmAvatar != "" {
			assets.SmallImage = opts.LastfmAvatar
			assets.SmallText = opts.LastfmName + " on Last.fm"
		}
	case SmallImageNone:
	default:
		assets.SmallImage = status
		assets.SmallText = status
	}
	// Whatever the mode, a paused player always shows the paused icon
	if !snap.IsPlaying {
		assets.SmallImage = status
		assets.SmallText = status
	}
	activity.Assets = assets

	activity.Timestamps = timestamps(now, snap)

	ytURL := youtubeSearchURL(snap.Artist, snap.Title)
	activity.DetailsURL = ytURL
	activity.Buttons = buttons(snap, ytURL, video, opts)

	return activity
}

func statusDisplayType(rpcName string) StatusDisplayType {
	switch rpcName {
	case NameNone:
		return DisplayName
	case NameTrack:
		return DisplayDetails
	default:
		return DisplayState
	}
}

// Discord rejects activity strings shorter than 2 characters
func padded(s string) string {
	if len(s) > 1 {
		return s
	}
	return s + " "
}

func hideState(state string, video bool) bool {
	lower := strings.ToLower(state)
	if lower == "unknown artist" {
		return true
	}
	return video && lower == "by: unknown artist"
}

func timestamps(now time.Time, snap playback.Snapshot) *Timestamps {
	start := now.Unix() - int64(snap.Position)
	if snap.HasPosition && snap.Duration > 0 {
		ts := &Timestamps{Start: start}
		if snap.IsPlaying {
			ts.End = start + int64(snap.Duration)
		}
		return ts
	}
	// Only used by Discord as an anchor for the elapsed counter
	return &Timestamps{End: start}
}

func youtubeSearchURL(artist, title string) string {
	return "https://www.youtube.com/results?search_query=" + encodeComponent(artist+" - "+title)
}

// encodeComponent escapes spaces as %20 rather than the form style +
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func buttons(snap playback.Snapshot, ytURL string, video bool, opts Options) []Button {
	var out []Button
	for _, kind := range opts.Buttons {
		if len(out) == maxButtons {
			break
		}
		b, ok := button(kind, snap, ytURL, video, opts)
		if !ok || slices.Contains(out, b) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func button(kind string, snap playback.Snapshot, ytURL string, video bool, opts Options) (Button, bool) {
	youtube := Button{Label: "Search this song on YouTube", URL: ytURL}
	switch kind {
	case ButtonYouTube:
		return youtube, true
	case ButtonLastfm:
		if opts.LastfmName == "" {
			return Button{}, false
		}
		return Button{
			Label: "Last.fm profile",
			URL:   "https://www.last.fm/user/" + url.PathEscape(opts.LastfmName),
		}, true
	case ButtonListenbrainz:
		if opts.ListenbrainzName == "" {
			return Button{}, false
		}
		return Button{
			Label: "Listenbrainz profile",
			URL:   fmt.Sprintf("https://listenbrainz.org/user/%s/", url.PathEscape(opts.ListenbrainzName)),
		}, true
	case ButtonTrackURL:
		if snap.TrackURL == "" {
			return youtube, true
		}
		if video {
			return Button{Label: "Watch Now", URL: snap.TrackURL}, true
		}
		return Button{Label: "Play Now", URL: snap.TrackURL}, true
	case ButtonShamelessAd:
		return Button{Label: "Get This RPC", URL: shared.PROJECT_URL}, true
	}
	return Button{}, false
}
