package playback

import "strings"

// Reason explains the outcome of ShouldPublish, mostly for debug logs.
type Reason string

const (
	ReasonInvalid           Reason = "invalid metadata"
	ReasonUnchanged         Reason = "unchanged"
	ReasonMetadataChanged   Reason = "metadata changed"
	ReasonPositionRegressed Reason = "position regressed"
	ReasonInterrupted       Reason = "interrupted"
)

// Usable reports whether a snapshot carries enough metadata to display.
// Some players report "Unknown Artist" style placeholders between tracks.
func Usable(cur Snapshot) bool {
	if strings.EqualFold(cur.Artist, "unknown artist") &&
		strings.EqualFold(cur.Album, "unknown album") &&
		strings.EqualFold(cur.Title, "unknown title") {
		return false
	}
	return cur.Artist != "" && cur.Title != ""
}

// ShouldPublish decides whether cur warrants a new presence update given
// the last published state. It does not mutate prev; callers record the
// position with TrackedState.Observe for every usable snapshot.
func ShouldPublish(prev TrackedState, cur Snapshot, interrupted bool) (bool, Reason) {
	if !Usable(cur) {
		return false, ReasonInvalid
	}

	metadataChanged := cur.Title != prev.Title ||
		cur.Album != prev.Album ||
		cur.Artist != prev.Artist ||
		cur.AlbumArtist != prev.AlbumArtist ||
		cur.IsPlaying != prev.IsPlaying
	if metadataChanged {
		return true, ReasonMetadataChanged
	}

	// Same track but we went backwards: a seek to the start or a replay
	if cur.Position < prev.Position {
		return true, ReasonPositionRegressed
	}

	if interrupted {
		return true, ReasonInterrupted
	}
	return false, ReasonUnchanged
}
