package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func publishedState(snap Snapshot) TrackedState {
	var s TrackedState
	s.Commit(snap)
	s.Observe(snap)
	return s
}

func track() Snapshot {
	return Snapshot{
		Title:       "Windowlicker",
		Artist:      "Aphex Twin",
		Album:       "Windowlicker",
		AlbumArtist: "Aphex Twin",
		Position:    120,
		HasPosition: true,
		Duration:    367,
		IsPlaying:   true,
		SourceID:    "org.mpris.MediaPlayer2.spotify",
	}
}

func TestShouldPublish_Unchanged(t *testing.T) {
	t.Parallel()
	prev := publishedState(track())
	publish, reason := ShouldPublish(prev, track(), false)
	assert.False(t, publish)
	assert.Equal(t, ReasonUnchanged, reason)
}

func TestShouldPublish_PositionRegression(t *testing.T) {
	t.Parallel()
	prev := publishedState(track())

	cur := track()
	cur.Position = 3
	publish, reason := ShouldPublish(prev, cur, false)
	assert.True(t, publish)
	assert.Equal(t, ReasonPositionRegressed, reason)

	// Position is recorded regardless of the decision
	prev.Observe(cur)
	assert.Equal(t, uint64(3), prev.Position)

	publish, _ = ShouldPublish(prev, cur, false)
	assert.False(t, publish)
}

func TestShouldPublish_PositionTrackedBetweenPolls(t *testing.T) {
	t.Parallel()
	prev := publishedState(track())

	// Unpublished polls move the position forward
	later := track()
	later.Position = 200
	publish, _ := ShouldPublish(prev, later, false)
	assert.False(t, publish)
	prev.Observe(later)

	// Dropping back to 150 is still a regression compared to the last poll
	back := track()
	back.Position = 150
	publish, reason := ShouldPublish(prev, back, false)
	assert.True(t, publish)
	assert.Equal(t, ReasonPositionRegressed, reason)
}

func TestShouldPublish_MetadataChanges(t *testing.T) {
	t.Parallel()
	prev := publishedState(track())
	mutations := map[string]func(*Snapshot){
		"title":        func(s *Snapshot) { s.Title = "Flim" },
		"album":        func(s *Snapshot) { s.Album = "Come to Daddy" },
		"artist":       func(s *Snapshot) { s.Artist = "AFX" },
		"album artist": func(s *Snapshot) { s.AlbumArtist = "Various Artists" },
		"is playing":   func(s *Snapshot) { s.IsPlaying = false },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cur := track()
			mutate(&cur)
			publish, reason := ShouldPublish(prev, cur, false)
			assert.True(t, publish)
			assert.Equal(t, ReasonMetadataChanged, reason)
		})
	}
}

func TestShouldPublish_Interrupted(t *testing.T) {
	t.Parallel()
	prev := publishedState(track())
	publish, reason := ShouldPublish(prev, track(), true)
	assert.True(t, publish)
	assert.Equal(t, ReasonInterrupted, reason)
}

func TestShouldPublish_RejectsUnknownPlaceholders(t *testing.T) {
	t.Parallel()
	prev := publishedState(track())
	before := prev

	cur := Snapshot{
		Artist: "Unknown Artist",
		Album:  "Unknown Album",
		Title:  "Unknown Title",
	}
	publish, reason := ShouldPublish(prev, cur, true)
	assert.False(t, publish)
	assert.Equal(t, ReasonInvalid, reason)
	assert.Equal(t, before, prev)
}

func TestShouldPublish_RejectsEmptyArtistOrTitle(t *testing.T) {
	t.Parallel()
	cur := track()
	cur.Artist = ""
	publish, reason := ShouldPublish(TrackedState{}, cur, false)
	assert.False(t, publish)
	assert.Equal(t, ReasonInvalid, reason)

	cur = track()
	cur.Title = ""
	publish, _ = ShouldPublish(TrackedState{}, cur, false)
	assert.False(t, publish)
}

func TestUsable_PartialUnknownIsFine(t *testing.T) {
	t.Parallel()
	cur := Snapshot{Artist: "Unknown Artist", Album: "Unknown Album", Title: "Track 1"}
	assert.True(t, Usable(cur))
}

func TestTrackedState_Commit(t *testing.T) {
	t.Parallel()
	s := TrackedState{Interrupted: true}
	s.Commit(track())
	assert.Equal(t, "Aphex Twin - Windowlicker", s.AlbumID)
	assert.False(t, s.Interrupted)
	assert.True(t, s.ActivitySet)
	assert.Equal(t, uint64(0), s.Position, "commit leaves position to Observe")
}
