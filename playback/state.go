package playback

// TrackedState is everything the reconciliation loop carries between
// polls. Only the loop mutates it.
type TrackedState struct {
	Title       string
	Album       string
	Artist      string
	AlbumArtist string
	AlbumID     string
	Position    uint64
	IsPlaying   bool

	// Interrupted forces the next usable snapshot to be published even
	// when nothing differs, since whatever is shown externally is stale.
	Interrupted bool
	// ActivitySet is true while the sink is showing a presence we set.
	ActivitySet bool
}

// Commit records a snapshot as the last published one.
func (s *TrackedState) Commit(snap Snapshot) {
	s.Title = snap.Title
	s.Album = snap.Album
	s.Artist = snap.Artist
	s.AlbumArtist = snap.AlbumArtist
	s.AlbumID = snap.AlbumID()
	s.IsPlaying = snap.IsPlaying
	s.Interrupted = false
	s.ActivitySet = true
}

// Observe records the position of every usable poll, published or not, so
// that regressions are measured between consecutive polls.
func (s *TrackedState) Observe(snap Snapshot) {
	s.Position = snap.Position
}
