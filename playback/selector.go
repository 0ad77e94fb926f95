package playback

import (
	"regexp"
	"strings"
)

// MatchesAllowlist matches a single pattern. A trailing * makes it a
// prefix match, anything else must be equal.
func MatchesAllowlist(name, pattern string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(name, prefix)
	}
	return name == pattern
}

// AllowlistRank returns the index of the first pattern matching the
// candidate's id or display name.
func AllowlistRank(c Candidate, allowlist []string) (int, bool) {
	for i, pattern := range allowlist {
		if MatchesAllowlist(c.ID, pattern) || MatchesAllowlist(c.DisplayName, pattern) {
			return i, true
		}
	}
	return 0, false
}

type rankedCandidate struct {
	candidate Candidate
	priority  int
	rank      int
	quality   int
}

func (a rankedCandidate) less(b rankedCandidate) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	if a.quality != b.quality {
		return a.quality < b.quality
	}
	return a.candidate.ID < b.candidate.ID
}

// Select picks the allowlisted candidate with the lowest
// (playback priority, allowlist rank, metadata quality, id) tuple. The id
// tie-break makes the choice independent of enumeration order.
//
// With an empty allowlist nothing is ranked here; callers defer to
// Provider.ActiveSource instead.
func Select(candidates []Candidate, allowlist []string) (Candidate, bool) {
	var best *rankedCandidate
	for _, c := range candidates {
		if c.Proxy {
			continue
		}
		rank, ok := AllowlistRank(c, allowlist)
		if !ok {
			continue
		}
		rc := rankedCandidate{
			candidate: c,
			priority:  c.PlaybackPriority(),
			rank:      rank,
			quality:   c.MetadataQuality(),
		}
		if best == nil || rc.less(*best) {
			best = &rc
		}
	}
	if best == nil {
		return Candidate{}, false
	}
	return best.candidate, true
}

// FindActive is the no-allowlist policy used by providers that don't have
// a native notion of an active player: playing beats paused beats
// anything with metadata, then enumeration order.
func FindActive(candidates []Candidate) (Candidate, bool) {
	var best *rankedCandidate
	for i, c := range candidates {
		if c.Proxy {
			continue
		}
		rc := rankedCandidate{
			candidate: c,
			priority:  c.PlaybackPriority(),
			rank:      i,
			quality:   c.MetadataQuality(),
		}
		if best == nil || rc.priority < best.priority ||
			(rc.priority == best.priority && rc.quality < best.quality) {
			best = &rc
		}
	}
	if best == nil {
		return Candidate{}, false
	}
	return best.candidate, true
}

// ShouldReselect reports whether some other eligible candidate is actively
// playing with usable metadata while the current one is not. A currently
// playing source is never abandoned for another playing one.
func ShouldReselect(candidates []Candidate, currentID string, allowlist []string) bool {
	for _, c := range candidates {
		if c.Proxy || c.ID == currentID {
			continue
		}
		if len(allowlist) > 0 {
			if _, ok := AllowlistRank(c, allowlist); !ok {
				continue
			}
		}
		if c.Status == StatusPlaying && c.HasMetadata {
			return true
		}
	}
	return false
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// SourceID turns a display name into the stable id used as the Discord
// asset key for the player icon, ie; "Strawberry Music Player" becomes
// "strawberry_music_player".
func SourceID(displayName string) string {
	id := nonAlnum.ReplaceAllString(strings.ToLower(displayName), "_")
	return strings.Trim(id, "_")
}
