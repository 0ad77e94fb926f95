package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/marcus-crane/nowplaying/artwork"
	"github.com/marcus-crane/nowplaying/events"
	"github.com/marcus-crane/nowplaying/playback"
	"github.com/marcus-crane/nowplaying/presence"
)

type Options struct {
	Interval     time.Duration
	Allowlist    []string
	VideoPlayers []string
	// OnlyWhenPlaying clears the presence while the player is paused
	OnlyWhenPlaying  bool
	NativeArtAllowed bool
}

type ArtworkResolver interface {
	Resolve(ctx context.Context, req artwork.Request) string
}

// Loop keeps one source mirrored onto the presence sink. The outer cycle
// (acquire, connect) runs whenever the inner polling of a source gives up.
type Loop struct {
	provider  playback.Provider
	resolver  ArtworkResolver
	publisher *presence.Publisher
	opts      Options

	state   playback.TrackedState
	current string

	providerNotice *events.Condition
	sourceNotice   *events.Condition

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool
}

func New(provider playback.Provider, resolver ArtworkResolver, publisher *presence.Publisher, opts Options) *Loop {
	return &Loop{
		provider:       provider,
		resolver:       resolver,
		publisher:      publisher,
		opts:           opts,
		providerNotice: events.NewCondition("provider", nil),
		sourceNotice:   events.NewCondition("player", nil),
		now:            time.Now,
		sleep:          sleepContext,
	}
}

// sleepContext returns false if ctx was cancelled before d elapsed
func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Run blocks until ctx is cancelled. Nothing that goes wrong inside the
// loop stops it.
func (l *Loop) Run(ctx context.Context) error {
	defer l.shutdown()
	for {
		if ctx.Err() != nil {
			return nil
		}
		l.cycle(ctx)
		if ctx.Err() != nil || !l.sleep(ctx, l.opts.Interval) {
			return nil
		}
	}
}

func (l *Loop) shutdown() {
	l.publisher.Clear(&l.state)
	l.publisher.Close()
}

// cycle is one pass of the outer loop
func (l *Loop) cycle(ctx context.Context) {
	cand, ok := l.acquire(ctx)
	if !ok {
		return
	}

	category := CategoryFor(cand, l.opts.VideoPlayers)
	src := l.publisher.Bind(cand.DisplayName, category)
	slog.Debug("Using player",
		slog.String("name", cand.DisplayName),
		slog.String("bus_name", cand.ID),
		slog.String("player_id", src.ID),
		slog.String("identity", string(category)))

	reconnected, err := l.publisher.Connect(category)
	if err != nil {
		return
	}
	slog.Debug("Presence connection ready", slog.Bool("reconnected", reconnected))
	// Whatever connection existed before is gone, and with it whatever
	// the sink was displaying
	l.state.ActivitySet = false
	l.state.Interrupted = true

	l.poll(ctx, cand)
}

func (l *Loop) acquire(ctx context.Context) (playback.Candidate, bool) {
	cand, err := Choose(ctx, l.provider, l.opts.Allowlist)
	if errors.Is(err, playback.ErrProviderUnavailable) {
		l.providerNotice.Fail("Could not connect to media source provider", slog.String("error", err.Error()))
		return playback.Candidate{}, false
	}
	l.providerNotice.Recover("Connected to media source provider")

	if err != nil {
		msg := "Could not find any player. Waiting for any player..."
		if len(l.opts.Allowlist) > 0 {
			msg = "Could not find any active player from your allowlist. Waiting for any player from your allowlist..."
		}
		l.sourceNotice.Fail(msg)
		l.publisher.ResetNotices()
		l.state.Interrupted = true
		l.publisher.Clear(&l.state)
		return playback.Candidate{}, false
	}
	l.sourceNotice.Succeed("Found active player", slog.String("player", cand.DisplayName))

	if cand.ID != l.current {
		l.current = cand.ID
		l.state.Interrupted = true
	}
	return cand, true
}

// Choose picks the source to track, by allowlist when one is set and by
// the provider's own idea of the active player otherwise.
func Choose(ctx context.Context, provider playback.Provider, allowlist []string) (playback.Candidate, error) {
	if len(allowlist) == 0 {
		return provider.ActiveSource(ctx)
	}
	candidates, err := provider.ListCandidates(ctx)
	if err != nil {
		return playback.Candidate{}, err
	}
	cand, ok := playback.Select(candidates, allowlist)
	if !ok {
		return playback.Candidate{}, playback.ErrNoSource
	}
	return cand, nil
}

// CategoryFor decides between the audio and video presence identities.
func CategoryFor(cand playback.Candidate, videoPlayers []string) playback.Category {
	for _, name := range videoPlayers {
		if name == cand.DisplayName || name == cand.ID {
			return playback.Video
		}
	}
	return playback.Audio
}

func (l *Loop) poll(ctx context.Context, cand playback.Candidate) {
	for {
		if !l.step(ctx, cand) {
			return
		}
		if !l.sleep(ctx, l.opts.Interval) {
			return
		}
	}
}

// step is one pass of the inner loop. It returns false when the source
// needs to be acquired again.
func (l *Loop) step(ctx context.Context, cand playback.Candidate) bool {
	snap, err := l.provider.Snapshot(ctx, cand.ID)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		slog.Warn("Could not get metadata from player", slog.String("error", err.Error()))
		l.state.Interrupted = true
		l.publisher.Clear(&l.state)
		return false
	}
	if snap.SourceID != "" && snap.SourceID != cand.ID {
		slog.Debug("Detected player change",
			slog.String("from", cand.ID),
			slog.String("to", snap.SourceID))
		l.state.Interrupted = true
		l.publisher.Clear(&l.state)
		return false
	}

	if !snap.IsPlaying {
		if l.opts.OnlyWhenPlaying {
			l.state.Interrupted = true
			l.publisher.Clear(&l.state)
			return true
		}
		if l.shouldReselect(ctx, cand) {
			slog.Debug("Another player started playing, switching")
			return false
		}
	}

	publish, reason := playback.ShouldPublish(l.state, snap, l.state.Interrupted)
	if reason == playback.ReasonInvalid {
		// Leave whatever is shown alone until the player reports
		// something usable
		slog.Debug("Unknown metadata, skipping")
		return true
	}
	l.state.Observe(snap)
	if !publish {
		slog.Debug("The same metadata and status, skipping")
		return true
	}
	slog.Debug("Publishing", slog.String("reason", string(reason)))

	cover := l.resolver.Resolve(ctx, artwork.Request{
		AlbumID:          snap.AlbumID(),
		Album:            snap.Album,
		AlbumArtist:      snap.AlbumArtist,
		ArtURL:           snap.ArtURL,
		NativeArtAllowed: l.opts.NativeArtAllowed,
	})
	if err := l.publisher.Publish(l.now(), snap, cover); err != nil {
		l.state.Interrupted = true
		l.state.ActivitySet = false
		l.publisher.Close()
		return false
	}
	l.state.Commit(snap)
	return true
}

func (l *Loop) shouldReselect(ctx context.Context, cand playback.Candidate) bool {
	candidates, err := l.provider.ListCandidates(ctx)
	if err != nil {
		return false
	}
	return playback.ShouldReselect(candidates, cand.ID, l.opts.Allowlist)
}
