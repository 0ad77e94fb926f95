package presence

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcus-crane/nowplaying/events"
	"github.com/marcus-crane/nowplaying/playback"
)

var ErrNotConnected = errors.New("presence sink is not connected")

// Sink is a single presence identity, ie; one Discord application id.
type Sink interface {
	Connect() error
	// Reconnect tears down any existing connection before connecting again
	Reconnect() error
	SetActivity(activity *Activity) error
	ClearActivity() error
	Close() error
}

// Publisher owns both presence identities and decides which one is live.
// Only one is ever connected at a time.
type Publisher struct {
	sinks  map[playback.Category]Sink
	opts   Options
	source Source

	active    Sink
	connected map[playback.Category]bool

	forceName string
	forceID   string

	notice *events.Condition
}

func NewPublisher(audio, video Sink, opts Options) *Publisher {
	return &Publisher{
		sinks: map[playback.Category]Sink{
			playback.Audio: audio,
			playback.Video: video,
		},
		opts:      opts,
		connected: map[playback.Category]bool{},
		notice:    events.NewCondition("discord", nil),
	}
}

// ForceIdentity replaces the player name and/or id shown in the payload.
// Empty values leave the detected identity alone.
func (p *Publisher) ForceIdentity(name, id string) {
	p.forceName = name
	p.forceID = id
}

// Bind sets the source the next payloads describe.
func (p *Publisher) Bind(name string, category playback.Category) Source {
	src := Source{
		Name:     name,
		ID:       playback.SourceID(name),
		Category: category,
	}
	if p.forceName != "" {
		src.Name = p.forceName
	}
	if p.forceID != "" {
		src.ID = p.forceID
	}
	p.source = src
	return src
}

// Connect makes the identity for category the live one. The first time
// an identity is used we connect, every time after that we reconnect.
// The returned bool is true when an existing identity was reconnected.
func (p *Publisher) Connect(category playback.Category) (bool, error) {
	sink, ok := p.sinks[category]
	if !ok || sink == nil {
		return false, fmt.Errorf("no presence sink for %s: %w", category, ErrNotConnected)
	}
	if p.active != nil && p.active != sink {
		// Leaving the other identity connected would keep its activity
		// on screen
		if err := p.active.Close(); err != nil {
			slog.Debug("Failed to close previous presence identity", slog.String("error", err.Error()))
		}
	}
	p.active = nil

	if !p.connected[category] {
		if err := sink.Connect(); err != nil {
			p.notice.Fail("Could not connect to Discord. Waiting for Discord to start...",
				slog.String("error", err.Error()))
			return false, err
		}
		p.connected[category] = true
		p.active = sink
		p.notice.Announce("Connected to Discord", slog.String("identity", string(category)))
		return false, nil
	}

	if err := sink.Reconnect(); err != nil {
		p.notice.Fail("Could not reconnect to Discord. Waiting for Discord to start...",
			slog.String("error", err.Error()))
		return false, err
	}
	p.active = sink
	p.notice.Recover("Reconnected to Discord", slog.String("identity", string(category)))
	return true, nil
}

// ResetNotices lets the next connection failure be reported again, used
// once a player goes missing.
func (p *Publisher) ResetNotices() {
	p.notice.Reset()
}

// Publish pushes a snapshot to the live identity. On failure the caller
// is expected to Close and reacquire.
func (p *Publisher) Publish(now time.Time, snap playback.Snapshot, artwork string) error {
	if p.active == nil {
		return ErrNotConnected
	}
	activity := BuildActivity(now, snap, artwork, p.source, p.opts)
	if err := p.active.SetActivity(&activity); err != nil {
		slog.Error("Could not set activity", slog.String("error", err.Error()))
		return err
	}
	slog.Info("Set activity",
		slog.String("status", string(snap.Status())),
		slog.String("song", snap.Artist+" - "+snap.Title))
	return nil
}

// Clear removes the activity if we set one. Calling it when nothing is
// shown does not touch the sink.
func (p *Publisher) Clear(state *playback.TrackedState) {
	if !state.ActivitySet {
		return
	}
	state.ActivitySet = false
	if p.active == nil {
		return
	}
	if err := p.active.ClearActivity(); err != nil {
		slog.Debug("Failed to clear activity", slog.String("error", err.Error()))
	}
}

// Close drops the live connection. The identity is remembered so the
// next Connect reconnects rather than connects.
func (p *Publisher) Close() {
	if p.active == nil {
		return
	}
	if err := p.active.Close(); err != nil {
		slog.Debug("Failed to close presence connection", slog.String("error", err.Error()))
	}
	p.active = nil
}
