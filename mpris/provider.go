package mpris

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/marcus-crane/nowplaying/playback"
)

const (
	objectPath  = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	rootIface   = "org.mpris.MediaPlayer2"
	playerIface = "org.mpris.MediaPlayer2.Player"
)

// Provider reads players from the session bus. The connection is made
// lazily and dropped whenever the bus itself stops answering so that a
// restarted session bus is picked up again.
type Provider struct {
	m    sync.Mutex
	conn *dbus.Conn
}

func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) bus() (*dbus.Conn, error) {
	p.m.Lock()
	defer p.m.Unlock()
	if p.conn != nil && p.conn.Connected() {
		return p.conn, nil
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", playback.ErrProviderUnavailable, err)
	}
	p.conn = conn
	return conn, nil
}

func (p *Provider) reset() {
	p.m.Lock()
	defer p.m.Unlock()
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

func (p *Provider) Close() error {
	p.reset()
	return nil
}

func (p *Provider) ListCandidates(ctx context.Context) ([]playback.Candidate, error) {
	conn, err := p.bus()
	if err != nil {
		return nil, err
	}
	var names []string
	if err := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		p.reset()
		return nil, fmt.Errorf("%w: %w", playback.ErrProviderUnavailable, err)
	}

	var candidates []playback.Candidate
	for _, name := range playerBusNames(names) {
		candidates = append(candidates, p.candidate(ctx, conn, name))
	}
	return candidates, nil
}

// candidate never fails, a player that won't answer just ranks last
func (p *Provider) candidate(ctx context.Context, conn *dbus.Conn, busName string) playback.Candidate {
	obj := conn.Object(busName, objectPath)
	c := playback.Candidate{
		ID:          busName,
		DisplayName: busName,
		Status:      playback.StatusStopped,
	}
	if identity, err := getProperty(ctx, obj, rootIface, "Identity"); err == nil {
		if s := stringValue(identity); s != "" {
			c.DisplayName = s
		}
	}
	if status, err := getProperty(ctx, obj, playerIface, "PlaybackStatus"); err == nil {
		c.Status = toStatus(stringValue(status))
	}
	if meta, err := getProperty(ctx, obj, playerIface, "Metadata"); err == nil {
		if m, ok := meta.Value().(map[string]dbus.Variant); ok {
			c.HasMetadata = parseMetadata(m).valid()
		}
	}
	return c
}

func (p *Provider) ActiveSource(ctx context.Context) (playback.Candidate, error) {
	candidates, err := p.ListCandidates(ctx)
	if err != nil {
		return playback.Candidate{}, err
	}
	c, ok := playback.FindActive(candidates)
	if !ok {
		return playback.Candidate{}, playback.ErrNoSource
	}
	return c, nil
}

func (p *Provider) Snapshot(ctx context.Context, sourceID string) (playback.Snapshot, error) {
	conn, err := p.bus()
	if err != nil {
		return playback.Snapshot{}, err
	}
	obj := conn.Object(sourceID, objectPath)

	var props map[string]dbus.Variant
	if err := obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.GetAll", 0, playerIface).Store(&props); err != nil {
		return playback.Snapshot{}, fmt.Errorf("%w: %w", playback.ErrSnapshotUnreadable, err)
	}
	m, ok := props["Metadata"].Value().(map[string]dbus.Variant)
	if !ok {
		return playback.Snapshot{}, fmt.Errorf("%w: %s has no metadata", playback.ErrSnapshotUnreadable, sourceID)
	}
	md := parseMetadata(m)
	status := stringValue(props["PlaybackStatus"])

	// Position is not cached by the bus so it gets asked for directly.
	// Plenty of browsers just don't implement it.
	var position int64
	hasPosition := false
	if v, err := getProperty(ctx, obj, playerIface, "Position"); err == nil {
		position = intValue(v)
		hasPosition = true
	} else {
		slog.Debug("Player did not report a position",
			slog.String("player", sourceID),
			slog.String("error", err.Error()))
	}

	return toSnapshot(sourceID, status, md, position, hasPosition), nil
}

func getProperty(ctx context.Context, obj dbus.BusObject, iface, prop string) (dbus.Variant, error) {
	var v dbus.Variant
	err := obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, iface, prop).Store(&v)
	return v, err
}
