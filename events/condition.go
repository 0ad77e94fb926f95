package events

import (
	"context"
	"log/slog"
)

type State int

const (
	Unknown State = iota
	Healthy
	Failing
)

func (s State) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Failing:
		return "failing"
	default:
		return "unknown"
	}
}

// Condition tracks one external dependency (the media provider, the
// Discord socket, ...) so that status messages are only printed when
// the state actually changes rather than on every poll.
type Condition struct {
	Name   string
	state  State
	logger *slog.Logger
}

func NewCondition(name string, logger *slog.Logger) *Condition {
	if logger == nil {
		logger = slog.Default()
	}
	return &Condition{
		Name:   name,
		logger: logger.With(slog.String("condition", name)),
	}
}

func (c *Condition) State() State {
	return c.state
}

// Fail logs msg at warn level the first time the condition fails. Repeat
// failures are silent until something else moves the state.
func (c *Condition) Fail(msg string, attrs ...slog.Attr) bool {
	if c.state == Failing {
		return false
	}
	c.state = Failing
	c.logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
	return true
}

// Recover only logs if a failure was previously shown.
func (c *Condition) Recover(msg string, attrs ...slog.Attr) bool {
	wasFailing := c.state == Failing
	c.state = Healthy
	if wasFailing {
		c.logger.LogAttrs(context.Background(), slog.LevelInfo, msg, attrs...)
	}
	return wasFailing
}

// Succeed logs on any transition into Healthy, including the very first.
func (c *Condition) Succeed(msg string, attrs ...slog.Attr) bool {
	if c.state == Healthy {
		return false
	}
	c.state = Healthy
	c.logger.LogAttrs(context.Background(), slog.LevelInfo, msg, attrs...)
	return true
}

// Announce always logs and marks the condition healthy.
func (c *Condition) Announce(msg string, attrs ...slog.Attr) {
	c.state = Healthy
	c.logger.LogAttrs(context.Background(), slog.LevelInfo, msg, attrs...)
}

// Reset forgets the last known state so the next transition is reported
// regardless of what came before.
func (c *Condition) Reset() {
	c.state = Unknown
}
