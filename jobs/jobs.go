package jobs

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Pruner drops negative artwork entries that have outlived their TTL
type Pruner interface {
	PruneExpired()
}

// SetupInBackground schedules cache housekeeping. The scheduler is
// returned stopped, call StartAsync to run it.
func SetupInBackground(pruner Pruner, every time.Duration) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)

	if _, err := s.Every(every).Do(pruner.PruneExpired); err != nil {
		return nil, err
	}

	slog.Debug("Jobs scheduled. Scheduler not running yet.", slog.Duration("prune_every", every))

	return s, nil
}
