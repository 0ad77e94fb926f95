package artwork

import (
	"context"
	"log/slog"
)

// Step is one link of a fallback chain. Returning an empty string (or an
// error) moves on to the next step.
type Step struct {
	Name string
	Run  func(ctx context.Context) (string, error)
}

// RunChain evaluates steps in order and returns the first non-empty
// result along with the name of the step that produced it.
func RunChain(ctx context.Context, steps []Step) (string, string) {
	for _, step := range steps {
		if ctx.Err() != nil {
			return "", ""
		}
		result, err := step.Run(ctx)
		if err != nil {
			slog.Debug("Artwork lookup step failed",
				slog.String("step", step.Name),
				slog.String("error", err.Error()))
			continue
		}
		if result != "" {
			return result, step.Name
		}
	}
	return "", ""
}
