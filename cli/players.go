package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/marcus-crane/nowplaying/playback"
	"github.com/marcus-crane/nowplaying/reconcile"
)

func printPlayers(ctx context.Context, w io.Writer, provider playback.Provider) error {
	candidates, err := provider.ListCandidates(ctx)
	if err != nil && !errors.Is(err, playback.ErrNoSource) {
		return err
	}
	if len(candidates) == 0 {
		fmt.Fprintln(w, "Could not find any player")
		return nil
	}

	fmt.Fprintln(w, "Available players:")
	for _, c := range candidates {
		fmt.Fprintf(w, " * %s (%s)\n", c.DisplayName, c.ID)
	}

	example := candidates[0]
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Use the name or id to choose which player is shown on Discord:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, " nowplaying -a %q\n", example.DisplayName)
	fmt.Fprintf(w, " nowplaying -a %q\n", example.ID)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "You can use -a multiple times to add more than one player to the allowlist:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, " nowplaying -a %q -a \"Second Player\" -a \"Any other player\"\n", example.DisplayName)
	return nil
}

func printPlayerID(ctx context.Context, w io.Writer, provider playback.Provider, allowlist []string) error {
	cand, err := reconcile.Choose(ctx, provider, allowlist)
	if errors.Is(err, playback.ErrNoSource) {
		fmt.Fprintln(w, "No player detected.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "player_id: %s\n", playback.SourceID(cand.DisplayName))
	return nil
}
