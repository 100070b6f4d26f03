package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run a local-installation reconciliation pass",
		Long:  "sync scans the install manifest and the process table, and reports every game whose local state changed since the previous pass. Passes are rate limited.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := restoreSession(cmd.Context(), app); err != nil {
				return err
			}

			// Prime the offer cache so manifest entries without an offer id
			// can be cross-referenced by slug.
			if _, err := app.library.OwnedGames(cmd.Context()); err != nil {
				return fmt.Errorf("load owned games: %w", err)
			}

			if !app.scheduler.MaybeRun(cmd.Context()) {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Skipped: a pass ran too recently or is still in flight.")
				return err
			}

			snapshot := app.reconciler.Snapshot()
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Reconciled %d local game(s).\n", len(snapshot))
			return err
		},
	}
}
