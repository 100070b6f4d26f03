package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	statusadapter "github.com/BellezaEmporium/galaxy-integration-ead/internal/adapters/render/status"
	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the library with play time and local install state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := buildReport(cmd.Context(), app)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			rendered := app.renderStatus(report, statusadapter.RenderOptions{Now: app.now()})
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the report as JSON")

	return cmd
}

func buildReport(ctx context.Context, app *app) (statusadapter.Report, error) {
	if err := restoreSession(ctx, app); err != nil {
		return statusadapter.Report{}, err
	}

	identity, err := app.library.Identity(ctx)
	if err != nil {
		return statusadapter.Report{}, fmt.Errorf("resolve identity: %w", err)
	}

	games, err := app.library.OwnedGames(ctx)
	if err != nil {
		return statusadapter.Report{}, fmt.Errorf("load owned games: %w", err)
	}

	ids := make([]domain.GameID, 0, len(games))
	for _, game := range games {
		ids = append(ids, game.ID)
	}
	times, err := app.library.GameTimes(ctx, ids)
	if err != nil {
		return statusadapter.Report{}, fmt.Errorf("load play times: %w", err)
	}

	snapshot, _ := app.reconciler.Refresh(ctx)
	states := make(map[domain.GameID]domain.LocalGameState, len(snapshot))
	for _, local := range snapshot {
		states[local.GameID] = local.State
	}

	rows := make([]statusadapter.GameRow, 0, len(games))
	for _, game := range games {
		row := statusadapter.GameRow{
			Title: game.Title,
			ID:    game.ID,
			State: states[domain.GameID(game.ID.OfferID())],
		}
		if record, ok := times[game.ID]; ok {
			row.TotalMinutes = record.TotalMinutes
			row.LastPlayed = record.LastPlayed
		}
		rows = append(rows, row)
	}

	return statusadapter.Report{
		DisplayName:   identity.DisplayName,
		Authenticated: app.session.IsAuthenticated(),
		Games:         rows,
	}, nil
}

func restoreSession(ctx context.Context, app *app) error {
	if app.session.IsAuthenticated() {
		return nil
	}

	cookies, err := loadCookies(app.cookiesPath)
	if err != nil {
		return fmt.Errorf("no stored session, run `ead login`: %w", err)
	}
	app.session.RestoreAuthState(ctx)
	if err := app.session.Authenticate(ctx, cookies); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	return nil
}
