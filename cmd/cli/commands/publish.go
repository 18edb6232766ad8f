package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/internal/config"
	"github.com/jakechorley/cooking-rota/pkg/clients/sheetsclient"
	"github.com/jakechorley/cooking-rota/pkg/core/services"
)

// PublishPlanCmd creates the publishPlan command
func PublishPlanCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publishPlan",
		Short: "Publish the plan of a year to Google Sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			yearFlag, _ := cmd.Flags().GetString("year")
			yearID, err := app.resolveYear(yearFlag)
			if err != nil {
				return err
			}

			if app.Cfg.PlanSheetID == "" {
				return fmt.Errorf("planSheetID is not configured")
			}

			app.Logger.Debug("publishPlan command", zap.String("year_id", yearID))

			published, err := services.PublishPlan(app.Ctx, app.Database, app.Logger, app.Settings, yearID)
			if err != nil {
				return fmt.Errorf("failed to prepare plan: %w", err)
			}

			oauthCfg, err := config.LoadOAuthClient(app.Env)
			if err != nil {
				return fmt.Errorf("failed to load OAuth client config: %w", err)
			}

			client, err := sheetsclient.NewClient(app.Ctx, oauthCfg, app.Env, app.Logger)
			if err != nil {
				return fmt.Errorf("failed to create sheets client: %w", err)
			}

			if err := client.PublishPlan(app.Ctx, app.Cfg.PlanSheetID, toPlanSheet(published)); err != nil {
				return fmt.Errorf("failed to publish plan: %w", err)
			}

			app.Logger.Info("Plan published", zap.String("title", published.Title), zap.Int("rows", len(published.Rows)))

			fmt.Printf("\n✅ %s published\n\n", published.Title)
			fmt.Printf("Sheet ID: %s\n", app.Cfg.PlanSheetID)
			fmt.Printf("Rows:     %d\n\n", len(published.Rows))

			return nil
		},
	}

	cmd.Flags().String("year", "", "Year ID (defaults to the active year)")

	return cmd
}

func toPlanSheet(published *services.PublishedPlan) *sheetsclient.PlanSheet {
	sheet := &sheetsclient.PlanSheet{
		Title:   published.Title,
		Rows:    make([]sheetsclient.PlanSheetRow, 0, len(published.Rows)),
		Summary: published.Summary,
	}
	for _, row := range published.Rows {
		sheet.Rows = append(sheet.Rows, sheetsclient.PlanSheetRow{
			Date:   row.Date,
			Family: row.Family,
			Manual: row.Manual,
		})
	}
	return sheet
}
