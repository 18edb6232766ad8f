package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/pkg/core/services"
)

// GeneratePlanCmd creates the generatePlan command
func GeneratePlanCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generatePlan",
		Short: "Generate the cooking plan of a year",
		Long:  "Regenerate every non-manual assignment of the year. Manual assignments are kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			yearFlag, _ := cmd.Flags().GetString("year")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			yearID, err := app.resolveYear(yearFlag)
			if err != nil {
				return err
			}

			app.Logger.Debug("generatePlan command", zap.String("year_id", yearID), zap.Bool("dry_run", dryRun))

			result, err := services.GeneratePlan(app.Ctx, app.Database, app.Locker, app.Logger, app.Settings, yearID, dryRun)
			if err != nil {
				return fmt.Errorf("plan generation failed: %w", err)
			}

			fmt.Printf("\n🍲 Kochplan %s - %s\n\n", result.Year.Start, result.Year.End)
			fmt.Printf("Kochtage:        %d\n", result.Plan.AvailableDays)
			fmt.Printf("Generiert:       %d\n", len(result.Assignments))
			fmt.Printf("Manuell:         %d\n", result.ManualCount)
			fmt.Printf("Abstand:         %d Tage (mindestens %d)\n", result.Plan.Intervals.Target, result.Plan.Intervals.Minimum)
			if dryRun {
				fmt.Printf("Modus:           🧪 DRY RUN (nicht gespeichert)\n")
			}
			fmt.Println()

			printConflicts(result.Plan.Conflicts)

			if hard := result.HardConflicts(); len(hard) > 0 {
				fmt.Printf("❌ %d Tage konnten nicht besetzt werden.\n", len(hard))
			} else if dryRun {
				fmt.Println("💡 This was a dry run. Use without --dry-run to save the plan.")
			} else {
				fmt.Println("✅ Plan has been saved to the database.")
			}

			return nil
		},
	}

	cmd.Flags().String("year", "", "Year ID (defaults to the active year)")
	cmd.Flags().Bool("dry-run", false, "Run without saving to database")

	return cmd
}

// ViewPlanCmd creates the viewPlan command
func ViewPlanCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewPlan",
		Short: "Show the plan of a year with per-family counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			yearFlag, _ := cmd.Flags().GetString("year")
			yearID, err := app.resolveYear(yearFlag)
			if err != nil {
				return err
			}

			view, err := services.ViewPlan(app.Ctx, app.Database, app.Logger, app.Settings, yearID)
			if err != nil {
				return fmt.Errorf("failed to view plan: %w", err)
			}

			fmt.Printf("\n📅 Kochplan %s (%d Kochtage)\n\n", view.Label, view.AvailableDays)
			fmt.Printf("%-12s  %-30s  %s\n", "Datum", "Familie", "Art")
			fmt.Println("------------  ------------------------------  -------")
			for _, row := range view.Rows {
				kind := ""
				if row.IsManual {
					kind = "manuell"
				}
				fmt.Printf("%-12s  %-30s  %s\n", row.Date.German(), row.FamilyName, kind)
			}
			fmt.Println()

			fmt.Printf("%-30s  %-8s  %s\n", "Familie", "Dienste", "Soll")
			for _, family := range view.Families {
				quota := fmt.Sprintf("%d", family.Quota)
				if !family.Active {
					quota = "ausgetreten"
				}
				fmt.Printf("%-30s  %-8d  %s\n", family.Name, family.Count, quota)
			}
			fmt.Println()

			if len(view.Unfilled) > 0 {
				fmt.Printf("⚠️  %d unbesetzte Tage:\n", len(view.Unfilled))
				for _, date := range view.Unfilled {
					fmt.Printf("  • %s\n", date.German())
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().String("year", "", "Year ID (defaults to the active year)")

	return cmd
}

// DeletePlanCmd creates the deletePlan command
func DeletePlanCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deletePlan",
		Short: "Delete every assignment of a year, manual ones included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			yearFlag, _ := cmd.Flags().GetString("year")
			yearID, err := app.resolveYear(yearFlag)
			if err != nil {
				return err
			}

			deleted, err := services.DeletePlan(app.Ctx, app.Database, app.Locker, app.Logger, yearID)
			if err != nil {
				return fmt.Errorf("failed to delete plan: %w", err)
			}

			fmt.Printf("\n🗑  %d Zuweisungen gelöscht.\n", deleted)
			return nil
		},
	}

	cmd.Flags().String("year", "", "Year ID (defaults to the active year)")

	return cmd
}

// AssignCmd creates the assign command
func AssignCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <family_id> <date>",
		Short: "Book a family on a date by hand",
		Long:  "Book a family on a date (YYYY-MM-DD). A generated assignment on that date is replaced.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			yearFlag, _ := cmd.Flags().GetString("year")
			yearID, err := app.resolveYear(yearFlag)
			if err != nil {
				return err
			}

			result, err := services.AssignManually(app.Ctx, app.Database, app.Locker, app.Logger, app.Settings, yearID, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to assign: %w", err)
			}

			fmt.Printf("\n✓ %s ist am %s eingetragen.\n", result.Assignment.FamilyID, result.Assignment.Date)
			if result.Replaced != nil {
				fmt.Printf("  (ersetzt generierte Zuweisung von %s)\n", result.Replaced.FamilyID)
			}
			return nil
		},
	}

	cmd.Flags().String("year", "", "Year ID (defaults to the active year)")

	return cmd
}
