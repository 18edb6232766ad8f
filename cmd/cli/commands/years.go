package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/cooking-rota/pkg/core/services"
)

// CreateYearCmd creates the createYear command
func CreateYearCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "createYear <start> <end>",
		Short: "Create a kita year (dates as YYYY-MM-DD, both inclusive)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := services.CreateYear(app.Ctx, app.Database, app.Logger, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to create year: %w", err)
			}

			fmt.Printf("\n✓ Year created successfully!\n\n")
			fmt.Printf("Year ID: %s\n", year.ID)
			fmt.Printf("Start:   %s\n", year.Start)
			fmt.Printf("End:     %s\n\n", year.End)
			fmt.Println("💡 Use activateYear to make it the default for other commands.")

			return nil
		},
	}
}

// ActivateYearCmd creates the activateYear command
func ActivateYearCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "activateYear <year_id>",
		Short: "Make a year the active one, carrying over last year's load",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ActivateYear(app.Ctx, app.Database, app.Logger, args[0])
			if err != nil {
				return fmt.Errorf("failed to activate year: %w", err)
			}

			fmt.Printf("\n✓ Year %s (%s - %s) is now active\n", result.Year.ID, result.Year.Start, result.Year.End)
			if result.Previous != nil && result.CarryOver != nil {
				fmt.Printf("  Carried over from %s: %d created, %d updated, %d skipped\n",
					result.Previous.ID, result.CarryOver.Created, result.CarryOver.Updated, result.CarryOver.Skipped)
			}
			return nil
		},
	}
}

// CarryOverCmd creates the carryOver command
func CarryOverCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carryOver",
		Short: "Store the last duty and duty count of every family for the next year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			yearFlag, _ := cmd.Flags().GetString("year")
			yearID, err := app.resolveYear(yearFlag)
			if err != nil {
				return err
			}

			result, err := services.CarryOverPriorLoad(app.Ctx, app.Database, app.Logger, yearID)
			if err != nil {
				return fmt.Errorf("failed to carry over: %w", err)
			}

			fmt.Printf("\n✓ Prior load stored\n\n")
			fmt.Printf("Created:         %d\n", result.Created)
			fmt.Printf("Updated:         %d\n", result.Updated)
			fmt.Printf("Skipped:         %d\n", result.Skipped)
			fmt.Printf("Without duties:  %d\n", result.NoAssignments)
			return nil
		},
	}

	cmd.Flags().String("year", "", "Source year ID (defaults to the active year)")

	return cmd
}

// GenerateHolidaysCmd creates the generateHolidays command
func GenerateHolidaysCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generateHolidays",
		Short: "Store the public holidays of a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			yearFlag, _ := cmd.Flags().GetString("year")
			force, _ := cmd.Flags().GetBool("force")

			yearID, err := app.resolveYear(yearFlag)
			if err != nil {
				return err
			}

			result, err := services.GenerateHolidays(app.Ctx, app.Database, app.Logger, yearID, force)
			if err != nil {
				return fmt.Errorf("failed to generate holidays: %w", err)
			}

			if result.Skipped {
				fmt.Printf("\nℹ️  %d holidays already exist. Use --force to replace them.\n", result.Existing)
				return nil
			}

			fmt.Printf("\n🎉 %d Feiertage gespeichert:\n\n", len(result.Inserted))
			for _, holiday := range result.Inserted {
				fmt.Printf("  %s  %s\n", holiday.Date, holiday.Name)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().String("year", "", "Year ID (defaults to the active year)")
	cmd.Flags().Bool("force", false, "Replace existing holidays")

	return cmd
}

// AddVacationCmd creates the addVacation command
func AddVacationCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addVacation <name> <start> <end>",
		Short: "Add a closing period (dates as YYYY-MM-DD, both inclusive)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			yearFlag, _ := cmd.Flags().GetString("year")
			yearID, err := app.resolveYear(yearFlag)
			if err != nil {
				return err
			}

			vacation, err := services.AddVacation(app.Ctx, app.Database, app.Logger, yearID, args[0], args[1], args[2])
			if err != nil {
				return fmt.Errorf("failed to add vacation: %w", err)
			}

			fmt.Printf("\n✓ %s (%s - %s) added\n", vacation.Name, vacation.Start, vacation.End)
			fmt.Println("💡 Run generatePlan to take the new closing days into account.")
			return nil
		},
	}

	cmd.Flags().String("year", "", "Year ID (defaults to the active year)")

	return cmd
}
