package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/cooking-rota/pkg/core/services"
)

// AddFamilyCmd creates the addFamily command
func AddFamilyCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addFamily <family_id>",
		Short: "Let a family join mid-year and hand it duties of the most loaded families",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yearFlag, _ := cmd.Flags().GetString("year")
			yearID, err := app.resolveYear(yearFlag)
			if err != nil {
				return err
			}

			result, err := services.AddFamilyToPlan(app.Ctx, app.Database, app.Locker, app.Logger, app.Settings, yearID, args[0])
			if err != nil {
				return fmt.Errorf("failed to add family: %w", err)
			}

			fmt.Printf("\n👪 %d von %d Diensten übertragen\n\n", result.Transferred, result.Target)
			for _, transfer := range result.Transfers {
				fmt.Printf("  %s  %s → %s\n", transfer.Date.German(), shortID(string(transfer.From)), shortID(string(transfer.To)))
			}
			fmt.Println()
			printConflicts(result.Conflicts)

			return nil
		},
	}

	cmd.Flags().String("year", "", "Year ID (defaults to the active year)")

	return cmd
}

// RemoveFamilyCmd creates the removeFamily command
func RemoveFamilyCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "removeFamily <family_id>",
		Short: "Deactivate a leaving family and redistribute its future duties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yearFlag, _ := cmd.Flags().GetString("year")
			yearID, err := app.resolveYear(yearFlag)
			if err != nil {
				return err
			}

			result, err := services.RemoveFamilyFromPlan(app.Ctx, app.Database, app.Locker, app.Logger, app.Settings, yearID, args[0])
			if err != nil {
				return fmt.Errorf("failed to remove family: %w", err)
			}

			fmt.Printf("\n👋 %d Dienste umverteilt, %d gelöscht\n\n", result.Redistributed, result.Removed)
			for _, reassignment := range result.Reassignments {
				fmt.Printf("  %s  → %s\n", reassignment.Date.German(), shortID(string(reassignment.To)))
			}
			fmt.Println()
			printConflicts(result.Conflicts)

			return nil
		},
	}

	cmd.Flags().String("year", "", "Year ID (defaults to the active year)")

	return cmd
}

// RegisterFamilyCmd creates the registerFamily command
func RegisterFamilyCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registerFamily <name>",
		Short: "Register a new family",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			parents, _ := cmd.Flags().GetInt("parents")
			inactive, _ := cmd.Flags().GetBool("inactive")

			family, err := services.RegisterFamily(app.Ctx, app.Database, app.Logger, args[0], email, parents, !inactive)
			if err != nil {
				return fmt.Errorf("failed to register family: %w", err)
			}

			fmt.Printf("\n✓ Familie %s registriert (ID %s, %d Elternteil(e))\n", family.Name, family.ID, family.ParentCount)
			if inactive {
				fmt.Println("💡 Use addFamily to let the family join the running plan.")
			}
			return nil
		},
	}

	cmd.Flags().String("email", "", "Contact email")
	cmd.Flags().Int("parents", 2, "Number of parents (1 or 2)")
	cmd.Flags().Bool("inactive", false, "Register without joining the plan yet")

	return cmd
}

// SetAvailabilityCmd creates the setAvailability command
func SetAvailabilityCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setAvailability <family_id> [date...]",
		Short: "Replace the days a family can cook",
		Long:  "Replace the days a family can cook. Dates are YYYY-MM-DD; --weekdays adds every matching day of the year (e.g. mon,wed).",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yearFlag, _ := cmd.Flags().GetString("year")
			weekdayNames, _ := cmd.Flags().GetStringSlice("weekdays")

			yearID, err := app.resolveYear(yearFlag)
			if err != nil {
				return err
			}

			weekdays, err := parseWeekdays(weekdayNames)
			if err != nil {
				return err
			}

			availability, err := services.SetAvailability(app.Ctx, app.Database, app.Logger, yearID, args[0], args[1:], weekdays)
			if err != nil {
				return fmt.Errorf("failed to set availability: %w", err)
			}

			fmt.Printf("\n✓ %d Kochtage für %s gespeichert\n", len(availability.Dates), availability.FamilyID)
			return nil
		},
	}

	cmd.Flags().String("year", "", "Year ID (defaults to the active year)")
	cmd.Flags().StringSlice("weekdays", nil, "Weekdays to add (mon,tue,wed,thu,fri)")

	return cmd
}

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday, "mo": time.Monday,
	"tue": time.Tuesday, "di": time.Tuesday,
	"wed": time.Wednesday, "mi": time.Wednesday,
	"thu": time.Thursday, "do": time.Thursday,
	"fri": time.Friday, "fr": time.Friday,
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	weekdays := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		weekday, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		weekdays = append(weekdays, weekday)
	}
	return weekdays, nil
}
