package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/dispense/calendar"
)

// now is swapped in tests.
var now = time.Now

func newDateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "date",
		Short: "Solar calendar arithmetic",
	}

	add := &cobra.Command{
		Use:     "add DATE DAYS",
		Short:   "Shift DATE by DAYS (may be negative)",
		Example: "  dispense date add 1403/12/29 1\n  dispense date add 1404/01/01 -1",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := calendar.Parse(args[0])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("days must be an integer: %w", err)
			}
			result := d.AddDays(n)
			if err := result.Validate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
	// Stop flag parsing at DATE so a negative DAYS is not read as a shorthand.
	add.Flags().SetInterspersed(false)

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:     "diff FROM TO",
			Short:   "Print the number of days from FROM to TO",
			Example: "  dispense date diff 1403/01/01 1403/06/31",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				from, err := calendar.Parse(args[0])
				if err != nil {
					return err
				}
				to, err := calendar.Parse(args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), calendar.DaysBetween(from, to))
				return nil
			},
		},
		&cobra.Command{
			Use:   "today",
			Short: "Print today's date",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				today := calendar.FromCivil(now())
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", today, today.LongString())
				return nil
			},
		},
	)
	return cmd
}
