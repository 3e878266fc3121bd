package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/warp/dispense/api"
	"github.com/warp/dispense/calendar"
	"github.com/warp/dispense/dosing"
	"github.com/warp/dispense/factory"
)

type scheduleOptions struct {
	prescription factory.PrescriptionJSON
	window       factory.WindowJSON
	output       string
	on           string
}

func newScheduleCommand(root *rootOptions) *cobra.Command {
	opts := &scheduleOptions{}
	p := &opts.prescription

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the dispensing schedule of one prescription",
		Example: `  dispense schedule --start 1403/01/01 --kind liquid --unit-volume 250 --daily-dose 12
  dispense schedule --start 1403/01/01 --kind tablet --unit-volume 30 --daily-dose 2 --reduction 10 --reduction-months 2
  dispense schedule --start 1403/01/01 --kind ampoule --unit-volume 1 --daily-dose 1 --interval 7 -o json
  dispense schedule --start 1403/01/01 --daily-dose 12 --on 1403/03/15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			f := &factory.PrescriptionFactory{
				DefaultWindow: cfg.Schedule.Window(),
				MaxIterations: cfg.Schedule.MaxIterations,
			}

			if cmd.Flags().Changed("policy") || cmd.Flags().Changed("months") || cmd.Flags().Changed("checkpoint-day") {
				w := opts.window
				p.Window = &w
			}

			var on calendar.LocalDate
			if opts.on != "" {
				if on, err = calendar.Parse(opts.on); err != nil {
					return err
				}
			}

			req, err := f.FromJSON(*p)
			if err != nil {
				return err
			}
			schedule, err := dosing.Generate(req)
			if err != nil {
				return err
			}

			switch strings.ToLower(opts.output) {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(api.NewScheduleDTO(uuid.NewString(), schedule))
			case "text", "":
				if err := printSchedule(cmd.OutOrStdout(), schedule); err != nil {
					return err
				}
				if opts.on != "" {
					printPeriodOn(cmd.OutOrStdout(), schedule, on)
				}
				return nil
			default:
				return fmt.Errorf("unknown output format %q (want text or json)", opts.output)
			}
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&p.StartDate, "start", "", "start date, YYYY/MM/DD")
	fl.StringVar(&p.Profile.Kind, "kind", "liquid", "medication kind: liquid, tablet, ampoule")
	fl.Float64Var(&p.Profile.UnitVolume, "unit-volume", 0, "volume or count in one unit (default from the kind preset)")
	fl.Float64Var(&p.Profile.DailyDose, "daily-dose", 0, "volume or count consumed per day")
	fl.StringVar(&p.Profile.UnitLabel, "unit-label", "", "unit name, e.g. bottle")
	fl.Float64Var(&p.Profile.ReductionPercent, "reduction", 0, "taper the dose by this percent")
	fl.IntVar(&p.Profile.ReductionIntervalMonths, "reduction-months", 0, "taper every N months")
	fl.IntVar(&p.Profile.DispensingIntervalDays, "interval", 0, "dispense ampoules every N days")
	fl.IntVar(&p.MaxMedicationPerDose, "cap", 0, "maximum units per dispensing (0 = no cap)")
	fl.BoolVar(&p.SingleDoseMode, "single", false, "one dispensing up to the end of the month")
	fl.StringVar(&opts.window.Policy, "policy", string(dosing.BoundaryLastDayOfNthMonth),
		"window boundary: last_day_of_nth_month, same_day_clipped, fixed_checkpoint_day")
	fl.IntVar(&opts.window.Months, "months", dosing.DefaultWindowMonths, "window length in months")
	fl.IntVar(&opts.window.CheckpointDay, "checkpoint-day", dosing.DefaultCheckpointDay, "boundary day for fixed_checkpoint_day")
	fl.StringVarP(&opts.output, "output", "o", "text", "output format: text, json")
	fl.StringVar(&opts.on, "on", "", "also report which dispensing covers this date (text output)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("daily-dose")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("unit-volume") {
			if mt, ok := factory.LookupMedicationType(factory.ParseKind(p.Profile.Kind)); ok {
				p.Profile.UnitVolume = mt.DefaultVolume
			}
		}
		return nil
	}
	return cmd
}

// printSchedule writes a human-readable table.
func printSchedule(w io.Writer, s *dosing.Schedule) error {
	label := s.Profile.UnitLabel
	fmt.Fprintf(w, "Window:   %s -> %s (%d days, %s)\n", s.Window.Start, s.Window.Boundary, s.Window.TotalDays, s.Window.Config)
	fmt.Fprintf(w, "Mode:     %s\n", s.Mode)
	if days, ok := s.Profile.DaysPerUnit(); ok {
		fmt.Fprintf(w, "Per unit: one %s lasts %d days\n", label, days)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFROM\tTO\tDAYS\tAMOUNT\tVOLUME\tDAILY DOSE\t")
	for _, p := range s.Periods {
		marker := ""
		if p.IsFinal {
			marker = " (final)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d %s\t%s\t%s%s\t\n",
			p.DoseNumber, p.StartDate, p.EndDate, p.DaysCount,
			p.MedicationAmount, label, p.MedicationVolume, p.DailyDoseForPeriod, marker)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nTotal: %d %s, volume %s, %d days\n", s.TotalAmount(), label, s.TotalVolume(), s.TotalDays())
	return nil
}

// printPeriodOn reports the dispensing that covers d.
func printPeriodOn(w io.Writer, s *dosing.Schedule, d calendar.LocalDate) {
	if !s.Window.Contains(d) {
		fmt.Fprintf(w, "On %s: outside the window\n", d)
		return
	}
	p, ok := s.PeriodOn(d)
	if !ok {
		// Single-dose schedules can end before the window does.
		fmt.Fprintf(w, "On %s: no dispensing covers this day\n", d)
		return
	}
	fmt.Fprintf(w, "On %s: dose #%d, %s -> %s, day %d of %d\n",
		d, p.DoseNumber, p.StartDate, p.EndDate, calendar.DaysBetween(p.StartDate, d)+1, p.DaysCount)
}
