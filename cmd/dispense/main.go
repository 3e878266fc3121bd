/*
main.go - Command-line entry point

PURPOSE:
  One binary for the HTTP service and for one-off schedule and date
  calculations from the shell.

COMMANDS:
  serve                 Run the HTTP API
  schedule              Print the dispensing schedule of one prescription
  date add DATE DAYS    Shift a date
  date diff FROM TO     Days between two dates
  date today            Today's solar date

EXAMPLES:
  dispense serve --config ./dispense.yaml
  dispense schedule --start 1403/01/01 --kind liquid --unit-volume 250 --daily-dose 12
  dispense schedule --start 1403/01/10 --kind tablet --unit-volume 30 --daily-dose 1 --single -o json
  dispense date add 1403/12/29 1

ENVIRONMENT:
  DISPENSE_* variables override the config file, e.g. DISPENSE_SERVER_PORT.

SEE ALSO:
  - config/config.go: configuration keys
  - api/server.go: Router configuration
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/dispense/config"
)

var version = "dev"

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
}

// loadConfig reads the config file (if any) plus environment overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.configPath)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "dispense",
		Short:         "Medication dispensing schedules on the solar calendar",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (YAML)")

	cmd.AddCommand(
		newServeCommand(opts),
		newScheduleCommand(opts),
		newDateCommand(),
	)
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
