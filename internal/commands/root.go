// Package commands implements kharcha-cli, a terminal front end to the same
// expense store the web UI uses.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"kharcha/internal/cli"
	"kharcha/internal/config"
	"kharcha/internal/core"
	applog "kharcha/internal/log"
	"kharcha/internal/services"
)

type globalOptions struct {
	dbPath   string
	timezone string
	logLevel string

	// clock overrides the zone clock in tests.
	clock core.Clock
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(nil)
}

func newRootCommand(clock core.Clock) *cobra.Command {
	defaults := config.Load()
	opts := &globalOptions{clock: clock}

	rootCmd := &cobra.Command{
		Use:   "kharcha-cli",
		Short: "Log, inspect and prune personal expenses",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := applog.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			applog.SetDefault(applog.NewText(cmd.ErrOrStderr(), lvl, applog.ComponentCLI))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dbPath, "db", defaults.SQLiteDBPath, "SQLite database file")
	flags.StringVar(&opts.timezone, "tz", defaults.Timezone, "timezone for timestamps and default date ranges")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newLogCommand(opts),
		newShowCommand(opts),
		newUpdateCommand(opts),
		newDeleteCommand(opts),
		newListCommand(opts),
		newExportCommand(opts),
		newTotalsCommand(opts),
		newDeleteRangeCommand(opts),
		newDeleteAllCommand(opts),
	)

	return rootCmd
}

// Execute loads .env and runs the command tree.
func Execute() error {
	cli.LoadEnvFile()
	return NewRootCommand().Execute()
}

// open returns a service on the SQLite file named by --db. The caller
// must Close it.
func (o *globalOptions) open() (*services.ExpenseService, core.Clock, error) {
	clock := o.clock
	if clock == nil {
		zc, err := core.NewZoneClock(o.timezone)
		if err != nil {
			return nil, nil, fmt.Errorf("timezone %q: %w", o.timezone, err)
		}
		clock = zc
	}

	backend, err := cli.OpenBackend(&config.Config{DataBackend: "sqlite", SQLiteDBPath: o.dbPath})
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", o.dbPath, err)
	}
	return services.NewExpenseService(backend, nil, clock), clock, nil
}

// rangeFlags binds --start and --end on cmd.
type rangeFlags struct {
	start, end string
}

func (f *rangeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "first day, YYYY-MM-DD (default: 7 days ago)")
	cmd.Flags().StringVar(&f.end, "end", "", "last day, YYYY-MM-DD (default: today)")
}

func (f *rangeFlags) resolve(clock core.Clock) (core.DateRange, error) {
	dr, err := core.ParseDateRange(f.start, f.end, clock.Now())
	if err != nil {
		return core.DateRange{}, fmt.Errorf("dates must be YYYY-MM-DD: %w", err)
	}
	return dr, nil
}
