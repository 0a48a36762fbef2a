package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kharcha/internal/core"
)

// errNotConfirmed is returned by delete-all without --yes.
var errNotConfirmed = errors.New("this will delete ALL data! Be careful. Re-run with --yes to proceed")

func newDeleteRangeCommand(opts *globalOptions) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "delete-range",
		Short: "Delete every expense dated between two days, inclusive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := core.ParseDate(start)
			if err != nil {
				return fmt.Errorf("--start %q: %w", start, err)
			}
			e, err := core.ParseDate(end)
			if err != nil {
				return fmt.Errorf("--end %q: %w", end, err)
			}
			dr := core.NewDateRange(s, e)

			svc, _, err := opts.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			m, err := svc.DeleteByDateRange(cmd.Context(), dr)
			if err != nil {
				return err
			}
			if m.NoMatch() {
				fmt.Fprintf(cmd.ErrOrStderr(), "No records between %s and %s, nothing was deleted\n", dr.StartString(), dr.EndString())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d records between %s and %s\n", m.Affected, dr.StartString(), dr.EndString())
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "last day, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newDeleteAllCommand(opts *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}

			svc, _, err := opts.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			m, err := svc.DeleteAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted all %d records\n", m.Affected)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting everything")
	return cmd
}
