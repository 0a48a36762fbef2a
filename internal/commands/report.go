package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kharcha/internal/core"
	"kharcha/internal/export"
)

const noDataFound = "No data found"

func newListCommand(opts *globalOptions) *cobra.Command {
	var rf rangeFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show expenses in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, clock, err := opts.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			dr, err := rf.resolve(clock)
			if err != nil {
				return err
			}
			records, err := svc.ListByDateRange(cmd.Context(), dr)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), noDataFound)
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TRANSACTION ID\tTIMESTAMP\tAMOUNT\tCATEGORY\tREASON")
			amounts := make([]float64, 0, len(records))
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					r.TransactionID, r.Timestamp.Format(core.TimestampLayout),
					core.FormatAmount(r.Amount), r.Category, r.Reason)
				amounts = append(amounts, r.Amount)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d records, total %s\n", len(records), core.FormatRupees(core.SumAmounts(amounts...)))
			return nil
		},
	}
	rf.bind(cmd)
	return cmd
}

func newExportCommand(opts *globalOptions) *cobra.Command {
	var rf rangeFlags
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write expenses in a date range as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, clock, err := opts.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			dr, err := rf.resolve(clock)
			if err != nil {
				return err
			}
			records, err := svc.ListByDateRange(cmd.Context(), dr)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), noDataFound)
				return nil
			}

			if output == "-" {
				return export.WriteCSV(cmd.OutOrStdout(), records)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := export.WriteCSV(f, records); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", len(records), output)
			return nil
		},
	}
	rf.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", export.FileName, `destination file, "-" for stdout`)
	return cmd
}

func newTotalsCommand(opts *globalOptions) *cobra.Command {
	totalsCmd := &cobra.Command{
		Use:   "totals",
		Short: "Aggregate expenses by day or by category",
	}
	totalsCmd.AddCommand(newDailyTotalsCommand(opts), newCategoryTotalsCommand(opts))
	return totalsCmd
}

func newDailyTotalsCommand(opts *globalOptions) *cobra.Command {
	var rf rangeFlags

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Sum of expenses per day, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, clock, err := opts.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			dr, err := rf.resolve(clock)
			if err != nil {
				return err
			}
			days, err := svc.DailyTotals(cmd.Context(), dr)
			if err != nil {
				return err
			}
			if len(days) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), noDataFound)
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			for _, d := range days {
				fmt.Fprintf(tw, "%s\t%s\t\n", d.Day.Format(core.DateLayout), core.FormatAmount(d.Total))
			}
			return tw.Flush()
		},
	}
	rf.bind(cmd)
	return cmd
}

func newCategoryTotalsCommand(opts *globalOptions) *cobra.Command {
	var rf rangeFlags

	cmd := &cobra.Command{
		Use:   "category",
		Short: "Sum of expenses per category, largest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, clock, err := opts.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			dr, err := rf.resolve(clock)
			if err != nil {
				return err
			}
			cats, err := svc.CategoryTotals(cmd.Context(), dr)
			if err != nil {
				return err
			}
			if len(cats) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), noDataFound)
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			for _, c := range cats {
				fmt.Fprintf(tw, "%s\t%s\t\n", c.Category, core.FormatAmount(c.Total))
			}
			return tw.Flush()
		},
	}
	rf.bind(cmd)
	return cmd
}
