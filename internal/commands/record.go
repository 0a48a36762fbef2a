package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kharcha/internal/core"
)

func newLogCommand(opts *globalOptions) *cobra.Command {
	var reason, category string

	cmd := &cobra.Command{
		Use:   "log <amount>",
		Short: "Record a new expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(args[0])
			if err != nil {
				return fmt.Errorf("amount %q: %w", args[0], err)
			}

			svc, _, err := opts.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			rec, err := svc.Create(cmd.Context(), amount, reason, core.Category(category))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s: %s %s\n", rec.TransactionID, core.FormatRupees(rec.Amount), rec.Category)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "what the money was spent on")
	cmd.Flags().StringVar(&category, "category", string(core.Categories[len(core.Categories)-1]),
		"one of "+joinCategories())

	return cmd
}

func newShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <transaction-id>",
		Short: "Print one expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := opts.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			rec, ok, err := svc.FindByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "No record found with transaction id %s\n", args[0])
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Transaction ID:   %s\n", rec.TransactionID)
			fmt.Fprintf(out, "Timestamp:        %s\n", rec.Timestamp.Format(core.TimestampLayout))
			fmt.Fprintf(out, "Expense Amount:   %s\n", core.FormatAmount(rec.Amount))
			fmt.Fprintf(out, "Reason:           %s\n", rec.Reason)
			fmt.Fprintf(out, "Expense Category: %s\n", rec.Category)
			return nil
		},
	}
}

func newUpdateCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <transaction-id> <amount|reason|category> <value>",
		Short: "Overwrite one field of an expense",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := core.ParseField(args[1])
			if err != nil {
				return fmt.Errorf("field %q: %w", args[1], err)
			}

			svc, _, err := opts.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			m, err := svc.UpdateField(cmd.Context(), args[0], field, args[2])
			if err != nil {
				return err
			}
			if m.NoMatch() {
				fmt.Fprintf(cmd.ErrOrStderr(), "No record matched transaction id %s, nothing was updated\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated for %s\n", field.Label(), args[0])
			return nil
		},
	}
}

func newDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transaction-id>",
		Short: "Delete one expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := opts.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			m, err := svc.DeleteByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if m.NoMatch() {
				fmt.Fprintf(cmd.ErrOrStderr(), "No record matched transaction id %s, nothing was deleted\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted record %s\n", args[0])
			return nil
		},
	}
}

func joinCategories() string {
	names := make([]string, len(core.Categories))
	for i, c := range core.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
