package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/spendboard/internal/aggregate"
	"github.com/mmynk/spendboard/internal/storage"
)

func newExportCommand(a *app) *cobra.Command {
	var month, owner, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one month of spending as a pivoted CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd, month, owner, output)
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to export as YYYY-MM (default current month)")
	cmd.Flags().StringVar(&owner, "owner", "", "only include expenses created by this user ID")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")

	return cmd
}

func (a *app) runExport(cmd *cobra.Command, month, owner, output string) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	expenses, err := store.ListExpenses(context.Background(), storage.ExpenseFilter{CreatedBy: owner})
	if err != nil {
		return fmt.Errorf("loading expenses: %w", err)
	}
	table := aggregate.BuildMonthTable(expenses, a.cfg.Engine, month, owner)

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}
	if err := aggregate.WriteMonthCSV(w, table); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s (%d days) to %s\n", table.MonthLabel, len(table.Rows), output)
	}
	return nil
}
