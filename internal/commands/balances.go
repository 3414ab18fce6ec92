package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/spendboard/internal/calculator"
	"github.com/mmynk/spendboard/internal/currency"
	"github.com/mmynk/spendboard/internal/models"
	"github.com/mmynk/spendboard/internal/storage"
)

func newBalancesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balances [group-id]",
		Short: "Print net balances for one group, or across all groups",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID := ""
			if len(args) == 1 {
				groupID = args[0]
			}
			return a.runBalances(cmd, groupID)
		},
	}
}

func (a *app) runBalances(cmd *cobra.Command, groupID string) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if groupID == "" {
		groups, err := store.ListGroups(ctx)
		if err != nil {
			return fmt.Errorf("loading groups: %w", err)
		}
		expenses, err := store.ListExpenses(ctx, storage.ExpenseFilter{})
		if err != nil {
			return fmt.Errorf("loading expenses: %w", err)
		}
		var grouped []models.Expense
		for _, e := range expenses {
			if e.GroupID != "" {
				grouped = append(grouped, e)
			}
		}
		code := currency.Resolve(grouped, a.cfg.Engine.Fallback())
		return printBalances(cmd, calculator.OverallBalances(groups, grouped), code)
	}

	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("loading group %s: %w", groupID, err)
	}
	expenses, err := store.ListExpenses(ctx, storage.ExpenseFilter{GroupID: groupID})
	if err != nil {
		return fmt.Errorf("loading expenses: %w", err)
	}
	fallback := group.Currency
	if fallback == "" {
		fallback = a.cfg.Engine.Fallback()
	}
	code := currency.Resolve(expenses, fallback)
	balances := calculator.GroupBalances(*group, expenses)

	fmt.Fprintf(out, "%s\n\n", group.Name)
	if err := printBalances(cmd, balances, code); err != nil {
		return err
	}

	edges := calculator.SuggestSettlements(balances)
	if len(edges) == 0 {
		fmt.Fprintln(out, "\nAll settled up.")
		return nil
	}
	names := make(map[string]string, len(balances))
	for _, b := range balances {
		names[b.MemberID] = b.Name
		names[b.Name] = b.Name
	}
	fmt.Fprintln(out, "\nSettlements:")
	for _, e := range edges {
		fmt.Fprintf(out, "  %s pays %s %s\n", names[e.From], names[e.To], currency.Format(e.Amount, code))
	}
	return nil
}

func printBalances(cmd *cobra.Command, balances []calculator.MemberBalance, code string) error {
	if len(balances) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No balances.")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MEMBER\tPAID\tSHARE\tNET")
	for _, b := range balances {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			b.Name,
			currency.Format(b.TotalPaid, code),
			currency.Format(b.TotalOwed, code),
			currency.Format(b.Net, code),
		)
	}
	return w.Flush()
}
