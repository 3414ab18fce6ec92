package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/spendboard/internal/currency"
	"github.com/mmynk/spendboard/internal/importer"
)

func newImportCommand(a *app) *cobra.Command {
	var owner, code string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a CSV export into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd, args[0], owner, code)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "user ID recorded as the creator of every imported expense")
	cmd.Flags().StringVar(&code, "currency", "", "tag every imported expense with this ISO 4217 code")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func (a *app) runImport(cmd *cobra.Command, path, owner, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code != "" && !currency.Valid(code) {
		return fmt.Errorf("unknown currency %q", code)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	groups, err := store.ListGroups(ctx)
	if err != nil {
		return fmt.Errorf("loading groups: %w", err)
	}

	eng := a.cfg.Engine
	file, res, err := importer.New(eng).Import(filepath.Base(path), string(data), groups, owner)
	if err != nil {
		return err
	}
	expenses := res.Expenses
	if code != "" {
		expenses = importer.WithCurrency(expenses, code, eng.Today())
		file.Currency = code
	}

	if err := store.SaveImport(ctx, &file, expenses); err != nil {
		return fmt.Errorf("saving import: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d expenses from %s (%s layout, %d rows skipped)\n",
		len(expenses), file.Name, res.Schema.Kind, res.Skipped)
	return nil
}
