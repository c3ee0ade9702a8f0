package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/mwrz/moneybook"
)

type addBudgetCmd struct {
	name     string
	category string
	currency string
}

func (*addBudgetCmd) Name() string     { return "add-budget" }
func (*addBudgetCmd) Synopsis() string { return "create a new budget" }
func (*addBudgetCmd) Usage() string {
	return `add-budget -name <name> -category <income|expense> -currency <ccy>

  Creates a budget that entries can be attributed to.
`
}

func (c *addBudgetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "budget name")
	f.StringVar(&c.category, "category", "expense", "budget category")
	f.StringVar(&c.currency, "currency", "", "budget currency (ISO 4217)")
}

func (c *addBudgetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	category, err := moneybook.ParseBudgetCategory(c.category)
	if err != nil {
		return fail(err)
	}
	ledger, store, _, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	b, err := ledger.CreateBudget(c.name, category, c.currency)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("created budget %s (%s, %s) id=%s\n", b.Name, b.Category, b.Currency, b.ID)
	return subcommands.ExitSuccess
}

type budgetsCmd struct{}

func (*budgetsCmd) Name() string             { return "budgets" }
func (*budgetsCmd) Synopsis() string         { return "list budgets" }
func (*budgetsCmd) Usage() string            { return "budgets\n\n  Lists all budgets.\n" }
func (*budgetsCmd) SetFlags(f *flag.FlagSet) {}

func (c *budgetsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, store, _, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	budgets, err := store.Budgets()
	if err != nil {
		return fail(err)
	}
	for _, b := range budgets {
		archived := ""
		if b.IsArchived {
			archived = " (archived)"
		}
		fmt.Printf("%s\t%s\t%s\t%s%s\n", b.ID, b.Category, b.Name, b.Currency, archived)
	}
	return subcommands.ExitSuccess
}

type deleteBudgetCmd struct {
	id string
}

func (*deleteBudgetCmd) Name() string     { return "delete-budget" }
func (*deleteBudgetCmd) Synopsis() string { return "delete a budget without entries" }
func (*deleteBudgetCmd) Usage() string {
	return `delete-budget -id <id>

  Deletes a budget. Fails while ledger entries still reference it.
`
}

func (c *deleteBudgetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "budget id")
}

func (c *deleteBudgetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		fmt.Fprintln(os.Stderr, "-id is required")
		return subcommands.ExitUsageError
	}
	ledger, store, _, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	if err := ledger.DeleteBudget(c.id); err != nil {
		return fail(err)
	}
	fmt.Printf("deleted budget %s\n", c.id)
	return subcommands.ExitSuccess
}
