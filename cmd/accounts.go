package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/mwrz/moneybook"
)

type addAccountCmd struct {
	name     string
	typ      string
	currency string
	networth bool
}

func (*addAccountCmd) Name() string     { return "add-account" }
func (*addAccountCmd) Synopsis() string { return "create a new account" }
func (*addAccountCmd) Usage() string {
	return `add-account -name <name> -type <asset|liability|income|expense|equity> -currency <ccy> [-networth]

  Creates an account. The currency is immutable after creation.
`
}

func (c *addAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "account name")
	f.StringVar(&c.typ, "type", "", "account type")
	f.StringVar(&c.currency, "currency", "", "native currency (ISO 4217)")
	f.BoolVar(&c.networth, "networth", false, "include in net worth")
}

func (c *addAccountCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	typ, err := moneybook.ParseAccountType(c.typ)
	if err != nil {
		return fail(err)
	}
	ledger, store, _, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	a, err := ledger.CreateAccount(c.name, typ, c.currency, c.networth)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("created account %s (%s, %s) id=%s\n", a.Name, a.Type, a.Currency, a.ID)
	return subcommands.ExitSuccess
}

type accountsCmd struct {
	all bool
}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts with balances" }
func (*accountsCmd) Usage() string {
	return `accounts [-all]

  Lists accounts and their current balances. Archived accounts are hidden
  unless -all is given.
`
}

func (c *accountsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "include archived accounts")
}

func (c *accountsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, store, _, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	accounts, err := store.Accounts()
	if err != nil {
		return fail(err)
	}
	for _, a := range accounts {
		if a.IsArchived && !c.all {
			continue
		}
		balance, err := ledger.Balances().AccountBalance(a.ID)
		if err != nil {
			return fail(err)
		}
		archived := ""
		if a.IsArchived {
			archived = " (archived)"
		}
		fmt.Printf("%s\t%s\t%s\t%s%s\n", a.ID, a.Type, a.Name, moneybook.FormatAmount(balance, a.Currency), archived)
	}
	return subcommands.ExitSuccess
}

type archiveAccountCmd struct {
	id string
}

func (*archiveAccountCmd) Name() string     { return "archive-account" }
func (*archiveAccountCmd) Synopsis() string { return "archive an account" }
func (*archiveAccountCmd) Usage() string {
	return `archive-account -id <id>

  Marks an account archived; its entries and balances are untouched.
`
}

func (c *archiveAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "account id")
}

func (c *archiveAccountCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		fmt.Fprintln(os.Stderr, "-id is required")
		return subcommands.ExitUsageError
	}
	ledger, store, _, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	if _, err := ledger.ArchiveAccount(c.id); err != nil {
		return fail(err)
	}
	fmt.Printf("archived account %s\n", c.id)
	return subcommands.ExitSuccess
}

type deleteAccountCmd struct {
	id string
}

func (*deleteAccountCmd) Name() string     { return "delete-account" }
func (*deleteAccountCmd) Synopsis() string { return "delete an account without entries" }
func (*deleteAccountCmd) Usage() string {
	return `delete-account -id <id>

  Deletes an account. Fails while ledger entries still reference it;
  archive the account instead in that case.
`
}

func (c *deleteAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "account id")
}

func (c *deleteAccountCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		fmt.Fprintln(os.Stderr, "-id is required")
		return subcommands.ExitUsageError
	}
	ledger, store, _, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	if err := ledger.DeleteAccount(c.id); err != nil {
		return fail(err)
	}
	fmt.Printf("deleted account %s\n", c.id)
	return subcommands.ExitSuccess
}
