package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/mwrz/moneybook"
)

type balanceCmd struct {
	account string
	date    string
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "display an account balance" }
func (*balanceCmd) Usage() string {
	return `balance -account <id> [-date <yyyy-mm-dd>]

  Displays the balance of an account, optionally as of a past date.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "account id")
	f.StringVar(&c.date, "date", "", "balance as of this date (default: all entries)")
}

func (c *balanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		fmt.Fprintln(os.Stderr, "-account is required")
		return subcommands.ExitUsageError
	}
	ledger, store, _, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	account, err := store.Account(c.account)
	if err != nil {
		return fail(err)
	}
	balance := ledger.Balances()
	var value = moneybook.FormatAmount
	if c.date == "" {
		b, err := balance.AccountBalance(c.account)
		if err != nil {
			return fail(err)
		}
		fmt.Printf("%s\t%s\n", account.Name, value(b, account.Currency))
		return subcommands.ExitSuccess
	}
	on, err := moneybook.ParseDate(c.date)
	if err != nil {
		return fail(err)
	}
	b, err := balance.AccountBalanceAtDate(c.account, on)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("%s\t%s\t%s\n", account.Name, on, value(b, account.Currency))
	return subcommands.ExitSuccess
}

type historyCmd struct {
	account string
	from    string
	to      string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display an account's balance history" }
func (*historyCmd) Usage() string {
	return `history -account <id> -from <yyyy-mm-dd> [-to <yyyy-mm-dd>]

  Displays the running balance of an account, one line per day with
  activity.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "account id")
	f.StringVar(&c.from, "from", "", "start date")
	f.StringVar(&c.to, "to", "", "end date (default today)")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" || c.from == "" {
		fmt.Fprintln(os.Stderr, "-account and -from are required")
		return subcommands.ExitUsageError
	}
	from, err := moneybook.ParseDate(c.from)
	if err != nil {
		return fail(err)
	}
	to := moneybook.Today()
	if c.to != "" {
		if to, err = moneybook.ParseDate(c.to); err != nil {
			return fail(err)
		}
	}
	ledger, store, _, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	account, err := store.Account(c.account)
	if err != nil {
		return fail(err)
	}
	points, err := ledger.Balances().BalanceHistory(c.account, from, to)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Date\t\tBalance\n")
	for _, p := range points {
		fmt.Printf("%s\t%s\n", p.Date, moneybook.FormatAmount(p.Balance, account.Currency))
	}
	return subcommands.ExitSuccess
}

type budgetTotalCmd struct {
	budget string
	from   string
	to     string
}

func (*budgetTotalCmd) Name() string     { return "budget-total" }
func (*budgetTotalCmd) Synopsis() string { return "display a budget's total over a period" }
func (*budgetTotalCmd) Usage() string {
	return `budget-total -budget <id> -from <yyyy-mm-dd> [-to <yyyy-mm-dd>]

  Sums the budget-currency amounts attributed to a budget over a period.
`
}

func (c *budgetTotalCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.budget, "budget", "", "budget id")
	f.StringVar(&c.from, "from", "", "start date")
	f.StringVar(&c.to, "to", "", "end date (default today)")
}

func (c *budgetTotalCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.budget == "" || c.from == "" {
		fmt.Fprintln(os.Stderr, "-budget and -from are required")
		return subcommands.ExitUsageError
	}
	from, err := moneybook.ParseDate(c.from)
	if err != nil {
		return fail(err)
	}
	to := moneybook.Today()
	if c.to != "" {
		if to, err = moneybook.ParseDate(c.to); err != nil {
			return fail(err)
		}
	}
	ledger, store, _, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	budget, err := store.Budget(c.budget)
	if err != nil {
		return fail(err)
	}
	total, err := ledger.Balances().BudgetTotal(c.budget, from, to)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("%s\t%s .. %s\t%s\n", budget.Name, from, to, moneybook.FormatAmount(total, budget.Currency))
	return subcommands.ExitSuccess
}

type networthCmd struct {
	currency string
}

func (*networthCmd) Name() string     { return "networth" }
func (*networthCmd) Synopsis() string { return "display net worth in one currency" }
func (*networthCmd) Usage() string {
	return `networth [-currency <ccy>]

  Sums asset balances and subtracts liabilities, converted at current
  rates. Accounts without a current rate are reported, not silently
  dropped.
`
}

func (c *networthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "display currency (default from config)")
}

func (c *networthCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, store, cfg, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	currency := c.currency
	if currency == "" {
		currency = cfg.DefaultCurrency
	}
	result, err := ledger.Balances().NetWorth(currency)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("net worth: %s\n", moneybook.FormatAmount(result.Value, result.Currency))
	if len(result.SkippedAccounts) > 0 {
		fmt.Fprintf(os.Stderr, "warning: partial result, no current rate for accounts: %s\n",
			strings.Join(result.SkippedAccounts, ", "))
	}
	return subcommands.ExitSuccess
}
