package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/mwrz/moneybook"
)

// txFlags are the fields shared by all transaction subcommands.
type txFlags struct {
	date        string
	description string
	amount      string
	currency    string
	status      string
}

func (t *txFlags) set(f *flag.FlagSet) {
	f.StringVar(&t.date, "date", "", "transaction date (default today)")
	f.StringVar(&t.description, "d", "", "description")
	f.StringVar(&t.amount, "amount", "", "amount in the display currency")
	f.StringVar(&t.currency, "currency", "", "display currency (default from config)")
	f.StringVar(&t.status, "status", "", "projected or confirmed (default confirmed)")
}

func (t *txFlags) parse(cfg *Config) (on moneybook.Date, amount decimal.Decimal, currency string, status moneybook.EntryStatus, err error) {
	on = moneybook.Today()
	if t.date != "" {
		if on, err = moneybook.ParseDate(t.date); err != nil {
			return
		}
	}
	if t.amount != "" {
		if amount, err = decimal.NewFromString(t.amount); err != nil {
			err = fmt.Errorf("invalid amount %q: %w", t.amount, err)
			return
		}
	}
	currency = t.currency
	if currency == "" {
		currency = cfg.DefaultCurrency
	}
	status = moneybook.EntryStatus(t.status)
	return
}

func printLegs(entries []moneybook.LedgerEntry) {
	fmt.Printf("transaction %s\n", entries[0].TransactionID)
	for _, e := range entries {
		fmt.Printf("  leg %d: account %s %s (display %s %s)\n",
			e.Index, e.AccountID, e.AmountAccount, e.AmountDisplay, e.CurrencyDisplay)
	}
}

type incomeCmd struct {
	txFlags
	incomeAccount string
	assetAccount  string
	budget        string
}

func (*incomeCmd) Name() string     { return "income" }
func (*incomeCmd) Synopsis() string { return "record an income transaction" }
func (*incomeCmd) Usage() string {
	return `income -amount <n> -from <income-account> -to <asset-account> [-budget <id>] [-currency <ccy>] [-date <yyyy-mm-dd>] [-d <description>]

  Records income: the asset account gains the amount, the income account
  balances it. Rates are frozen at creation time.
`
}

func (c *incomeCmd) SetFlags(f *flag.FlagSet) {
	c.txFlags.set(f)
	f.StringVar(&c.incomeAccount, "from", "", "income account id")
	f.StringVar(&c.assetAccount, "to", "", "asset account id")
	f.StringVar(&c.budget, "budget", "", "budget id")
}

func (c *incomeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, store, cfg, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	on, amount, currency, status, err := c.parse(cfg)
	if err != nil {
		return fail(err)
	}
	entries, err := ledger.Income(on, c.description, amount, currency, c.incomeAccount, c.assetAccount, c.budget, status)
	if err != nil {
		return fail(err)
	}
	printLegs(entries)
	return subcommands.ExitSuccess
}

type expenseCmd struct {
	txFlags
	expenseAccount string
	assetAccount   string
	budget         string
}

func (*expenseCmd) Name() string     { return "expense" }
func (*expenseCmd) Synopsis() string { return "record an expense transaction" }
func (*expenseCmd) Usage() string {
	return `expense -amount <n> -to <expense-account> -from <asset-account> [-budget <id>] [-currency <ccy>] [-date <yyyy-mm-dd>] [-d <description>]

  Records an expense: the expense account gains the amount, the asset
  account loses it.
`
}

func (c *expenseCmd) SetFlags(f *flag.FlagSet) {
	c.txFlags.set(f)
	f.StringVar(&c.expenseAccount, "to", "", "expense account id")
	f.StringVar(&c.assetAccount, "from", "", "asset account id")
	f.StringVar(&c.budget, "budget", "", "budget id")
}

func (c *expenseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, store, cfg, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	on, amount, currency, status, err := c.parse(cfg)
	if err != nil {
		return fail(err)
	}
	entries, err := ledger.Expense(on, c.description, amount, currency, c.expenseAccount, c.assetAccount, c.budget, status)
	if err != nil {
		return fail(err)
	}
	printLegs(entries)
	return subcommands.ExitSuccess
}

type transferCmd struct {
	txFlags
	fromAccount string
	toAccount   string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "record a transfer between accounts" }
func (*transferCmd) Usage() string {
	return `transfer -amount <n> -from <account> -to <account> [-currency <ccy>] [-date <yyyy-mm-dd>] [-d <description>]

  Moves value between two accounts. Transfers carry no budget attribution.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	c.txFlags.set(f)
	f.StringVar(&c.fromAccount, "from", "", "source account id")
	f.StringVar(&c.toAccount, "to", "", "destination account id")
}

func (c *transferCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, store, cfg, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	on, amount, currency, status, err := c.parse(cfg)
	if err != nil {
		return fail(err)
	}
	entries, err := ledger.Transfer(on, c.description, amount, currency, c.fromAccount, c.toAccount, status)
	if err != nil {
		return fail(err)
	}
	printLegs(entries)
	return subcommands.ExitSuccess
}

type splitCmd struct {
	txFlags
	legs legList
}

// legList collects repeated -leg flags of the form account:amount[:budget].
type legList []moneybook.Split

func (l *legList) String() string { return fmt.Sprintf("%d legs", len(*l)) }

func (l *legList) Set(s string) error {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("leg %q: want account:amount[:budget]", s)
	}
	amount, err := decimal.NewFromString(parts[1])
	if err != nil {
		return fmt.Errorf("leg %q: invalid amount: %w", s, err)
	}
	sp := moneybook.Split{AccountID: parts[0], Amount: amount}
	if len(parts) == 3 {
		sp.BudgetID = parts[2]
	}
	*l = append(*l, sp)
	return nil
}

func (*splitCmd) Name() string     { return "split" }
func (*splitCmd) Synopsis() string { return "record an arbitrary split transaction" }
func (*splitCmd) Usage() string {
	return `split -leg <account:amount[:budget]> -leg ... [-currency <ccy>] [-date <yyyy-mm-dd>] [-d <description>]

  Records a transaction with one leg per -leg flag. The signed amounts are
  in the display currency and must sum to zero.
`
}

func (c *splitCmd) SetFlags(f *flag.FlagSet) {
	c.txFlags.set(f)
	f.Var(&c.legs, "leg", "one leg, account:amount[:budget]; repeatable")
}

func (c *splitCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if len(c.legs) < 2 {
		fmt.Fprintln(os.Stderr, "at least two -leg flags are required")
		return subcommands.ExitUsageError
	}
	ledger, store, cfg, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	on, _, currency, status, err := c.parse(cfg)
	if err != nil {
		return fail(err)
	}
	entries, err := ledger.MultiSplit(on, c.description, currency, c.legs, status)
	if err != nil {
		return fail(err)
	}
	printLegs(entries)
	return subcommands.ExitSuccess
}
