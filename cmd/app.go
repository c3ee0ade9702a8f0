// Package cmd implements the mbk command line, one subcommand per verb in
// the style of google/subcommands.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/mwrz/moneybook"
	"github.com/mwrz/moneybook/badgerstore"
)

var configPath = flag.String("config", "", "path to the config file (default: moneybook.yaml in the working directory)")
var verbose = flag.Bool("v", false, "verbose logging")

// Register registers all subcommands on the commander.
func Register(c *subcommands.Commander) {
	c.Register(&addAccountCmd{}, "accounts")
	c.Register(&accountsCmd{}, "accounts")
	c.Register(&archiveAccountCmd{}, "accounts")
	c.Register(&deleteAccountCmd{}, "accounts")

	c.Register(&addBudgetCmd{}, "budgets")
	c.Register(&budgetsCmd{}, "budgets")
	c.Register(&deleteBudgetCmd{}, "budgets")

	c.Register(&setRateCmd{}, "rates")
	c.Register(&fetchRatesCmd{}, "rates")

	c.Register(&incomeCmd{}, "transactions")
	c.Register(&expenseCmd{}, "transactions")
	c.Register(&transferCmd{}, "transactions")
	c.Register(&splitCmd{}, "transactions")

	c.Register(&balanceCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
	c.Register(&budgetTotalCmd{}, "reports")
	c.Register(&networthCmd{}, "reports")

	c.Register(&syncCmd{}, "sync")
}

// openLedger opens the persistent store and the ledger service over it.
// The caller must Close the returned store.
func openLedger() (*moneybook.Ledger, moneybook.Store, *Config, error) {
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	store, err := badgerstore.Open(filepath.Join(cfg.DataDir, "ledger"))
	if err != nil {
		return nil, nil, nil, err
	}
	ledger, err := moneybook.Open(store)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return ledger, store, &cfg, nil
}

// newLogger builds the CLI logger; -v switches to development output.
func newLogger() *zap.Logger {
	if *verbose {
		log, err := zap.NewDevelopment()
		if err == nil {
			return log
		}
	}
	return zap.NewNop()
}

// fail prints an error to stderr and returns the failure exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
