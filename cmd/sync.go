package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/mwrz/moneybook"
	"github.com/mwrz/moneybook/remote"
)

type syncCmd struct {
	url      string
	database string
}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "reconcile with the remote replica" }
func (*syncCmd) Usage() string {
	return `sync [-url <base>] [-database <name>]

  Runs one sync cycle against the configured remote replica: uploads local
  changes, downloads remote ones, and resolves conflicts last-write-wins.
`
}

func (c *syncCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.url, "url", "", "remote base URL (default from config)")
	f.StringVar(&c.database, "database", "", "remote database name (default from config)")
}

func (c *syncCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, store, cfg, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	url := c.url
	if url == "" {
		url = cfg.Remote.URL
	}
	database := c.database
	if database == "" {
		database = cfg.Remote.Database
	}
	if url == "" || database == "" {
		fmt.Fprintln(os.Stderr, "remote url and database must be set (flags or config)")
		return subcommands.ExitUsageError
	}

	timeout := time.Duration(cfg.Remote.TimeoutSeconds) * time.Second
	replica, err := remote.New(url, database, cfg.Remote.Token, timeout)
	if err != nil {
		return fail(err)
	}

	engine := moneybook.NewSyncEngine(store, replica, newLogger())
	stats, err := engine.Sync(ctx)
	if err != nil {
		return fail(err)
	}
	status := engine.Status()
	fmt.Printf("sync %s: uploaded %d, downloaded %d, conflicts %d, errors %d\n",
		status.State, stats.Uploaded, stats.Downloaded, stats.Conflicts, stats.Errors)
	if status.LastError != "" {
		fmt.Fprintf(os.Stderr, "warning: %s\n", status.LastError)
	}
	return subcommands.ExitSuccess
}
