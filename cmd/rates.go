package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/mwrz/moneybook"
)

type setRateCmd struct {
	from string
	to   string
	date string
	rate string
}

func (*setRateCmd) Name() string     { return "set-rate" }
func (*setRateCmd) Synopsis() string { return "record a manual exchange rate" }
func (*setRateCmd) Usage() string {
	return `set-rate -from <ccy> -to <ccy> -rate <decimal> [-date <yyyy-mm-dd>]

  Records a manual rate snapshot for one day. Only a snapshot with the same
  (from, to, date) is replaced; other days are never touched.
`
}

func (c *setRateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "source currency")
	f.StringVar(&c.to, "to", "", "target currency")
	f.StringVar(&c.date, "date", "", "rate date (default today)")
	f.StringVar(&c.rate, "rate", "", "conversion rate")
}

func (c *setRateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rate, err := decimal.NewFromString(c.rate)
	if err != nil {
		return fail(fmt.Errorf("invalid rate %q: %w", c.rate, err))
	}
	on := moneybook.Today()
	if c.date != "" {
		if on, err = moneybook.ParseDate(c.date); err != nil {
			return fail(err)
		}
	}
	ledger, store, _, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	r, err := ledger.PutRate(c.from, c.to, on, rate, moneybook.SourceManual)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("recorded %s = %s\n", r.Key(), r.Rate)
	return subcommands.ExitSuccess
}

type fetchRatesCmd struct {
	from string
	to   string
	date string
	url  string
}

func (*fetchRatesCmd) Name() string     { return "fetch-rates" }
func (*fetchRatesCmd) Synopsis() string { return "fetch daily rates from the rate feed" }
func (*fetchRatesCmd) Usage() string {
	return `fetch-rates -from <ccy> -to <ccy,ccy,...> [-date <yyyy-mm-dd>] [-url <feed>]

  Fetches daily reference rates from a frankfurter-compatible feed and
  stores them with source "api".
`
}

func (c *fetchRatesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "source currency")
	f.StringVar(&c.to, "to", "", "comma separated target currencies")
	f.StringVar(&c.date, "date", "", "quote date (default today)")
	f.StringVar(&c.url, "url", "", "rate feed base URL")
}

func (c *fetchRatesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on := moneybook.Today()
	if c.date != "" {
		var err error
		if on, err = moneybook.ParseDate(c.date); err != nil {
			return fail(err)
		}
	}
	targets := strings.Split(c.to, ",")
	feed := moneybook.NewRateFeed(nil, c.url)
	rates, err := feed.DailyRates(c.from, targets, on)
	if err != nil {
		return fail(err)
	}

	ledger, store, _, err := openLedger()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	for _, r := range rates {
		if _, err := ledger.PutRate(r.From, r.To, r.Date, r.Rate, r.Source); err != nil {
			return fail(err)
		}
		fmt.Printf("fetched %s = %s\n", r.Key(), r.Rate)
	}
	return subcommands.ExitSuccess
}
