package moneybook

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// DefaultRateFeedURL is the public frankfurter.app endpoint serving daily
// reference rates.
const DefaultRateFeedURL = "https://api.frankfurter.app"

// RateFeed fetches daily exchange rates from a frankfurter-compatible JSON
// API. Fetched snapshots carry source "api"; manual upserts through the
// ledger carry source "manual".
type RateFeed struct {
	client *http.Client
	base   string
}

// NewRateFeed creates a feed against the given base URL, or the public
// endpoint when base is empty.
func NewRateFeed(client *http.Client, base string) *RateFeed {
	if client == nil {
		client = http.DefaultClient
	}
	if base == "" {
		base = DefaultRateFeedURL
	}
	return &RateFeed{client: client, base: strings.TrimRight(base, "/")}
}

// DailyRates fetches the rates from one base currency into each target
// currency as of the given day. The feed may answer with an earlier date
// (markets close on weekends); the returned snapshots carry the date the
// feed actually quotes.
func (f *RateFeed) DailyRates(from string, to []string, on Date) ([]ExchangeRate, error) {
	if err := ValidateCurrency(from); err != nil {
		return nil, err
	}
	addr := fmt.Sprintf("%s/%s?from=%s&to=%s", f.base, on, url.QueryEscape(from), url.QueryEscape(strings.Join(to, ",")))

	var jobj any
	if err := jwget(f.client, addr, &jobj); err != nil {
		return nil, fmt.Errorf("fetch rates %s: %w", addr, err)
	}

	quoted, err := jsonString(jobj, "$.date")
	if err != nil {
		return nil, fmt.Errorf("rate feed response has no date: %w", err)
	}
	day, err := ParseDate(quoted)
	if err != nil {
		return nil, err
	}

	rates := make([]ExchangeRate, 0, len(to))
	for _, code := range to {
		if err := ValidateCurrency(code); err != nil {
			return nil, err
		}
		jval, err := jsonpath.Get("$.rates."+code, jobj)
		if err != nil {
			return nil, fmt.Errorf("rate feed has no %s/%s quote: %w", from, code, err)
		}
		// jsonpath may hand back a single value or a one-element list.
		if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
			jval = jlist[0]
		}
		val, ok := jval.(float64)
		if !ok {
			return nil, fmt.Errorf("rate feed %s/%s quote is not a number: %v", from, code, jval)
		}
		rate, err := RateFromFloat(val)
		if err != nil {
			return nil, fmt.Errorf("rate feed %s/%s: %w", from, code, err)
		}
		rates = append(rates, ExchangeRate{
			From:   from,
			To:     code,
			Date:   day,
			Rate:   rate,
			Source: SourceAPI,
		})
	}
	return rates, nil
}

func jsonString(jobj any, path string) (string, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return "", err
	}
	s, ok := jval.(string)
	if !ok {
		return "", fmt.Errorf("%s is not a string: %v", path, jval)
	}
	return s, nil
}

// jwget fetches a JSON document into v.
func jwget(client *http.Client, addr string, v any) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s: %s", addr, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
