package moneybook

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDailyRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2026-02-01" {
			t.Errorf("path = %q, want /2026-02-01", r.URL.Path)
		}
		if got := r.URL.Query().Get("from"); got != "USD" {
			t.Errorf("from = %q", got)
		}
		if got := r.URL.Query().Get("to"); got != "EUR,GBP" {
			t.Errorf("to = %q", got)
		}
		// The feed quotes the previous trading day.
		w.Write([]byte(`{"amount":1.0,"base":"USD","date":"2026-01-30","rates":{"EUR":0.85,"GBP":0.75}}`))
	}))
	defer srv.Close()

	feed := NewRateFeed(srv.Client(), srv.URL)
	rates, err := feed.DailyRates("USD", []string{"EUR", "GBP"}, MustParseDate("2026-02-01"))
	if err != nil {
		t.Fatalf("DailyRates: %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("got %d rates, want 2", len(rates))
	}
	for i, want := range []struct {
		to, rate string
	}{{"EUR", "0.85"}, {"GBP", "0.75"}} {
		r := rates[i]
		if r.From != "USD" || r.To != want.to {
			t.Errorf("rate %d pair = %s/%s", i, r.From, r.To)
		}
		if !r.Rate.Equal(dec(want.rate)) {
			t.Errorf("rate %d = %s, want %s", i, r.Rate, want.rate)
		}
		if r.Date != MustParseDate("2026-01-30") {
			t.Errorf("rate %d dated %s, want the feed's quoted date", i, r.Date)
		}
		if r.Source != SourceAPI {
			t.Errorf("rate %d source = %s, want api", i, r.Source)
		}
	}
}

func TestDailyRatesMissingQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"date":"2026-01-30","rates":{"EUR":0.85}}`))
	}))
	defer srv.Close()

	feed := NewRateFeed(srv.Client(), srv.URL)
	if _, err := feed.DailyRates("USD", []string{"GBP"}, MustParseDate("2026-02-01")); err == nil {
		t.Fatal("missing quote not reported")
	}
}

func TestDailyRatesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	feed := NewRateFeed(srv.Client(), srv.URL)
	if _, err := feed.DailyRates("USD", []string{"EUR"}, MustParseDate("2026-02-01")); err == nil {
		t.Fatal("server error not reported")
	}
}

func TestDailyRatesRejectsBadCurrency(t *testing.T) {
	feed := NewRateFeed(nil, "http://unreachable.invalid")
	if _, err := feed.DailyRates("dollars", nil, MustParseDate("2026-02-01")); err == nil {
		t.Fatal("invalid base currency accepted")
	}
}
