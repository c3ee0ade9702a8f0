package moneybook

import (
	"errors"
	"testing"
)

func TestFindRateIdentity(t *testing.T) {
	r := NewRateResolver(NewMemStore())
	for _, ccy := range []string{"EUR", "USD", "JPY"} {
		rate, ok, err := r.FindRate(ccy, ccy, MustParseDate("2026-02-01"))
		if err != nil || !ok {
			t.Fatalf("FindRate(%s,%s): ok=%v err=%v", ccy, ccy, ok, err)
		}
		if !rate.Equal(dec("1")) {
			t.Errorf("FindRate(%s,%s) = %s, want 1", ccy, ccy, rate)
		}
	}
}

func TestFindRatePicksMostRecentOnOrBefore(t *testing.T) {
	l := testLedger(t)
	mustRate(t, l, "USD", "EUR", "2026-01-01", "0.80")
	mustRate(t, l, "USD", "EUR", "2026-01-15", "0.85")
	mustRate(t, l, "USD", "EUR", "2026-02-01", "0.90")

	testCases := []struct {
		on     string
		want   string
		wantOK bool
	}{
		{"2025-12-31", "", false},
		{"2026-01-01", "0.80", true},
		{"2026-01-14", "0.80", true},
		{"2026-01-15", "0.85", true},
		{"2026-01-31", "0.85", true},
		{"2026-02-01", "0.90", true},
		{"2026-06-01", "0.90", true},
	}
	for _, tc := range testCases {
		rate, ok, err := l.Rates().FindRate("USD", "EUR", MustParseDate(tc.on))
		if err != nil {
			t.Fatalf("FindRate on %s: %v", tc.on, err)
		}
		if ok != tc.wantOK {
			t.Errorf("FindRate on %s: ok=%v, want %v", tc.on, ok, tc.wantOK)
			continue
		}
		if ok && !rate.Equal(dec(tc.want)) {
			t.Errorf("FindRate on %s = %s, want %s", tc.on, rate, tc.want)
		}
	}
}

func TestFindRateIsDirectional(t *testing.T) {
	l := testLedger(t)
	mustRate(t, l, "USD", "EUR", "2026-01-01", "0.85")

	_, ok, err := l.Rates().FindRate("EUR", "USD", MustParseDate("2026-01-02"))
	if err != nil {
		t.Fatalf("FindRate: %v", err)
	}
	if ok {
		t.Fatal("EUR/USD resolved from a USD/EUR snapshot; rates must not be inverted implicitly")
	}
}

func TestFreezeRates(t *testing.T) {
	l := testLedger(t)
	mustRate(t, l, "USD", "EUR", "2026-01-01", "0.85")
	mustRate(t, l, "USD", "GBP", "2026-01-01", "0.75")
	on := MustParseDate("2026-02-01")

	t.Run("account only", func(t *testing.T) {
		fr, err := l.Rates().FreezeRates("USD", "EUR", "", on)
		if err != nil {
			t.Fatalf("FreezeRates: %v", err)
		}
		if !fr.DisplayToAccount.Equal(dec("0.85")) {
			t.Errorf("DisplayToAccount = %s, want 0.85", fr.DisplayToAccount)
		}
		if fr.DisplayToBudget != nil {
			t.Errorf("DisplayToBudget = %s, want nil", fr.DisplayToBudget)
		}
	})

	t.Run("account and budget", func(t *testing.T) {
		fr, err := l.Rates().FreezeRates("USD", "EUR", "GBP", on)
		if err != nil {
			t.Fatalf("FreezeRates: %v", err)
		}
		if fr.DisplayToBudget == nil || !fr.DisplayToBudget.Equal(dec("0.75")) {
			t.Errorf("DisplayToBudget = %v, want 0.75", fr.DisplayToBudget)
		}
	})

	t.Run("missing account rate is fatal", func(t *testing.T) {
		_, err := l.Rates().FreezeRates("USD", "CHF", "", on)
		if !errors.Is(err, ErrRateNotFound) {
			t.Fatalf("got %v, want ErrRateNotFound", err)
		}
	})

	t.Run("missing budget rate fails the whole bundle", func(t *testing.T) {
		_, err := l.Rates().FreezeRates("USD", "EUR", "CHF", on)
		if !errors.Is(err, ErrRateNotFound) {
			t.Fatalf("got %v, want ErrRateNotFound", err)
		}
	})
}

func TestPutRateReplacesSameKeyOnly(t *testing.T) {
	l := testLedger(t)
	mustRate(t, l, "USD", "EUR", "2026-01-01", "0.80")
	mustRate(t, l, "USD", "EUR", "2026-01-02", "0.81")
	mustRate(t, l, "USD", "EUR", "2026-01-01", "0.79") // replace day one

	rates, err := l.Store().RatesFor("USD", "EUR")
	if err != nil {
		t.Fatalf("RatesFor: %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(rates))
	}
	if !rates[0].Rate.Equal(dec("0.79")) || !rates[1].Rate.Equal(dec("0.81")) {
		t.Errorf("snapshots = %s, %s; want 0.79, 0.81", rates[0].Rate, rates[1].Rate)
	}

	r, err := l.GetRate("USD", "EUR", MustParseDate("2026-01-01"))
	if err != nil {
		t.Fatalf("GetRate: %v", err)
	}
	if !r.Rate.Equal(dec("0.79")) {
		t.Errorf("GetRate = %s, want 0.79", r.Rate)
	}
}
