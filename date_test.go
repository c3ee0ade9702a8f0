package moneybook

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2026-02-01", want: NewDate(2026, time.February, 1)},
		{in: "2026-2-1", want: NewDate(2026, time.February, 1)},
		{in: "2025-12-31", want: NewDate(2025, time.December, 31)},
		{in: "not-a-date", wantErr: true},
		{in: "2026/02/01", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := ParseDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q): want error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDateAddNormalizes(t *testing.T) {
	d := NewDate(2026, time.February, 28)
	if got := d.Add(1); got != NewDate(2026, time.March, 1) {
		t.Errorf("2026-02-28 + 1 = %v, want 2026-03-01", got)
	}
	if got := d.Add(-28); got != NewDate(2026, time.January, 31) {
		t.Errorf("2026-02-28 - 28 = %v, want 2026-01-31", got)
	}
}

func TestDateOrdering(t *testing.T) {
	a := MustParseDate("2026-01-15")
	b := MustParseDate("2026-01-16")
	if !a.Before(b) || b.Before(a) {
		t.Errorf("Before is wrong for %v and %v", a, b)
	}
	if !b.After(a) || a.After(b) {
		t.Errorf("After is wrong for %v and %v", a, b)
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("Compare is wrong for %v and %v", a, b)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := MustParseDate("2026-02-01")
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"2026-02-01"` {
		t.Errorf("marshal = %s, want \"2026-02-01\"", raw)
	}
	var got Date
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != d {
		t.Errorf("round trip = %v, want %v", got, d)
	}
}

func TestRangeContains(t *testing.T) {
	r := NewRange(MustParseDate("2026-01-10"), MustParseDate("2026-01-20"))
	testCases := []struct {
		date string
		want bool
	}{
		{"2026-01-09", false},
		{"2026-01-10", true},
		{"2026-01-15", true},
		{"2026-01-20", true},
		{"2026-01-21", false},
	}
	for _, tc := range testCases {
		if got := r.Contains(MustParseDate(tc.date)); got != tc.want {
			t.Errorf("Contains(%s) = %v, want %v", tc.date, got, tc.want)
		}
	}
}

func TestNewRangeSwaps(t *testing.T) {
	r := NewRange(MustParseDate("2026-01-20"), MustParseDate("2026-01-10"))
	if r.From != MustParseDate("2026-01-10") || r.To != MustParseDate("2026-01-20") {
		t.Errorf("NewRange did not swap: %v", r)
	}
}
