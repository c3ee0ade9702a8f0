package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mwrz/moneybook"
)

func TestNewRejectsBadURL(t *testing.T) {
	testCases := []string{"", "not-a-url", "://missing-scheme"}
	for _, raw := range testCases {
		if _, err := New(raw, "ledger", "", 0); err == nil {
			t.Errorf("New(%q) accepted an invalid url", raw)
		}
	}
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/ledger/entries/e1", r.URL.Path)
		require.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":"e1","description":"coffee"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "ledger", "s3cret", time.Second)
	require.NoError(t, err)

	doc, err := c.Get(context.Background(), moneybook.CollectionEntries, "e1")
	require.NoError(t, err)
	var got struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(doc, &got))
	require.Equal(t, "e1", got.ID)
}

func TestGetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "ledger", "", time.Second)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), moneybook.CollectionEntries, "missing")
	require.ErrorIs(t, err, moneybook.ErrNotFound)
}

func TestSet(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/ledger/accounts/a1", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "ledger", "", time.Second)
	require.NoError(t, err)

	doc := map[string]string{"id": "a1", "name": "Checking"}
	require.NoError(t, c.Set(context.Background(), moneybook.CollectionAccounts, "a1", doc))

	var round map[string]string
	require.NoError(t, json.Unmarshal(gotBody, &round))
	require.Equal(t, doc, round)
}

func TestSetServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "ledger", "", time.Second)
	require.NoError(t, err)
	err = c.Set(context.Background(), moneybook.CollectionAccounts, "a1", map[string]string{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "500")
}

func TestQuery(t *testing.T) {
	cutoff := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ledger/entries", r.URL.Path)
		require.Equal(t, cutoff.Format(time.RFC3339Nano), r.URL.Query().Get("updated_at_gt"))
		w.Write([]byte(`{"docs":[{"id":"e1"},{"id":"e2"}]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "ledger", "", time.Second)
	require.NoError(t, err)

	docs, err := c.Query(context.Background(), moneybook.CollectionEntries, cutoff)
	require.NoError(t, err)
	require.Len(t, docs, 2)
}

func TestQueryEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"docs":[]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "ledger", "", time.Second)
	require.NoError(t, err)

	docs, err := c.Query(context.Background(), moneybook.CollectionEntries, time.Time{})
	require.NoError(t, err)
	require.Empty(t, docs)
}
