// Package remote talks to the user-supplied replica: a document store
// reachable over HTTPS exposing one JSON document per entity. The endpoint
// layout is
//
//	GET  {base}/{database}/{collection}/{id}
//	PUT  {base}/{database}/{collection}/{id}
//	GET  {base}/{database}/{collection}?updated_at_gt={RFC3339}
//
// which any small document database or serverless function can provide;
// the replica is bring-your-own, not a fixed managed service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mwrz/moneybook"
)

// Client implements moneybook.Remote over HTTP.
type Client struct {
	base  string
	db    string
	http  *http.Client
	token string
}

var _ moneybook.Remote = (*Client)(nil)

// New creates a client for the database at baseURL. token, when non-empty,
// is sent as a bearer token. The timeout bounds every round trip so no
// sync cycle blocks indefinitely.
func New(baseURL, database, token string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid remote url %q: missing scheme or host", baseURL)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base:  strings.TrimRight(baseURL, "/"),
		db:    database,
		http:  &http.Client{Timeout: timeout},
		token: token,
	}, nil
}

func (c *Client) docURL(collection moneybook.Collection, id string) string {
	return fmt.Sprintf("%s/%s/%s/%s", c.base, url.PathEscape(c.db), collection, url.PathEscape(id))
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	return c.http.Do(req)
}

// Get fetches one document by id. A 404 maps to moneybook.ErrNotFound.
func (c *Client) Get(ctx context.Context, collection moneybook.Collection, id string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.docURL(collection, id), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, moneybook.ErrNotFound)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s/%s: %s", collection, id, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Set writes one document as a full overwrite.
func (c *Client) Set(ctx context.Context, collection moneybook.Collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.docURL(collection, id), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("PUT %s/%s: %s", collection, id, resp.Status)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// Query returns all documents of the collection updated strictly after the
// given time. The response is {"docs": [ ... ]}.
func (c *Client) Query(ctx context.Context, collection moneybook.Collection, updatedAfter time.Time) ([]json.RawMessage, error) {
	addr := fmt.Sprintf("%s/%s/%s?updated_at_gt=%s",
		c.base, url.PathEscape(c.db), collection,
		url.QueryEscape(updatedAfter.UTC().Format(time.RFC3339Nano)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("query %s: %s", collection, resp.Status)
	}
	var out struct {
		Docs []json.RawMessage `json:"docs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s query: %w", collection, err)
	}
	return out.Docs, nil
}
