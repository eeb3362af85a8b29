package store

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
)

// REST talks to a hosted PostgREST-compatible endpoint (Supabase and
// friends). The access key is sent both as apikey and bearer token.
type REST struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

// NewREST builds a client for the given endpoint URL and access key.
func NewREST(baseURL, key string) *REST {
	return &REST{
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        key,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Select fetches all rows of a table, optionally ordered by a column.
func (c *REST) Select(ctx context.Context, table Table, orderBy string) ([]Row, error) {
	q := url.Values{}
	q.Set("select", "*")
	if orderBy != "" {
		q.Set("order", orderBy+".asc")
	}
	resp, err := c.send(ctx, http.MethodGet, c.endpoint(table)+"?"+q.Encode(), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", table, err)
	}
	return rows, nil
}

// Insert creates a row and returns the stored representation, id included.
func (c *REST) Insert(ctx context.Context, table Table, row Row) (Row, error) {
	body, err := json.Marshal([]Row{row})
	if err != nil {
		return nil, fmt.Errorf("store: encode %s: %w", table, err)
	}
	resp, err := c.send(ctx, http.MethodPost, c.endpoint(table), bytes.NewReader(body), "return=representation")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var inserted []Row
	if err := json.NewDecoder(resp.Body).Decode(&inserted); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", table, err)
	}
	if len(inserted) == 0 {
		return nil, fmt.Errorf("store: insert into %s returned no representation", table)
	}
	return inserted[0], nil
}

// Update patches the row with the given id. PostgREST answers 2xx even when
// the filter matched nothing, so the representation is requested back and an
// empty one maps to ErrNotFound, matching the other backends.
func (c *REST) Update(ctx context.Context, table Table, id string, patch Row) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("store: encode %s patch: %w", table, err)
	}
	target := c.endpoint(table) + "?id=eq." + url.QueryEscape(id)
	resp, err := c.send(ctx, http.MethodPatch, target, bytes.NewReader(body), "return=representation")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectMatch(resp, table)
}

// Delete removes the row with the given id. A filter that matched nothing
// maps to ErrNotFound, same as Update.
func (c *REST) Delete(ctx context.Context, table Table, id string) error {
	target := c.endpoint(table) + "?id=eq." + url.QueryEscape(id)
	resp, err := c.send(ctx, http.MethodDelete, target, nil, "return=representation")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectMatch(resp, table)
}

func expectMatch(resp *http.Response, table Table) error {
	var matched []Row
	if err := json.NewDecoder(resp.Body).Decode(&matched); err != nil {
		return fmt.Errorf("store: decode %s: %w", table, err)
	}
	if len(matched) == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *REST) endpoint(table Table) string {
	return c.baseURL + "/rest/v1/" + string(table)
}

func (c *REST) send(ctx context.Context, method, target string, body io.Reader, prefer string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("store: %s %s: %w", method, target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("store: %s %s: status %d: %s", method, target, resp.StatusCode, string(msg))
	}
	return resp, nil
}
