// Package postgrest talks to the hosted store's REST surface. It is the
// fallback source when no direct database connection is configured.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/heartmarshall/journalfeed/internal/config"
	"github.com/heartmarshall/journalfeed/internal/domain"
)

const (
	restPath       = "/rest/v1"
	maxErrorBody   = 512
	defaultTimeout = 10 * time.Second
)

// Client is a minimal PostgREST client for the two feed tables.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	retryDelay time.Duration
	log        *slog.Logger
}

// New creates a Client from the store config. A non-positive
// RequestsPerSecond disables rate limiting.
func New(cfg config.StoreConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = max(1, int(cfg.RequestsPerSecond))
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/") + restPath,
		apiKey:     cfg.AnonKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		retryDelay: 500 * time.Millisecond,
		log:        logger.With("adapter", "postgrest"),
	}
}

// List returns every record of feed, newest first.
func (c *Client) List(ctx context.Context, feed domain.Feed) ([]domain.Raw, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.desc")

	rows, err := c.do(ctx, http.MethodGet, feed, q, nil)
	if err != nil {
		return nil, fmt.Errorf("postgrest: list %s: %w", feed, err)
	}
	c.log.DebugContext(ctx, "postgrest list", slog.String("feed", feed.String()), slog.Int("rows", len(rows)))
	return rows, nil
}

// Get returns one record by id.
func (c *Client) Get(ctx context.Context, feed domain.Feed, id string) (domain.Raw, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "eq."+id)

	rows, err := c.do(ctx, http.MethodGet, feed, q, nil)
	if err != nil {
		return nil, fmt.Errorf("postgrest: get %s %s: %w", feed, id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s %s: %w", feed.Table(), id, domain.ErrNotFound)
	}
	return rows[0], nil
}

// Insert creates a record and returns the stored representation.
func (c *Client) Insert(ctx context.Context, feed domain.Feed, rec domain.Raw) (domain.Raw, error) {
	if len(rec) == 0 {
		return nil, domain.NewValidationError("record", "no writable columns")
	}
	rows, err := c.do(ctx, http.MethodPost, feed, nil, rec)
	if err != nil {
		return nil, fmt.Errorf("postgrest: insert %s: %w", feed, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("postgrest: insert %s: empty representation", feed)
	}
	return rows[0], nil
}

// AdjustLikes sets a post's like counter to expected+delta, guarded by the
// counter still being expected. It reports whether a row matched.
func (c *Client) AdjustLikes(ctx context.Context, id string, expected, delta int) (bool, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("likes", "eq."+strconv.Itoa(expected))

	rows, err := c.do(ctx, http.MethodPatch, domain.FeedSocial, q, map[string]any{"likes": expected + delta})
	if err != nil {
		return false, fmt.Errorf("postgrest: adjust likes %s: %w", id, err)
	}
	return len(rows) > 0, nil
}

// Delete removes a record by id.
func (c *Client) Delete(ctx context.Context, feed domain.Feed, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)

	rows, err := c.do(ctx, http.MethodDelete, feed, q, nil)
	if err != nil {
		return fmt.Errorf("postgrest: delete %s %s: %w", feed, id, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s %s: %w", feed.Table(), id, domain.ErrNotFound)
	}
	return nil
}

// Ping checks that the REST surface answers an authenticated read.
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("limit", "1")
	if _, err := c.do(ctx, http.MethodGet, domain.FeedJournal, q, nil); err != nil {
		return fmt.Errorf("postgrest: ping: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

func (c *Client) do(ctx context.Context, method string, feed domain.Feed, q url.Values, body any) ([]domain.Raw, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + "/" + feed.Table()
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		payload = b
	}

	newReq := func() (*http.Request, error) {
		var r io.Reader
		if payload != nil {
			r = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, r)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if method != http.MethodGet {
			req.Header.Set("Prefer", "return=representation")
		}
		return req, nil
	}

	resp, err := c.doWithRetry(ctx, method, newReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.StatusError{Code: resp.StatusCode, Body: string(b)}
	}

	return decodeRows(resp.Body)
}

// doWithRetry executes the request with a single retry on 5xx or network
// errors. Only reads are retried.
func (c *Client) doWithRetry(ctx context.Context, method string, newReq func() (*http.Request, error)) (*http.Response, error) {
	req, err := newReq()
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry || method != http.MethodGet || ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	c.log.WarnContext(ctx, "postgrest retry", slog.String("url", req.URL.Path), slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.retryDelay):
	}

	req, err = newReq()
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}

// decodeRows reads a JSON array of objects. An empty body is an empty result.
func decodeRows(r io.Reader) ([]domain.Raw, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []domain.Raw{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if body[0] == '{' {
		var one map[string]any
		if err := dec.Decode(&one); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return []domain.Raw{one}, nil
	}

	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	out := make([]domain.Raw, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

