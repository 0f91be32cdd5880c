// Package client is a typed HTTP client for the storefront API. GET
// responses are cached per endpoint and invalidated by mutations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/util"

	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// Client talks to the storefront API. The cookie jar carries the admin
// session between calls.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	cache map[string][]byte
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Jar is replaced
// when nil.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		cache:      make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}
	return c, nil
}

// ListQuery selects a page and filters of a list endpoint. Zero fields
// are omitted.
type ListQuery struct {
	Page       int
	Limit      int
	Search     string
	CategoryID int64
	Status     string
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.CategoryID > 0 {
		v.Set("categoryId", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	return v
}

// cacheKey identifies a GET endpoint. url.Values.Encode sorts by key, so
// equal queries share a key.
func cacheKey(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// get serves path from the cache or fetches and caches it
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	key := cacheKey(path, query)

	c.mu.RLock()
	body, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		util.GetLogger().Debug("Client cache hit", zap.String("key", key))
		return decode(body, out)
	}

	body, err := c.do(ctx, http.MethodGet, key, nil, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.cache[key] = body
	c.mu.Unlock()
	return decode(body, out)
}

// mutate sends a write request and drops every cached endpoint under the
// given prefixes
func (c *Client) mutate(ctx context.Context, method, path string, in, out any, header http.Header, invalidate ...string) error {
	body, err := c.do(ctx, method, path, in, header)
	if err != nil {
		return err
	}
	c.Invalidate(invalidate...)
	if out == nil {
		return nil
	}
	return decode(body, out)
}

func (c *Client) do(ctx context.Context, method, path string, in any, header http.Header) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp.StatusCode, body)
	}
	return body, nil
}

// decodeError rebuilds the API's {message, errors} body as an apperr.Error
func decodeError(status int, body []byte) error {
	appErr := &apperr.Error{}
	if err := json.Unmarshal(body, appErr); err != nil || appErr.Message == "" {
		appErr.Message = http.StatusText(status)
	}
	appErr.Code = status
	return appErr
}

func decode(body []byte, out any) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Invalidate drops cached endpoints whose path is prefix or lies under it
func (c *Client) Invalidate(prefixes ...string) {
	if len(prefixes) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.cache {
		for _, prefix := range prefixes {
			if underPrefix(key, prefix) {
				delete(c.cache, key)
				break
			}
		}
	}
}

func underPrefix(key, prefix string) bool {
	if !strings.HasPrefix(key, prefix) {
		return false
	}
	rest := key[len(prefix):]
	return rest == "" || rest[0] == '/' || rest[0] == '?'
}

// ClearCache drops every cached response
func (c *Client) ClearCache() {
	c.mu.Lock()
	c.cache = make(map[string][]byte)
	c.mu.Unlock()
}

// Cached reports whether the endpoint is currently cached
func (c *Client) Cached(path string, q ListQuery) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.cache[cacheKey(path, q.values())]
	return ok
}

func idPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}
