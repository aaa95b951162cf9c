package integrations

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/modelscore/modelscore/pkg/cache"
	"github.com/modelscore/modelscore/pkg/errors"
	"github.com/modelscore/modelscore/pkg/observability"
)

// Client provides shared HTTP functionality for all source API clients.
// It handles response caching, timeouts, and common request headers.
//
// Requests are single attempts: a failed fetch surfaces immediately as a
// coded error and the caller decides how to degrade.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	prefix  string
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a Client backed by the given cache. The prefix
// namespaces cache keys per source (e.g. "hf:", "gh:") and ttl bounds how
// long cached responses stay valid. Pass nil for headers if no default
// headers are needed.
func NewClient(backend cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(),
		cache:   backend,
		prefix:  prefix,
		ttl:     ttl,
		headers: headers,
	}
}

// Cached retrieves a value from cache or executes fetch and caches the
// result. If refresh is true, the cache is bypassed and fetch is always
// called. The fetch function should populate v; on success, v is stored in
// the cache as JSON.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	cacheKey := c.prefix + key
	if !refresh {
		if data, hit, _ := c.cache.Get(ctx, cacheKey); hit {
			if err := json.Unmarshal(data, v); err == nil {
				observability.Cache().OnCacheHit(ctx, c.prefix)
				return nil
			}
			// Unreadable entry: drop it and fall through to a fresh fetch.
			_ = c.cache.Delete(ctx, cacheKey)
		}
		observability.Cache().OnCacheMiss(ctx, c.prefix)
	}
	if err := fetch(); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = c.cache.Set(ctx, cacheKey, data, c.ttl)
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with
// defaults. Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeFetchFailed, err, "decoding response from %s", url)
	}
	return nil
}

// GetText performs an HTTP GET request and returns the response body as a
// string. Useful for non-JSON endpoints like raw README files.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	return c.GetTextWithHeaders(ctx, url, nil)
}

// GetTextWithHeaders is GetText with additional request headers merged
// with the client defaults.
func (c *Client) GetTextWithHeaders(ctx context.Context, url string, headers map[string]string) (string, error) {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeNetwork, err, "reading response from %s", url)
	}
	return string(data), nil
}

// Head performs an HTTP HEAD request and reports whether the resource is
// reachable. Used for cheap availability probes where the body is not needed.
func (c *Client) Head(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidURL, err, "building request for %s", url)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, wrapTransportError(err, url)
	}
	resp.Body.Close()
	return resp.StatusCode < 400, nil
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidURL, err, "building request for %s", url)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapTransportError(err, url)
	}

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// wrapTransportError classifies transport-level failures. Deadline
// expirations and net timeouts map to TIMEOUT; everything else is a
// generic network error.
func wrapTransportError(err error, url string) error {
	var netErr net.Error
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, "request to %s timed out", url)
	case stderrors.As(err, &netErr) && netErr.Timeout():
		return errors.Wrap(errors.ErrCodeTimeout, err, "request to %s timed out", url)
	default:
		return errors.Wrap(errors.ErrCodeNetwork, err, "request to %s failed", url)
	}
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound || code == http.StatusGone:
		return errors.New(errors.ErrCodeNotFound, "resource not found")
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.New(errors.ErrCodeUnauthorized, "access denied")
	case code == http.StatusTooManyRequests:
		return errors.New(errors.ErrCodeRateLimited, "rate limited")
	case code >= 500:
		return errors.New(errors.ErrCodeNetwork, "server error: status %d", code)
	default:
		return errors.New(errors.ErrCodeFetchFailed, "unexpected status %d", code)
	}
}
