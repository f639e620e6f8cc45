// Package mediawiki provides a minimal client for the MediaWiki action API,
// used to pull encyclopedia search hits with intro extracts.
package mediawiki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Client performs MediaWiki queries.
type Client interface {
	// SearchExtracts runs a full-text search and returns matching pages
	// with their plain-text intro extracts, best match first. One API
	// round trip (generator=search + prop=extracts).
	SearchExtracts(ctx context.Context, query string, limit int) ([]Page, error)
}

// Page is one search hit.
type Page struct {
	PageID  int    `json:"pageid"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
	Index   int    `json:"index"` // search rank, 1-based
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient creates a client for one MediaWiki API endpoint, e.g.
// https://nl.wikipedia.org/w/api.php.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL:   baseURL,
		userAgent: "lookup-cli/1.0",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type queryResponse struct {
	Query struct {
		Pages []Page `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

func (c *httpClient) SearchExtracts(ctx context.Context, query string, limit int) ([]Page, error) {
	if strings.TrimSpace(query) == "" {
		return nil, eris.New("mediawiki: empty query")
	}
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("generator", "search")
	params.Set("gsrsearch", query)
	params.Set("gsrlimit", strconv.Itoa(limit))
	params.Set("prop", "extracts")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("exlimit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "mediawiki: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	body, status, err := c.retryDo(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "mediawiki: request")
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("mediawiki: http %d", status)
	}

	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return nil, eris.Wrap(err, "mediawiki: decode response")
	}
	if qr.Error != nil {
		return nil, eris.Errorf("mediawiki: api error %s: %s", qr.Error.Code, qr.Error.Info)
	}

	pages := qr.Query.Pages
	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })
	return pages, nil
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes the request with exponential backoff on transient
// failures. Returns the body and status code of the final attempt.
func (c *httpClient) retryDo(ctx context.Context, req *http.Request) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 500 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryReq := req.Clone(ctx)

		resp, err := c.http.Do(retryReq)
		if err != nil {
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = readErr
			} else if !retryableStatusCode(resp.StatusCode) {
				return body, resp.StatusCode, nil
			} else {
				lastErr = eris.Errorf("mediawiki: http %d", resp.StatusCode)
			}
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}
	return nil, 0, lastErr
}

// PageURL builds the canonical article URL for a page title on the given
// wiki host, e.g. PageURL("nl", "Onrechtmatige daad").
func PageURL(language, title string) string {
	return "https://" + language + ".wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}
