// Package rechtspraak provides a client for the Rechtspraak.nl open-data
// case-law search, which returns Atom feeds of court decisions identified by
// ECLI.
package rechtspraak

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Client searches published court decisions.
type Client interface {
	// Search runs a keyword query against /uitspraken/zoeken and returns
	// the matching decisions.
	Search(ctx context.Context, keyword string, max int) ([]Decision, error)
}

// Decision is one court decision from the feed.
type Decision struct {
	ECLI    string
	Title   string
	Summary string
	Link    string
	Updated time.Time
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

// NewClient creates a client for the open-data endpoint, e.g.
// https://data.rechtspraak.nl.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
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

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID      string   `xml:"id"`
	Title   string   `xml:"title"`
	Summary string   `xml:"summary"`
	Updated string   `xml:"updated"`
	Link    atomLink `xml:"link"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}

func (c *httpClient) Search(ctx context.Context, keyword string, max int) ([]Decision, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, eris.New("rechtspraak: empty keyword")
	}
	if max <= 0 {
		max = 10
	}

	params := url.Values{}
	params.Set("q", keyword)
	params.Set("max", strconv.Itoa(max))
	params.Set("return", "DOC") // only decisions with published full text

	reqURL := c.baseURL + "/uitspraken/zoeken?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "rechtspraak: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/atom+xml, application/xml")

	body, status, err := c.retryDo(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "rechtspraak: request")
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("rechtspraak: http %d", status)
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, eris.Wrap(err, "rechtspraak: decode feed")
	}

	decisions := make([]Decision, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		ecli := strings.TrimSpace(e.ID)
		if ecli == "" {
			continue
		}
		d := Decision{
			ECLI:    ecli,
			Title:   strings.TrimSpace(e.Title),
			Summary: strings.TrimSpace(e.Summary),
			Link:    e.Link.Href,
		}
		if d.Link == "" {
			d.Link = "https://deeplink.rechtspraak.nl/uitspraak?id=" + url.QueryEscape(ecli)
		}
		if t, err := time.Parse(time.RFC3339, e.Updated); err == nil {
			d.Updated = t
		}
		decisions = append(decisions, d)
	}
	return decisions, nil
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
				lastErr = eris.Errorf("rechtspraak: http %d", resp.StatusCode)
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
