// Package sru provides a client for SRU (Search/Retrieve via URL) endpoints,
// the full-text search protocol spoken by Dutch government document
// repositories and the EUR-Lex web service.
package sru

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Client performs SRU searchRetrieve operations against one endpoint.
type Client interface {
	// SearchRetrieve runs a CQL query. A server diagnostic is not an
	// error: it is returned inside the Response for the caller to
	// inspect.
	SearchRetrieve(ctx context.Context, q Query) (*Response, error)
}

// Query holds the searchRetrieve parameters.
type Query struct {
	CQL          string
	StartRecord  int // 1-based; zero means server default
	MaxRecords   int
	RecordSchema string // optional, endpoint-specific
}

// Response is the decoded searchRetrieve envelope. Self-closing on both SRU
// 1.2 and 2.0 namespaces: matching is by local element name.
type Response struct {
	XMLName         xml.Name     `xml:"searchRetrieveResponse"`
	Version         string       `xml:"version"`
	NumberOfRecords int          `xml:"numberOfRecords"`
	Records         []Record     `xml:"records>record"`
	Diagnostics     []Diagnostic `xml:"diagnostics>diagnostic"`
}

// HasDiagnostics reports whether the server rejected or qualified the query.
func (r *Response) HasDiagnostics() bool {
	return len(r.Diagnostics) > 0
}

// Record is one result record. Data holds the raw recordData payload, whose
// schema differs per repository.
type Record struct {
	Schema   string     `xml:"recordSchema"`
	Position int        `xml:"recordPosition"`
	Data     RecordData `xml:"recordData"`
}

// RecordData captures the raw XML payload of a record.
type RecordData struct {
	Inner []byte `xml:",innerxml"`
}

// Diagnostic is a protocol-level message from the server, e.g. a CQL syntax
// rejection.
type Diagnostic struct {
	URI     string `xml:"uri"`
	Message string `xml:"message"`
	Details string `xml:"details"`
}

func (d Diagnostic) String() string {
	if d.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", d.URI, d.Message, d.Details)
	}
	return fmt.Sprintf("%s: %s", d.URI, d.Message)
}

// Option configures the SRU client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithVersion sets the SRU protocol version parameter (default "2.0").
func WithVersion(version string) Option {
	return func(c *httpClient) {
		c.version = version
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
	version   string
	userAgent string
	http      *http.Client
}

// NewClient creates an SRU client for the given endpoint.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL:   baseURL,
		version:   "2.0",
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

func (c *httpClient) SearchRetrieve(ctx context.Context, q Query) (*Response, error) {
	if q.CQL == "" {
		return nil, eris.New("sru: empty query")
	}

	params := url.Values{}
	params.Set("operation", "searchRetrieve")
	params.Set("version", c.version)
	params.Set("query", q.CQL)
	if q.MaxRecords > 0 {
		params.Set("maximumRecords", strconv.Itoa(q.MaxRecords))
	}
	if q.StartRecord > 0 {
		params.Set("startRecord", strconv.Itoa(q.StartRecord))
	}
	if q.RecordSchema != "" {
		params.Set("recordSchema", q.RecordSchema)
	}

	reqURL := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sru: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/xml, text/xml")

	body, status, err := c.retryDo(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "sru: request")
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("sru: http %d from %s", status, c.baseURL)
	}

	var resp Response
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "sru: decode response")
	}
	return &resp, nil
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
				lastErr = eris.Errorf("sru: http %d", resp.StatusCode)
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
