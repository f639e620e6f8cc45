package cache

import (
	"bytes"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Transport is an http.RoundTripper that serves idempotent GET responses
// from the Store when fresh, and writes successful responses back on miss.
// Errors from the cache never fail the request; they degrade to a
// pass-through.
type Transport struct {
	Store *Store
	Base  http.RoundTripper
}

// NewTransport wraps base with the cache. A nil base uses
// http.DefaultTransport.
func NewTransport(store *Store, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Store: store, Base: base}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.Base.RoundTrip(req)
	}

	url := req.URL.String()
	if entry, err := t.Store.Get(req.Context(), url); err != nil {
		zap.L().Warn("cache: lookup failed", zap.Error(err))
	} else if entry != nil {
		header := make(http.Header)
		if entry.ContentType != "" {
			header.Set("Content-Type", entry.ContentType)
		}
		header.Set("X-Cache", "HIT")
		return &http.Response{
			StatusCode: entry.Status,
			Status:     http.StatusText(entry.Status),
			Header:     header,
			Body:       io.NopCloser(bytes.NewReader(entry.Body)),
			Request:    req,
			ProtoMajor: 1,
			ProtoMinor: 1,
		}, nil
	}

	resp, err := t.Base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// Only cache successful responses; failures should be retried live.
	if resp.StatusCode == http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))

		if err := t.Store.Put(req.Context(), url, Entry{
			Status:      resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        body,
		}); err != nil {
			zap.L().Warn("cache: store failed", zap.Error(err))
		}
	}

	return resp, nil
}
