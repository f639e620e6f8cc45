package mediawiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchExtracts_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "query", q.Get("action"))
		assert.Equal(t, "search", q.Get("generator"))
		assert.Equal(t, "dwaling", q.Get("gsrsearch"))
		assert.Equal(t, "2", q.Get("formatversion"))

		w.Header().Set("Content-Type", "application/json")
		// Pages arrive unordered; Index carries the search rank.
		w.Write([]byte(`{"query":{"pages":[
			{"pageid":2,"title":"Bedrog","extract":"Bedrog is ...","index":2},
			{"pageid":1,"title":"Dwaling","extract":"Dwaling is een wilsgebrek ...","index":1}
		]}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	pages, err := client.SearchExtracts(context.Background(), "dwaling", 5)

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "Dwaling", pages[0].Title)
	assert.Equal(t, "Bedrog", pages[1].Title)
	assert.Contains(t, pages[0].Extract, "wilsgebrek")
}

func TestSearchExtracts_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"code":"srsearch-error","info":"query too long"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.SearchExtracts(context.Background(), "x", 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "srsearch-error")
}

func TestSearchExtracts_EmptyQuery(t *testing.T) {
	t.Parallel()

	client := NewClient("http://unused")
	_, err := client.SearchExtracts(context.Background(), "  ", 5)
	require.Error(t, err)
}

func TestSearchExtracts_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.SearchExtracts(context.Background(), "dwaling", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestSearchExtracts_RetriesOn429(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query":{"pages":[{"pageid":1,"title":"Dwaling","extract":"Dwaling is ...","index":1}]}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	pages, err := client.SearchExtracts(context.Background(), "dwaling", 5)

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPageURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"https://nl.wikipedia.org/wiki/Onrechtmatige_daad",
		PageURL("nl", "Onrechtmatige daad"))
}
