package cache

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, time.Hour)
	ctx := context.Background()

	miss, err := store.Get(ctx, "https://example.org/a")
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, store.Put(ctx, "https://example.org/a", Entry{
		Status:      200,
		ContentType: "application/xml",
		Body:        []byte("<ok/>"),
	}))

	hit, err := store.Get(ctx, "https://example.org/a")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, 200, hit.Status)
	assert.Equal(t, []byte("<ok/>"), hit.Body)
}

func TestStore_ExpiredEntryIsMiss(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, -time.Hour) // everything written is already stale
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "https://example.org/a", Entry{Status: 200, Body: []byte("x")}))

	hit, err := store.Get(ctx, "https://example.org/a")
	require.NoError(t, err)
	assert.Nil(t, hit)

	removed, err := store.Prune(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
}

func TestOpen_PrunesExpiredEntries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	stale, err := Open(path, -time.Hour)
	require.NoError(t, err)
	require.NoError(t, stale.Put(ctx, "https://example.org/a", Entry{Status: 200, Body: []byte("x")}))
	require.NoError(t, stale.Close())

	store, err := Open(path, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	removed, err := store.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed, "Open should have dropped the expired row already")
}

func TestTransport_ServesFromCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	store := openTestStore(t, time.Hour)
	client := &http.Client{Transport: NewTransport(store, nil)}

	for i := 0; i < 3; i++ {
		resp, err := client.Get(srv.URL + "/page")
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, "fresh", string(body))
	}

	assert.Equal(t, int32(1), calls.Load())
}

func TestTransport_DoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := openTestStore(t, time.Hour)
	client := &http.Client{Transport: NewTransport(store, nil)}

	for i := 0; i < 2; i++ {
		resp, err := client.Get(srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	}

	assert.Equal(t, int32(2), calls.Load())
}
