// Package cache provides a TTL-bounded HTTP response cache backed by SQLite,
// installed as an http.RoundTripper so provider adapters stay stateless while
// repeat traffic against public endpoints is bounded.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Store persists raw HTTP response bodies keyed by request URL.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

// Open opens (or creates) the cache database at path and applies the schema.
func Open(path string, ttl time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}

	const schema = `
CREATE TABLE IF NOT EXISTS http_cache (
	key         TEXT PRIMARY KEY,
	url         TEXT NOT NULL,
	status      INTEGER NOT NULL,
	header      TEXT NOT NULL,
	body        BLOB NOT NULL,
	fetched_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_http_cache_expires_at ON http_cache(expires_at);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "cache: migrate")
	}

	s := &Store{db: db, ttl: ttl}

	// Expired rows are never read again; drop them at startup so the file
	// does not grow across runs.
	if _, err := s.Prune(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Entry is one cached response.
type Entry struct {
	Status      int
	ContentType string
	Body        []byte
}

// Get returns the cached entry for url, or nil on miss or expiry.
func (s *Store) Get(ctx context.Context, url string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT status, header, body FROM http_cache WHERE key = ? AND expires_at > datetime('now')`,
		cacheKey(url))

	var e Entry
	if err := row.Scan(&e.Status, &e.ContentType, &e.Body); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrap(err, "cache: get")
	}
	return &e, nil
}

// Put stores a response for url with the store's TTL.
func (s *Store) Put(ctx context.Context, url string, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO http_cache (key, url, status, header, body, fetched_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, datetime('now'), ?)
		 ON CONFLICT(key) DO UPDATE SET
		   status = excluded.status, header = excluded.header,
		   body = excluded.body, fetched_at = excluded.fetched_at,
		   expires_at = excluded.expires_at`,
		cacheKey(url), url, e.Status, e.ContentType, e.Body,
		time.Now().UTC().Add(s.ttl).Format("2006-01-02 15:04:05"))
	return eris.Wrap(err, "cache: put")
}

// Prune deletes expired entries and returns how many were removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM http_cache WHERE expires_at <= datetime('now')`)
	if err != nil {
		return 0, eris.Wrap(err, "cache: prune")
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		zap.L().Debug("cache: pruned expired entries", zap.Int64("removed", n))
	}
	return n, nil
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
