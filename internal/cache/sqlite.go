// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	_ "modernc.org/sqlite"
)

// DiskStore keeps entries in a single SQLite file beneath the cache
// directory. WAL mode keeps concurrent gwsctl invocations from tripping
// over each other, and expired rows are reaped lazily on read and in bulk
// by sweep and vacuum.
type DiskStore struct {
	db         *sql.DB
	dir        string
	path       string
	defaultTTL time.Duration
	stats      Statistics

	// now is swapped out by tests to simulate the passage of time.
	now func() time.Time
}

var _ Store = (*DiskStore)(nil)

var setupStatements = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
	`CREATE TABLE IF NOT EXISTS entries (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	)`,
	"CREATE INDEX IF NOT EXISTS idx_entries_expires_at ON entries (expires_at)",
}

// NewDiskStore opens (creating if needed) the cache database in dir.
func NewDiskStore(dir string, defaultTTL time.Duration) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	path := filepath.Join(dir, "cache.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	for _, stmt := range setupStatements {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to prepare cache database: %w", err)
		}
	}

	return &DiskStore{
		db:         db,
		dir:        dir,
		path:       path,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}, nil
}

func (s *DiskStore) Get(ctx context.Context, key string) ([]byte, bool) {
	var value []byte
	var expiresAt int64

	err := s.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM entries WHERE key = ?", key).
		Scan(&value, &expiresAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.stats.Miss()
		log.Debugf("cache miss: %s", key)
		return nil, false
	case err != nil:
		s.stats.Miss()
		log.WithError(err).Warnf("cache get failed for %s", key)
		return nil, false
	}

	if expiresAt <= s.now().Unix() {
		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM entries WHERE key = ?", key); err == nil {
			s.stats.Evict(1)
		}
		s.stats.Miss()
		log.Debugf("cache expired: %s", key)
		return nil, false
	}

	s.stats.Hit()
	log.Debugf("cache hit: %s", key)
	return value, true
}

func (s *DiskStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	expiresAt := s.now().Add(ttl).Unix()

	if _, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO entries (key, value, expires_at) VALUES (?, ?, ?)",
		key, value, expiresAt); err != nil {
		log.WithError(err).Warnf("cache set failed for %s", key)
		return
	}

	s.stats.Set()
	log.Debugf("cache set: %s (ttl %s)", key, ttl)
}

func (s *DiskStore) Delete(ctx context.Context, key string) bool {
	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE key = ?", key)
	if err != nil {
		log.WithError(err).Warnf("cache delete failed for %s", key)
		return false
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		log.Debugf("cache delete: %s", key)
	}
	return n > 0
}

func (s *DiskStore) Clear(ctx context.Context) bool {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		log.WithError(err).Error("cache clear failed")
		return false
	}
	log.Info("cache cleared")
	return true
}

// ExpireMatching deletes every entry whose key begins with prefix. With an
// empty prefix it instead sweeps entries that are already past their TTL.
// Either way the return value is the number of rows actually removed.
func (s *DiskStore) ExpireMatching(ctx context.Context, prefix string) int {
	if prefix == "" {
		return s.sweep(ctx)
	}

	// length() counts characters like substr() does, so the comparison
	// holds even when the prefix carries multibyte runes.
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM entries WHERE substr(key, 1, length(?)) = ?", prefix, prefix)
	if err != nil {
		log.WithError(err).Errorf("cache expire failed for %q", prefix)
		return 0
	}

	n, _ := res.RowsAffected()
	s.stats.Evict(n)
	log.Infof("expired %d cache entries matching %q", n, prefix)
	return int(n)
}

// sweep removes rows whose TTL has lapsed.
func (s *DiskStore) sweep(ctx context.Context) int {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM entries WHERE expires_at <= ?", s.now().Unix())
	if err != nil {
		log.WithError(err).Error("cache sweep failed")
		return 0
	}

	n, _ := res.RowsAffected()
	s.stats.Evict(n)
	if n > 0 {
		log.Debugf("swept %d expired cache entries", n)
	}
	return int(n)
}

// Vacuum sweeps expired rows and then compacts the database file.
func (s *DiskStore) Vacuum(ctx context.Context) bool {
	s.sweep(ctx)
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		log.WithError(err).Error("cache vacuum failed")
		return false
	}
	log.Info("cache vacuumed")
	return true
}

func (s *DiskStore) Stats(ctx context.Context) Summary {
	sum := Summary{ID: "cache", Enabled: true, Location: s.dir}
	s.stats.Fill(&sum)

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM entries WHERE expires_at > ?", s.now().Unix()).
		Scan(&sum.TotalItems); err != nil {
		log.WithError(err).Warn("cache stats count failed")
	}
	if fi, err := os.Stat(s.path); err == nil {
		sum.SizeOnDisk = fi.Size()
	}

	return sum
}

func (s *DiskStore) Close() error {
	return s.db.Close()
}
