package pagecache

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend keeps entries in a SQLite database so generated pages
// survive restarts.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (or creates) the database at path, ensuring the
// data directory exists.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	b := &SQLiteBackend{db: db}
	if err := b.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// sqliteDSN carries the pragmas in the DSN so every pooled connection gets
// them. WAL lets readers proceed while a regeneration writes; busy_timeout
// makes concurrent writers wait instead of failing with SQLITE_BUSY.
func sqliteDSN(path string) string {
	return "file:" + path + "?" +
		"_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=cache_size(-8000)"
}

func (b *SQLiteBackend) ensureSchema() error {
	_, err := b.db.Exec(`
CREATE TABLE IF NOT EXISTS pages (
    key TEXT PRIMARY KEY,
    body BLOB NOT NULL,
    generated_at INTEGER NOT NULL,
    ttl_ms INTEGER NOT NULL
);
`)
	return err
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) (Entry, error) {
	var (
		body        []byte
		generatedAt int64
		ttlMS       int64
	)
	err := b.db.QueryRowContext(ctx,
		`SELECT body, generated_at, ttl_ms FROM pages WHERE key = ?`, key,
	).Scan(&body, &generatedAt, &ttlMS)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrMiss
	}
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Body:        body,
		GeneratedAt: time.UnixMilli(generatedAt),
		TTL:         time.Duration(ttlMS) * time.Millisecond,
	}, nil
}

func (b *SQLiteBackend) Set(ctx context.Context, key string, e Entry) error {
	_, err := b.db.ExecContext(ctx, `
INSERT INTO pages (key, body, generated_at, ttl_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
    body = excluded.body,
    generated_at = excluded.generated_at,
    ttl_ms = excluded.ttl_ms
`, key, e.Body, e.GeneratedAt.UnixMilli(), e.TTL.Milliseconds())
	return err
}

func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM pages WHERE key = ?`, key)
	return err
}

func (b *SQLiteBackend) Clear(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM pages`)
	return err
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
