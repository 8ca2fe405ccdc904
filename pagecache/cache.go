// Package pagecache stores generated pages keyed by route. An entry records
// when it was generated and how long it stays fresh; reading a stale entry
// serves it once more and regenerates it in the background.
package pagecache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrMiss is returned by backends when a key has no entry.
var ErrMiss = errors.New("pagecache: miss")

// Entry is a generated page.
type Entry struct {
	Body        []byte        `json:"body"`
	GeneratedAt time.Time     `json:"generated_at"`
	TTL         time.Duration `json:"ttl"`
}

// Stale reports whether the entry should be regenerated. A zero TTL never
// goes stale.
func (e Entry) Stale(now time.Time) bool {
	return e.TTL > 0 && now.Sub(e.GeneratedAt) >= e.TTL
}

// Backend persists entries. Implementations must be safe for concurrent use.
type Backend interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Status describes how a page was served.
type Status string

const (
	StatusHit   Status = "HIT"
	StatusStale Status = "STALE"
	StatusMiss  Status = "MISS"
)

// Generator renders a page.
type Generator func(ctx context.Context) ([]byte, error)

// Options configures a Cache.
type Options struct {
	Logger          *slog.Logger
	GenerateTimeout time.Duration // bound for each generation (default 30s)
	Now             func() time.Time
}

// Cache coordinates generation over a Backend. Concurrent generations of the
// same key are collapsed into one.
type Cache struct {
	backend Backend
	group   singleflight.Group
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

// New creates a Cache over backend.
func New(backend Backend, opts Options) *Cache {
	c := &Cache{
		backend: backend,
		logger:  opts.Logger,
		timeout: opts.GenerateTimeout,
		now:     opts.Now,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Get returns the page for key. A fresh entry is served as is. A stale entry
// is served and regenerated in the background; if that fails the stale entry
// stays. A missing entry is generated before returning, and a generation
// error is returned without storing anything.
func (c *Cache) Get(ctx context.Context, key string, ttl time.Duration, gen Generator) ([]byte, Status, error) {
	e, err := c.backend.Get(ctx, key)
	switch {
	case err == nil:
		if e.Stale(c.now()) {
			c.background(key, ttl, gen)
			return e.Body, StatusStale, nil
		}
		return e.Body, StatusHit, nil
	case !errors.Is(err, ErrMiss):
		c.logger.Warn("page cache read failed", "key", key, "error", err)
	}

	body, err := c.Generate(ctx, key, ttl, gen)
	if err != nil {
		return nil, StatusMiss, err
	}
	return body, StatusMiss, nil
}

// Generate renders key now and stores the result, regardless of any entry.
// Callers waiting on the same key share one generation; the generation
// itself is not cancelled when ctx is.
func (c *Cache) Generate(ctx context.Context, key string, ttl time.Duration, gen Generator) ([]byte, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.store(gctx, key, ttl, gen)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) store(ctx context.Context, key string, ttl time.Duration, gen Generator) ([]byte, error) {
	body, err := gen(ctx)
	if err != nil {
		return nil, err
	}
	e := Entry{Body: body, GeneratedAt: c.now(), TTL: ttl}
	if err := c.backend.Set(ctx, key, e); err != nil {
		c.logger.Warn("page cache write failed", "key", key, "error", err)
	}
	return body, nil
}

// Prefetch starts generating key in the background.
func (c *Cache) Prefetch(key string, ttl time.Duration, gen Generator) {
	c.background(key, ttl, gen)
}

func (c *Cache) background(key string, ttl time.Duration, gen Generator) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if _, err := c.Generate(context.Background(), key, ttl, gen); err != nil {
			c.logger.Warn("background page generation failed", "key", key, "error", err)
			return
		}
		c.logger.Debug("page generated", "key", key)
	}()
}

// Peek returns the entry for key without generating anything.
func (c *Cache) Peek(ctx context.Context, key string) (Entry, bool) {
	e, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Warn("page cache read failed", "key", key, "error", err)
		}
		return Entry{}, false
	}
	return e, true
}

// Invalidate drops the entry for key.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.backend.Delete(ctx, key)
}

// Purge drops every entry.
func (c *Cache) Purge(ctx context.Context) error {
	return c.backend.Clear(ctx)
}

// Wait blocks until background generations have finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Close waits for background generations and closes the backend.
func (c *Cache) Close() error {
	c.Wait()
	return c.backend.Close()
}
