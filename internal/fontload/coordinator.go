package fontload

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pfrederiksen/liga-scores/internal/glyphcache"
	"github.com/pfrederiksen/liga-scores/internal/logger"
	"github.com/pfrederiksen/liga-scores/internal/woff"
)

// DefaultCapacity bounds the registry when WithCapacity is not given. Score
// pages reference a handful of fonts each, so this leaves ample headroom.
const DefaultCapacity = 64

// Fetcher downloads and parses one font.
type Fetcher interface {
	Fetch(ctx context.Context, fontID string) (*woff.Table, error)
}

// Store is the slice of the glyph cache the coordinator needs.
type Store interface {
	IsCached(fontID string) (bool, error)
	Record(fontID, fontName string, glyphs []woff.Glyph) error
}

// entry tracks one font id through its load. done is closed exactly once,
// after table, err and completedAt are set.
type entry struct {
	fontID string
	done   chan struct{}

	table       *woff.Table
	err         error
	completedAt time.Time

	elem *list.Element // LRU position, nil while pending
}

// Coordinator runs at most one load per font id and lets concurrent callers
// join the in-flight load. Outcomes stay registered, failures included, so
// under the default policy a font id is fetched at most once per process.
type Coordinator struct {
	fetcher Fetcher
	store   Store

	capacity   int
	retryAfter time.Duration

	mu      sync.Mutex
	entries map[string]*entry
	lru     *list.List // completed entries, most recently used in front
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithCapacity bounds the registry to n entries. Completed entries are
// evicted least-recently-used first; pending entries are never evicted.
// A non-positive n removes the bound.
func WithCapacity(n int) Option {
	return func(c *Coordinator) {
		c.capacity = n
	}
}

// WithRetryAfter lets a failed load be replaced by a fresh one once it is
// older than d. The zero default keeps failures registered for the process
// lifetime.
func WithRetryAfter(d time.Duration) Option {
	return func(c *Coordinator) {
		c.retryAfter = d
	}
}

// New creates a Coordinator around a fetcher and a glyph store.
func New(fetcher Fetcher, store Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher:  fetcher,
		store:    store,
		capacity: DefaultCapacity,
		entries:  make(map[string]*entry),
		lru:      list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureLoaded returns the font's glyph table, fetching and recording it on
// first use. Concurrent callers for the same id share a single load. The
// context cancels only this caller's wait; the load itself runs to
// completion, since its outcome is shared.
func (c *Coordinator) EnsureLoaded(ctx context.Context, fontID string) (*woff.Table, error) {
	id := glyphcache.CanonicalID(fontID)
	if id == "" {
		return nil, errors.New("empty font id")
	}

	c.mu.Lock()
	e, ok := c.entries[id]
	if ok && c.retryExpiredLocked(e) {
		c.removeLocked(e)
		ok = false
	}
	if ok {
		if e.elem != nil {
			c.lru.MoveToFront(e.elem)
		}
		logger.IncrCounter("fontload.join")
	} else {
		e = &entry{fontID: id, done: make(chan struct{})}
		c.entries[id] = e
		c.evictOverCapacityLocked()
		c.publishSizeLocked()
		go c.load(e)
	}
	c.mu.Unlock()

	select {
	case <-e.done:
		return e.table, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the number of registered entries, pending loads included.
func (c *Coordinator) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// load runs the fetch-then-record sequence for one entry.
func (c *Coordinator) load(e *entry) {
	logger.IncrCounter("fontload.fetch")
	logger.Debug("Font load started", logger.Fields{"font_id": e.fontID})

	start := time.Now()
	table, err := c.loadTable(context.Background(), e.fontID)
	logger.RecordTiming("fontload.fetch", time.Since(start))

	if err != nil {
		logger.IncrCounter("fontload.fetch_failure")
		logger.Error("Font load failed", logger.Fields{"font_id": e.fontID}, err)
	} else {
		logger.Info("Font loaded", logger.Fields{
			"font_id": e.fontID,
			"name":    table.Name,
			"glyphs":  len(table.Glyphs),
		})
	}

	e.table = table
	e.err = err
	e.completedAt = time.Now()
	close(e.done)

	c.mu.Lock()
	if c.entries[e.fontID] == e {
		e.elem = c.lru.PushFront(e)
		c.evictOverCapacityLocked()
		c.publishSizeLocked()
	}
	c.mu.Unlock()
}

// loadTable downloads the font, then records it unless the store already
// holds it from an earlier run.
func (c *Coordinator) loadTable(ctx context.Context, fontID string) (*woff.Table, error) {
	table, err := c.fetcher.Fetch(ctx, fontID)
	if err != nil {
		return nil, err
	}

	cached, err := c.store.IsCached(fontID)
	if err != nil {
		return nil, err
	}
	if !cached {
		if err := c.store.Record(fontID, table.Name, table.Glyphs); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// retryExpiredLocked reports whether e is a failed entry old enough to be
// replaced under the retry policy.
func (c *Coordinator) retryExpiredLocked(e *entry) bool {
	if c.retryAfter <= 0 {
		return false
	}
	select {
	case <-e.done:
	default:
		return false
	}
	return e.err != nil && time.Since(e.completedAt) >= c.retryAfter
}

func (c *Coordinator) removeLocked(e *entry) {
	if e.elem != nil {
		c.lru.Remove(e.elem)
		e.elem = nil
	}
	delete(c.entries, e.fontID)
}

// evictOverCapacityLocked trims completed entries, oldest first, while the
// registry exceeds capacity. Pending entries are pinned by their joiners.
func (c *Coordinator) evictOverCapacityLocked() {
	for c.capacity > 0 && len(c.entries) > c.capacity {
		oldest := c.lru.Back()
		if oldest == nil {
			return
		}
		c.removeLocked(oldest.Value.(*entry))
		logger.IncrCounter("fontload.evict")
	}
}

func (c *Coordinator) publishSizeLocked() {
	logger.SetGauge("fontload.registry_size", float64(len(c.entries)))
}
