package cache

import (
	"context"
	"sync"
	"time"

	"github.com/comanda/backend/internal/application/report"
)

type reportEntry struct {
	report    report.DailyReport
	expiresAt time.Time
}

// InMemoryReportCache implements report.Cache with a map.
// Expired entries are dropped lazily on read.
type InMemoryReportCache struct {
	mu      sync.RWMutex
	entries map[string]reportEntry
	now     func() time.Time
}

// NewInMemoryReportCache creates an empty in-memory report cache
func NewInMemoryReportCache() *InMemoryReportCache {
	return &InMemoryReportCache{
		entries: make(map[string]reportEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the cached report or report.ErrCacheMiss
func (c *InMemoryReportCache) Get(ctx context.Context, date string) (*report.DailyReport, error) {
	c.mu.RLock()
	e, ok := c.entries[date]
	c.mu.RUnlock()

	if !ok {
		return nil, report.ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, still := c.entries[date]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, date)
		}
		c.mu.Unlock()
		return nil, report.ErrCacheMiss
	}
	r := e.report
	return &r, nil
}

// Set stores a copy of the report. A ttl of zero keeps it until deleted.
func (c *InMemoryReportCache) Set(ctx context.Context, daily *report.DailyReport, ttl time.Duration) error {
	e := reportEntry{report: *daily}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[daily.Date] = e
	c.mu.Unlock()
	return nil
}

// Delete removes the report of one date
func (c *InMemoryReportCache) Delete(ctx context.Context, date string) error {
	c.mu.Lock()
	delete(c.entries, date)
	c.mu.Unlock()
	return nil
}

// Clear removes every report
func (c *InMemoryReportCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]reportEntry)
	c.mu.Unlock()
	return nil
}

// Size returns the number of stored entries, expired ones included
func (c *InMemoryReportCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryReportCache implements report.Cache
var _ report.Cache = (*InMemoryReportCache)(nil)
