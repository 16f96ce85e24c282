package report

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Cache.Get when no entry exists
var ErrCacheMiss = errors.New("report cache miss")

// Cache stores daily reports of days that can no longer change
type Cache interface {
	// Get returns the cached report or ErrCacheMiss
	Get(ctx context.Context, date string) (*DailyReport, error)
	// Set stores a report for ttl
	Set(ctx context.Context, report *DailyReport, ttl time.Duration) error
	// Delete removes the report of one date
	Delete(ctx context.Context, date string) error
	// Clear removes every report
	Clear(ctx context.Context) error
}
