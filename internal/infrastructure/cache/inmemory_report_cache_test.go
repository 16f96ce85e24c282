package cache

import (
	"context"
	"testing"
	"time"

	"github.com/comanda/backend/internal/application/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDailyReport(date string) *report.DailyReport {
	return &report.DailyReport{
		Date:         date,
		TotalTabs:    4,
		ClosedTabs:   3,
		OpenTabs:     1,
		TotalRevenue: decimal.RequireFromString("187.50"),
		PaymentBreakdown: report.PaymentBreakdown{
			Pix:  decimal.RequireFromString("100.00"),
			Card: decimal.RequireFromString("57.50"),
			Cash: decimal.RequireFromString("30.00"),
		},
	}
}

func TestInMemoryReportCache_GetSet(t *testing.T) {
	c := NewInMemoryReportCache()
	ctx := context.Background()

	_, err := c.Get(ctx, "2026-03-09")
	assert.ErrorIs(t, err, report.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, sampleDailyReport("2026-03-09"), time.Hour))

	got, err := c.Get(ctx, "2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, 3, got.ClosedTabs)
	assert.True(t, got.TotalRevenue.Equal(decimal.RequireFromString("187.5")))

	got.ClosedTabs = 99
	again, err := c.Get(ctx, "2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, 3, again.ClosedTabs)
}

func TestInMemoryReportCache_Expiry(t *testing.T) {
	c := NewInMemoryReportCache()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, sampleDailyReport("2026-03-09"), time.Minute))
	require.NoError(t, c.Set(ctx, sampleDailyReport("2026-03-08"), 0))

	now = now.Add(2 * time.Minute)

	_, err := c.Get(ctx, "2026-03-09")
	assert.ErrorIs(t, err, report.ErrCacheMiss)
	assert.Equal(t, 1, c.Size())

	_, err = c.Get(ctx, "2026-03-08")
	assert.NoError(t, err)
}

func TestInMemoryReportCache_Delete(t *testing.T) {
	c := NewInMemoryReportCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, sampleDailyReport("2026-03-09"), time.Hour))

	require.NoError(t, c.Delete(ctx, "2026-03-09"))
	require.NoError(t, c.Delete(ctx, "2026-03-01"))

	_, err := c.Get(ctx, "2026-03-09")
	assert.ErrorIs(t, err, report.ErrCacheMiss)
}

func TestInMemoryReportCache_Clear(t *testing.T) {
	c := NewInMemoryReportCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, sampleDailyReport("2026-03-08"), time.Hour))
	require.NoError(t, c.Set(ctx, sampleDailyReport("2026-03-09"), 0))

	require.NoError(t, c.Clear(ctx))

	assert.Zero(t, c.Size())
	_, err := c.Get(ctx, "2026-03-08")
	assert.ErrorIs(t, err, report.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, sampleDailyReport("2026-03-09"), time.Hour))
	assert.Equal(t, 1, c.Size())
}
