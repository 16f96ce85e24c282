package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/comanda/backend/internal/domain/shared"
	"github.com/comanda/backend/internal/domain/tab"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	tabs     []*tab.Tab
	unloaded bool
}

func (s *stubSource) ListTabs() []*tab.Tab {
	return s.tabs
}

func (s *stubSource) Loaded() bool {
	return !s.unloaded
}

// MockCache is a mock implementation of Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, date string) (*DailyReport, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DailyReport), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, report *DailyReport, ttl time.Duration) error {
	args := m.Called(ctx, report, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, date string) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}

func (m *MockCache) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var saoPaulo = time.FixedZone("BRT", -3*60*60)

func at(day, hour int) time.Time {
	return time.Date(2026, 3, day, hour, 0, 0, 0, saoPaulo)
}

func openTab(number int64, createdAt time.Time, total string) *tab.Tab {
	return &tab.Tab{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: createdAt}},
		Number:            number,
		Customer:          tab.Customer{Name: "Cliente"},
		Status:            tab.StatusOpen,
		Total:             decimal.RequireFromString(total),
	}
}

func closedTab(number int64, createdAt, closedAt time.Time, total string, method tab.PaymentMethod) *tab.Tab {
	t := openTab(number, createdAt, total)
	paid := t.Total
	change := decimal.Zero
	t.Status = tab.StatusClosed
	t.ClosedAt = &closedAt
	t.PaymentMethod = &method
	t.AmountPaid = &paid
	t.Change = &change
	return t
}

func newTestService(tabs []*tab.Tab, opts ...Option) *Service {
	now := at(10, 21)
	base := []Option{WithLocation(saoPaulo), WithClock(func() time.Time { return now })}
	return NewService(&stubSource{tabs: tabs}, append(base, opts...)...)
}

// ==================== Summary ====================

func TestService_Summary(t *testing.T) {
	tabs := []*tab.Tab{
		closedTab(1, at(10, 18), at(10, 20), "100.00", tab.PaymentPix),
		closedTab(2, at(10, 18), at(10, 19), "50.00", tab.PaymentCash),
		closedTab(3, at(9, 18), at(9, 23), "120.00", tab.PaymentCard),
		closedTab(4, at(5, 18), at(5, 20), "30.00", tab.PaymentCash),
		closedTab(5, at(1, 18), at(1, 20), "999.00", tab.PaymentPix),
		openTab(6, at(10, 20), "45.00"),
	}
	svc := newTestService(tabs)

	s := svc.Summary(svc.Now())

	assert.Equal(t, "150", s.TodayRevenue.String())
	assert.Equal(t, "120", s.YesterdayRevenue.String())
	assert.Equal(t, "300", s.WeekRevenue.String())
	assert.Equal(t, "25", s.ChangePercent.String())
	assert.Equal(t, "1299", s.TotalRevenue.String())
	assert.Equal(t, "1099", s.PaymentBreakdown.Pix.String())
	assert.Equal(t, "120", s.PaymentBreakdown.Card.String())
	assert.Equal(t, "80", s.PaymentBreakdown.Cash.String())
	assert.Equal(t, 1, s.OpenTabs)
	assert.Equal(t, 5, s.ClosedTabs)

	require.Len(t, s.DailyRevenue, 7)
	assert.Equal(t, "2026-03-04", s.DailyRevenue[0].Date)
	assert.Equal(t, "2026-03-10", s.DailyRevenue[6].Date)
	assert.Equal(t, "150", s.DailyRevenue[6].Revenue.String())
	assert.Equal(t, 2, s.DailyRevenue[6].Tabs)
	assert.Equal(t, "120", s.DailyRevenue[5].Revenue.String())
	assert.Equal(t, "30", s.DailyRevenue[1].Revenue.String())
	assert.True(t, s.DailyRevenue[0].Revenue.IsZero())
}

func TestService_Summary_ChangePercent(t *testing.T) {
	tests := []struct {
		name      string
		today     string
		yesterday string
		expected  string
	}{
		{"no sales yesterday", "80.00", "0", "0"},
		{"drop", "50.00", "200.00", "-75"},
		{"rounded to one place", "10.00", "3.00", "233.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, changePercent(decimal.RequireFromString(tt.today), decimal.RequireFromString(tt.yesterday)).String())
		})
	}
}

func TestService_Summary_UsesLocalDay(t *testing.T) {
	// 02:00 UTC on the 10th is still the 9th in São Paulo
	closedAt := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
	svc := newTestService([]*tab.Tab{closedTab(1, at(9, 20), closedAt, "40.00", tab.PaymentPix)})

	s := svc.Summary(svc.Now())

	assert.True(t, s.TodayRevenue.IsZero())
	assert.Equal(t, "40", s.YesterdayRevenue.String())
}

func TestService_Summary_Empty(t *testing.T) {
	svc := newTestService(nil)

	s := svc.Summary(svc.Now())

	assert.True(t, s.TotalRevenue.IsZero())
	assert.True(t, s.ChangePercent.IsZero())
	assert.Len(t, s.DailyRevenue, 7)
}

// ==================== ClosedByDay ====================

func TestService_ClosedByDay(t *testing.T) {
	svc := newTestService([]*tab.Tab{
		closedTab(1, at(9, 18), at(9, 20), "10.00", tab.PaymentPix),
		closedTab(2, at(10, 18), at(10, 19), "20.00", tab.PaymentCash),
		openTab(3, at(10, 19), "5.00"),
		closedTab(4, at(10, 18), at(10, 20), "30.00", tab.PaymentCard),
	})

	groups := svc.ClosedByDay()

	require.Len(t, groups, 2)
	assert.Equal(t, "2026-03-10", groups[0].Date)
	assert.Equal(t, "50", groups[0].Revenue.String())
	require.Len(t, groups[0].Tabs, 2)
	assert.Equal(t, int64(4), groups[0].Tabs[0].Number)
	assert.Equal(t, "card", groups[0].Tabs[0].PaymentMethod)
	assert.Equal(t, "2026-03-09", groups[1].Date)
	assert.Equal(t, "10", groups[1].Revenue.String())
}

// ==================== Daily ====================

func dailyFixture() []*tab.Tab {
	return []*tab.Tab{
		closedTab(1, at(9, 18), at(9, 20), "10.00", tab.PaymentPix),
		closedTab(2, at(9, 22), at(10, 1), "25.00", tab.PaymentCash),
		openTab(3, at(9, 23), "7.00"),
		closedTab(4, at(10, 18), at(10, 19), "40.00", tab.PaymentCard),
	}
}

func TestService_Daily(t *testing.T) {
	svc := newTestService(dailyFixture())

	report, err := svc.Daily(context.Background(), at(9, 12))

	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", report.Date)
	assert.Equal(t, 3, report.TotalTabs)
	assert.Equal(t, 1, report.OpenTabs)
	assert.Equal(t, 1, report.ClosedTabs)
	assert.Equal(t, "10", report.TotalRevenue.String())
	assert.Equal(t, "10", report.PaymentBreakdown.Pix.String())
	assert.Equal(t, 1, report.PaymentBreakdown.PixCount)
	assert.Zero(t, report.PaymentBreakdown.CashCount)

	today, err := svc.Daily(context.Background(), svc.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, today.TotalTabs)
	assert.Equal(t, 2, today.ClosedTabs)
	assert.Equal(t, "65", today.TotalRevenue.String())
	assert.Equal(t, 1, today.PaymentBreakdown.CashCount)
	assert.Equal(t, 1, today.PaymentBreakdown.CardCount)
	assert.Zero(t, today.PaymentBreakdown.PixCount)
}

func TestService_PaymentCounts(t *testing.T) {
	svc := newTestService([]*tab.Tab{
		closedTab(1, at(10, 18), at(10, 19), "10.00", tab.PaymentPix),
		closedTab(2, at(10, 18), at(10, 19), "15.00", tab.PaymentPix),
		closedTab(3, at(10, 18), at(10, 20), "20.00", tab.PaymentCash),
		openTab(4, at(10, 20), "5.00"),
	})

	s := svc.Summary(svc.Now())

	assert.Equal(t, 2, s.PaymentBreakdown.PixCount)
	assert.Equal(t, "25", s.PaymentBreakdown.Pix.String())
	assert.Equal(t, 1, s.PaymentBreakdown.CashCount)
	assert.Zero(t, s.PaymentBreakdown.CardCount)
	assert.Equal(t, s.ClosedTabs, s.PaymentBreakdown.Count())
}

func TestService_Daily_Cache(t *testing.T) {
	t.Run("past day is served from cache", func(t *testing.T) {
		cache := new(MockCache)
		cached := &DailyReport{Date: "2026-03-09", TotalTabs: 42}
		cache.On("Get", mock.Anything, "2026-03-09").Return(cached, nil)
		svc := newTestService(dailyFixture(), WithCache(cache, time.Hour))

		report, err := svc.Daily(context.Background(), at(9, 12))

		require.NoError(t, err)
		assert.Equal(t, 42, report.TotalTabs)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("miss computes and stores", func(t *testing.T) {
		cache := new(MockCache)
		cache.On("Get", mock.Anything, "2026-03-09").Return(nil, ErrCacheMiss)
		cache.On("Set", mock.Anything, mock.AnythingOfType("*report.DailyReport"), time.Hour).Return(nil)
		svc := newTestService(dailyFixture(), WithCache(cache, time.Hour))

		report, err := svc.Daily(context.Background(), at(9, 12))

		require.NoError(t, err)
		assert.Equal(t, 3, report.TotalTabs)
		cache.AssertExpectations(t)
	})

	t.Run("today is never cached", func(t *testing.T) {
		cache := new(MockCache)
		svc := newTestService(dailyFixture(), WithCache(cache, time.Hour))

		_, err := svc.Daily(context.Background(), svc.Now())

		require.NoError(t, err)
		cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("cache errors fall back to computing", func(t *testing.T) {
		cache := new(MockCache)
		cache.On("Get", mock.Anything, "2026-03-09").Return(nil, errors.New("redis down"))
		cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
		svc := newTestService(dailyFixture(), WithCache(cache, time.Hour))

		report, err := svc.Daily(context.Background(), at(9, 12))

		require.NoError(t, err)
		assert.Equal(t, 3, report.TotalTabs)
	})

	t.Run("nothing is cached before the source loads", func(t *testing.T) {
		cache := new(MockCache)
		source := &stubSource{unloaded: true}
		now := at(10, 21)
		svc := NewService(source,
			WithCache(cache, time.Hour),
			WithLocation(saoPaulo),
			WithClock(func() time.Time { return now }),
		)

		empty, err := svc.Daily(context.Background(), at(9, 12))
		require.NoError(t, err)
		assert.Zero(t, empty.TotalTabs)
		cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)

		source.tabs = dailyFixture()
		source.unloaded = false
		cache.On("Get", mock.Anything, "2026-03-09").Return(nil, ErrCacheMiss)
		cache.On("Set", mock.Anything, mock.AnythingOfType("*report.DailyReport"), time.Hour).Return(nil)

		loaded, err := svc.Daily(context.Background(), at(9, 12))
		require.NoError(t, err)
		assert.Equal(t, 3, loaded.TotalTabs)
		cache.AssertExpectations(t)
	})
}

func TestService_InvalidateAll(t *testing.T) {
	t.Run("clears the cache", func(t *testing.T) {
		cache := new(MockCache)
		cache.On("Clear", mock.Anything).Return(nil)
		svc := newTestService(nil, WithCache(cache, time.Hour))

		svc.InvalidateAll(context.Background())

		cache.AssertExpectations(t)
	})

	t.Run("clear errors are only logged", func(t *testing.T) {
		cache := new(MockCache)
		cache.On("Clear", mock.Anything).Return(errors.New("redis down"))
		svc := newTestService(nil, WithCache(cache, time.Hour))

		assert.NotPanics(t, func() { svc.InvalidateAll(context.Background()) })
		cache.AssertExpectations(t)
	})

	t.Run("without a cache it does nothing", func(t *testing.T) {
		svc := newTestService(nil)
		assert.NotPanics(t, func() { svc.InvalidateAll(context.Background()) })
	})
}

func TestService_ParseDate(t *testing.T) {
	svc := newTestService(nil)

	day, err := svc.ParseDate("2026-03-09")
	require.NoError(t, err)
	assert.True(t, day.Equal(at(9, 0)))

	_, err = svc.ParseDate("09/03/2026")
	assert.Error(t, err)
}

// ==================== CacheInvalidationHandler ====================

func TestCacheInvalidationHandler(t *testing.T) {
	t.Run("drops the opening and closing days", func(t *testing.T) {
		cache := new(MockCache)
		cache.On("Delete", mock.Anything, "2026-03-09").Return(nil)
		cache.On("Delete", mock.Anything, "2026-03-10").Return(nil)
		svc := newTestService(nil, WithCache(cache, time.Hour))
		handler := NewCacheInvalidationHandler(svc, nil)
		closed := closedTab(7, at(9, 23), at(10, 1), "25.00", tab.PaymentCash)

		err := handler.Handle(context.Background(), tab.NewTabClosedEvent(closed))

		require.NoError(t, err)
		cache.AssertExpectations(t)
		assert.Equal(t, []string{tab.EventTypeTabClosed}, handler.EventTypes())
	})

	t.Run("rejects other events", func(t *testing.T) {
		svc := newTestService(nil)
		handler := NewCacheInvalidationHandler(svc, nil)
		opened, err := tab.NewTab(tab.Customer{Name: "Ana"})
		require.NoError(t, err)

		err = handler.Handle(context.Background(), tab.NewTabOpenedEvent(opened))

		assert.Error(t, err)
	})
}
