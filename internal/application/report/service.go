// Package report computes revenue views over the tabs held by the Store.
package report

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/comanda/backend/internal/domain/tab"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	dateLayout      = "2006-01-02"
	summaryDays     = 7
	defaultCacheTTL = 24 * time.Hour
)

var hundred = decimal.NewFromInt(100)

// TabSource provides snapshot copies of every tab
type TabSource interface {
	ListTabs() []*tab.Tab
	// Loaded reports whether the tabs reflect storage; reports over an unloaded source are never cached
	Loaded() bool
}

// Service computes reports. Days are local to the configured location.
type Service struct {
	source   TabSource
	cache    Cache
	cacheTTL time.Duration
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithCache enables caching of past daily reports
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithLocation sets the time zone that defines a day
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a new report Service
func NewService(source TabSource, opts ...Option) *Service {
	s := &Service{
		source:   source,
		cacheTTL: defaultCacheTTL,
		location: time.Local,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current time in the report location
func (s *Service) Now() time.Time {
	return s.now().In(s.location)
}

// Location returns the report time zone
func (s *Service) Location() *time.Location {
	return s.location
}

// Summary computes the dashboard figures as of now
func (s *Service) Summary(now time.Time) *Summary {
	now = now.In(s.location)
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	yesterday := today.AddDate(0, 0, -1)
	weekAgo := now.Add(-summaryDays * 24 * time.Hour)
	firstDay := today.AddDate(0, 0, -(summaryDays - 1))

	out := &Summary{
		GeneratedAt:      now,
		TodayRevenue:     decimal.Zero,
		YesterdayRevenue: decimal.Zero,
		WeekRevenue:      decimal.Zero,
		ChangePercent:    decimal.Zero,
		PaymentBreakdown: zeroBreakdown(),
		DailyRevenue:     make([]DayRevenue, summaryDays),
	}
	for i := range out.DailyRevenue {
		out.DailyRevenue[i] = DayRevenue{
			Date:    firstDay.AddDate(0, 0, i).Format(dateLayout),
			Revenue: decimal.Zero,
		}
	}

	for _, t := range s.source.ListTabs() {
		if !t.IsClosed() || t.ClosedAt == nil {
			out.OpenTabs++
			continue
		}
		out.ClosedTabs++
		closedAt := t.ClosedAt.In(s.location)

		addPayment(&out.PaymentBreakdown, t)

		switch {
		case !closedAt.Before(today) && closedAt.Before(tomorrow):
			out.TodayRevenue = out.TodayRevenue.Add(t.Total)
		case !closedAt.Before(yesterday) && closedAt.Before(today):
			out.YesterdayRevenue = out.YesterdayRevenue.Add(t.Total)
		}
		if !closedAt.Before(weekAgo) {
			out.WeekRevenue = out.WeekRevenue.Add(t.Total)
		}
		if !closedAt.Before(firstDay) && closedAt.Before(tomorrow) {
			idx := daysBetween(firstDay, startOfDay(closedAt))
			out.DailyRevenue[idx].Revenue = out.DailyRevenue[idx].Revenue.Add(t.Total)
			out.DailyRevenue[idx].Tabs++
		}
	}

	out.TotalRevenue = out.PaymentBreakdown.Total()
	out.ChangePercent = changePercent(out.TodayRevenue, out.YesterdayRevenue)
	return out
}

// ClosedByDay groups closed tabs by the local day they were closed, newest day first
func (s *Service) ClosedByDay() []DayGroup {
	closed := make([]*tab.Tab, 0)
	for _, t := range s.source.ListTabs() {
		if t.IsClosed() && t.ClosedAt != nil {
			closed = append(closed, t)
		}
	}
	sort.SliceStable(closed, func(i, j int) bool {
		return closed[i].ClosedAt.After(*closed[j].ClosedAt)
	})

	groups := make([]DayGroup, 0)
	for _, t := range closed {
		date := t.ClosedAt.In(s.location).Format(dateLayout)
		if len(groups) == 0 || groups[len(groups)-1].Date != date {
			groups = append(groups, DayGroup{Date: date, Revenue: decimal.Zero})
		}
		g := &groups[len(groups)-1]
		g.Revenue = g.Revenue.Add(t.Total)
		g.Tabs = append(g.Tabs, ClosedTab{
			ID:            t.ID.String(),
			Number:        t.Number,
			CustomerName:  t.Customer.Name,
			ItemCount:     t.ItemCount(),
			Total:         t.Total,
			PaymentMethod: t.PaymentMethod.String(),
			ClosedAt:      *t.ClosedAt,
		})
	}
	return groups
}

// Daily returns the report of one local day. Reports of past days are served from the cache when one is set
// and the source has completed a load.
func (s *Service) Daily(ctx context.Context, date time.Time) (*DailyReport, error) {
	day := startOfDay(date.In(s.location))
	key := day.Format(dateLayout)
	cacheable := s.cache != nil && s.source.Loaded() && day.Before(startOfDay(s.Now()))

	if cacheable {
		cached, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			return cached, nil
		case !errors.Is(err, ErrCacheMiss):
			s.logger.Warn("Report cache read failed", zap.String("date", key), zap.Error(err))
		}
	}

	report := s.computeDaily(day)

	if cacheable {
		if err := s.cache.Set(ctx, report, s.cacheTTL); err != nil {
			s.logger.Warn("Report cache write failed", zap.String("date", key), zap.Error(err))
		}
	}
	return report, nil
}

// Invalidate drops the cached reports of the days a tab was opened and closed on
func (s *Service) Invalidate(ctx context.Context, times ...time.Time) {
	if s.cache == nil {
		return
	}
	for _, ts := range times {
		if ts.IsZero() {
			continue
		}
		key := ts.In(s.location).Format(dateLayout)
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warn("Report cache invalidation failed", zap.String("date", key), zap.Error(err))
		}
	}
}

// InvalidateAll drops every cached report. It runs after the source reloads from storage.
func (s *Service) InvalidateAll(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Clear(ctx); err != nil {
		s.logger.Warn("Report cache clear failed", zap.Error(err))
		return
	}
	s.logger.Debug("Report cache cleared")
}

// ParseDate parses YYYY-MM-DD in the report location
func (s *Service) ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, value, s.location)
}

func (s *Service) computeDaily(day time.Time) *DailyReport {
	next := day.AddDate(0, 0, 1)
	out := &DailyReport{
		Date:             day.Format(dateLayout),
		TotalRevenue:     decimal.Zero,
		PaymentBreakdown: zeroBreakdown(),
	}
	within := func(ts time.Time) bool {
		ts = ts.In(s.location)
		return !ts.Before(day) && ts.Before(next)
	}

	for _, t := range s.source.ListTabs() {
		if within(t.CreatedAt) {
			out.TotalTabs++
			if t.IsOpen() {
				out.OpenTabs++
			}
		}
		if t.IsClosed() && t.ClosedAt != nil && within(*t.ClosedAt) {
			out.ClosedTabs++
			addPayment(&out.PaymentBreakdown, t)
		}
	}
	out.TotalRevenue = out.PaymentBreakdown.Total()
	return out
}

func zeroBreakdown() PaymentBreakdown {
	return PaymentBreakdown{Pix: decimal.Zero, Card: decimal.Zero, Cash: decimal.Zero}
}

func addPayment(b *PaymentBreakdown, t *tab.Tab) {
	if t.PaymentMethod == nil {
		return
	}
	switch *t.PaymentMethod {
	case tab.PaymentPix:
		b.Pix = b.Pix.Add(t.Total)
		b.PixCount++
	case tab.PaymentCard:
		b.Card = b.Card.Add(t.Total)
		b.CardCount++
	case tab.PaymentCash:
		b.Cash = b.Cash.Add(t.Total)
		b.CashCount++
	}
}

// changePercent is the change from previous to current in percent, 0 when previous is 0
func changePercent(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(1)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func daysBetween(from, to time.Time) int {
	days := 0
	for cur := from; cur.Before(to); cur = cur.AddDate(0, 0, 1) {
		days++
	}
	return days
}
