package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentBreakdown is revenue and closed tab count split by payment method
type PaymentBreakdown struct {
	Pix       decimal.Decimal `json:"pix"`
	Card      decimal.Decimal `json:"card"`
	Cash      decimal.Decimal `json:"cash"`
	PixCount  int             `json:"pix_count"`
	CardCount int             `json:"card_count"`
	CashCount int             `json:"cash_count"`
}

// Total returns the sum over all methods
func (b PaymentBreakdown) Total() decimal.Decimal {
	return b.Pix.Add(b.Card).Add(b.Cash)
}

// Count returns the number of paid tabs over all methods
func (b PaymentBreakdown) Count() int {
	return b.PixCount + b.CardCount + b.CashCount
}

// DayRevenue is the revenue of one local day
type DayRevenue struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Tabs    int             `json:"tabs"`
}

// Summary is the dashboard view over all tabs
type Summary struct {
	GeneratedAt      time.Time        `json:"generated_at"`
	TodayRevenue     decimal.Decimal  `json:"today_revenue"`
	YesterdayRevenue decimal.Decimal  `json:"yesterday_revenue"`
	WeekRevenue      decimal.Decimal  `json:"week_revenue"`
	ChangePercent    decimal.Decimal  `json:"change_percent"`
	TotalRevenue     decimal.Decimal  `json:"total_revenue"`
	PaymentBreakdown PaymentBreakdown `json:"payment_breakdown"`
	OpenTabs         int              `json:"open_tabs"`
	ClosedTabs       int              `json:"closed_tabs"`
	DailyRevenue     []DayRevenue     `json:"daily_revenue"`
}

// ClosedTab is the report line for one closed tab
type ClosedTab struct {
	ID            string          `json:"id"`
	Number        int64           `json:"number"`
	CustomerName  string          `json:"customer_name"`
	ItemCount     int             `json:"item_count"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	ClosedAt      time.Time       `json:"closed_at"`
}

// DayGroup is the set of tabs closed on one local day
type DayGroup struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Tabs    []ClosedTab     `json:"tabs"`
}

// DailyReport summarizes one local day.
// TotalTabs and OpenTabs count tabs opened that day; ClosedTabs and revenue count tabs closed that day.
type DailyReport struct {
	Date             string           `json:"date"`
	TotalTabs        int              `json:"total_tabs"`
	ClosedTabs       int              `json:"closed_tabs"`
	OpenTabs         int              `json:"open_tabs"`
	TotalRevenue     decimal.Decimal  `json:"total_revenue"`
	PaymentBreakdown PaymentBreakdown `json:"payment_breakdown"`
}
