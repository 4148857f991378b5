package domain

import "github.com/shopspring/decimal"

// Period types for KPI windowing.
const (
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
	PeriodYTD     = "ytd"
)

// Trend is a period-over-period indicator: formatted percentage change
// and whether it points up. previous = 0 yields {"0%", false}, never a
// division by zero.
type Trend struct {
	Value      string `json:"value"`
	IsPositive bool   `json:"is_positive"`
}

// KPISummary holds the four headline figures for a period plus their
// trends versus the immediately preceding equivalent period.
type KPISummary struct {
	Period            string          `json:"period"`
	StartDate         string          `json:"start_date"`
	EndDate           string          `json:"end_date"`
	Budget            decimal.Decimal `json:"budget"`
	Realized          decimal.Decimal `json:"realized"`
	Available         decimal.Decimal `json:"available"`
	Variation         float64         `json:"variation_pct"`
	BudgetIsEstimated bool            `json:"budget_is_estimated"`

	BudgetTrend    Trend `json:"budget_trend"`
	RealizedTrend  Trend `json:"realized_trend"`
	AvailableTrend Trend `json:"available_trend"`
	VariationTrend Trend `json:"variation_trend"`
}

// CategorySum is one slice of the dashboard category breakdown.
type CategorySum struct {
	Level1Group string          `json:"level_1_group"`
	Total       decimal.Decimal `json:"total"`
}

// MonthlyPoint is one point of the dashboard monthly series.
type MonthlyPoint struct {
	Month    string          `json:"month"` // "2006-01"
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
}
