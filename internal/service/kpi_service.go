package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/observability"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/resilience"
	"github.com/gestaofin/orcamento-bfa-go/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var kpiTracer = otel.Tracer("service/kpi")

const dateLayout = "2006-01-02"

// estimateFactor backs the budget fallback when no active budget covers
// the window: estimated budget = realized * 1.5.
var estimateFactor = decimal.NewFromFloat(1.5)

// KPIService computes the dashboard figures from posted transactions
// and active budgets. The bulkhead caps how many Supabase fetches the
// dashboard fan-out may run at once.
type KPIService struct {
	transactions port.TransactionStore
	budgets      port.BudgetStore
	cache        port.Cache[*domain.KPISummary]
	bulkhead     *resilience.Bulkhead
	metrics      *observability.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewKPIService creates a new KPI service.
func NewKPIService(transactions port.TransactionStore, budgets port.BudgetStore, cache port.Cache[*domain.KPISummary], bulkhead *resilience.Bulkhead, metrics *observability.Metrics, logger *zap.Logger) *KPIService {
	return &KPIService{
		transactions: transactions,
		budgets:      budgets,
		cache:        cache,
		bulkhead:     bulkhead,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
}

type dateWindow struct {
	start time.Time
	end   time.Time
}

// periodWindows resolves a period keyword into the current window and
// the immediately preceding equivalent window. YTD compares against the
// same year-to-date slice of the previous year.
func periodWindows(period string, now time.Time) (cur, prev dateWindow, err error) {
	y, m, d := now.Date()
	loc := now.Location()

	switch strings.ToLower(strings.TrimSpace(period)) {
	case domain.PeriodMonth, "":
		cur.start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		cur.end = cur.start.AddDate(0, 1, -1)
		prev.start = cur.start.AddDate(0, -1, 0)
		prev.end = cur.start.AddDate(0, 0, -1)
	case domain.PeriodQuarter:
		qm := time.Month((int(m)-1)/3*3 + 1)
		cur.start = time.Date(y, qm, 1, 0, 0, 0, 0, loc)
		cur.end = cur.start.AddDate(0, 3, -1)
		prev.start = cur.start.AddDate(0, -3, 0)
		prev.end = cur.start.AddDate(0, 0, -1)
	case domain.PeriodYear:
		cur.start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		cur.end = time.Date(y, time.December, 31, 0, 0, 0, 0, loc)
		prev.start = cur.start.AddDate(-1, 0, 0)
		prev.end = cur.end.AddDate(-1, 0, 0)
	case domain.PeriodYTD:
		cur.start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		cur.end = time.Date(y, m, d, 0, 0, 0, 0, loc)
		prev.start = cur.start.AddDate(-1, 0, 0)
		prev.end = cur.end.AddDate(-1, 0, 0)
	default:
		return cur, prev, &domain.ErrValidation{Field: "period", Message: fmt.Sprintf("período desconhecido: %s", period)}
	}
	return cur, prev, nil
}

// realizedTotal sums the absolute amounts of all non-revenue entries.
// Revenue rows do not count as spend.
func realizedTotal(txs []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if strings.EqualFold(NormalizeField(tx.Level1Group), domain.RevenueBucket) {
			continue
		}
		total = total.Add(tx.Amount.Abs())
	}
	return total
}

// budgetTotal sums planned amounts of active budgets overlapping the
// window. ok is false when no budget covers it.
func budgetTotal(budgets []domain.Budget, w dateWindow) (decimal.Decimal, bool) {
	total := decimal.Zero
	found := false
	for _, b := range budgets {
		if b.Status != domain.BudgetAtivo {
			continue
		}
		bs, err := time.Parse(dateLayout, b.StartDate)
		if err != nil {
			continue
		}
		be, err := time.Parse(dateLayout, b.EndDate)
		if err != nil {
			continue
		}
		if bs.After(w.end) || be.Before(w.start) {
			continue
		}
		total = total.Add(b.PlannedAmount)
		found = true
	}
	return total, found
}

// CalculateTrend formats the period-over-period change of a figure.
// A zero previous value yields {"0%", false} instead of a division by
// zero; otherwise the value is the absolute change with one decimal and
// IsPositive carries the direction.
func CalculateTrend(current, previous float64) domain.Trend {
	if previous == 0 {
		return domain.Trend{Value: "0%", IsPositive: false}
	}
	change := (current - previous) / previous * 100
	return domain.Trend{
		Value:      fmt.Sprintf("%.1f%%", math.Abs(change)),
		IsPositive: change >= 0,
	}
}

// Summary computes the four headline KPIs for a company and period,
// each with its trend against the preceding equivalent window.
func (s *KPIService) Summary(ctx context.Context, companyID, period string) (*domain.KPISummary, error) {
	ctx, span := kpiTracer.Start(ctx, "KPIService.Summary")
	defer span.End()
	span.SetAttributes(
		attribute.String("company_id", companyID),
		attribute.String("period", period),
	)

	if companyID == "" {
		return nil, &domain.ErrValidation{Field: "company_id", Message: "obrigatório"}
	}

	cur, prev, err := periodWindows(period, s.now())
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("kpi:%s:%s:%s", companyID, period, cur.start.Format(dateLayout))
	if summary, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("kpi")
		return summary, nil
	}
	s.metrics.IncrCacheMiss("kpi")

	var (
		curTxs, prevTxs []domain.Transaction
		budgets         []domain.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(s.guarded(gctx, func() error {
		var err error
		curTxs, err = s.transactions.ListTransactions(gctx, companyID, cur.start, cur.end)
		return err
	}))
	g.Go(s.guarded(gctx, func() error {
		var err error
		prevTxs, err = s.transactions.ListTransactions(gctx, companyID, prev.start, prev.end)
		return err
	}))
	g.Go(s.guarded(gctx, func() error {
		var err error
		budgets, err = s.budgets.ListBudgets(gctx, companyID)
		return err
	}))
	if err := g.Wait(); err != nil {
		s.metrics.IncrExternalError("supabase/lancamentos")
		return nil, &domain.ErrExternalService{Service: "supabase/lancamentos", Err: err}
	}

	realized := realizedTotal(curTxs)
	prevRealized := realizedTotal(prevTxs)

	budget, found := budgetTotal(budgets, cur)
	if !found {
		budget = realized.Mul(estimateFactor)
	}
	prevBudget, prevFound := budgetTotal(budgets, prev)
	if !prevFound {
		prevBudget = prevRealized.Mul(estimateFactor)
	}

	available := budget.Sub(realized)
	prevAvailable := prevBudget.Sub(prevRealized)

	variation := variationPct(realized, budget)
	prevVariation := variationPct(prevRealized, prevBudget)

	summary := &domain.KPISummary{
		Period:            period,
		StartDate:         cur.start.Format(dateLayout),
		EndDate:           cur.end.Format(dateLayout),
		Budget:            budget,
		Realized:          realized,
		Available:         available,
		Variation:         variation,
		BudgetIsEstimated: !found,
		BudgetTrend:       CalculateTrend(budget.InexactFloat64(), prevBudget.InexactFloat64()),
		RealizedTrend:     CalculateTrend(realized.InexactFloat64(), prevRealized.InexactFloat64()),
		AvailableTrend:    CalculateTrend(available.InexactFloat64(), prevAvailable.InexactFloat64()),
		VariationTrend:    CalculateTrend(variation, prevVariation),
	}

	s.cache.Set(key, summary)
	return summary, nil
}

// guarded wraps a fetch so it holds a bulkhead slot while running.
func (s *KPIService) guarded(ctx context.Context, fn func() error) func() error {
	return func() error {
		if err := s.bulkhead.Acquire(ctx); err != nil {
			return err
		}
		defer s.bulkhead.Release()
		return fn()
	}
}

// variationPct is realized as a percentage of budget, one decimal.
// A zero budget yields zero, not a division by zero.
func variationPct(realized, budget decimal.Decimal) float64 {
	if budget.IsZero() {
		return 0
	}
	pct := realized.Div(budget).Mul(decimal.NewFromInt(100)).InexactFloat64()
	return math.Round(pct*10) / 10
}

// CategoryBreakdown sums absolute spend per level_1 group over the
// current window. Revenue is excluded.
func (s *KPIService) CategoryBreakdown(ctx context.Context, companyID, period string) ([]domain.CategorySum, error) {
	ctx, span := kpiTracer.Start(ctx, "KPIService.CategoryBreakdown")
	defer span.End()

	if companyID == "" {
		return nil, &domain.ErrValidation{Field: "company_id", Message: "obrigatório"}
	}
	cur, _, err := periodWindows(period, s.now())
	if err != nil {
		return nil, err
	}

	txs, err := s.transactions.ListTransactions(ctx, companyID, cur.start, cur.end)
	if err != nil {
		s.metrics.IncrExternalError("supabase/lancamentos")
		return nil, &domain.ErrExternalService{Service: "supabase/lancamentos", Err: err}
	}

	sums := make(map[string]decimal.Decimal)
	var order []string
	for _, tx := range txs {
		group := NormalizeField(tx.Level1Group)
		if strings.EqualFold(group, domain.RevenueBucket) {
			continue
		}
		if _, ok := sums[group]; !ok {
			order = append(order, group)
		}
		sums[group] = sums[group].Add(tx.Amount.Abs())
	}

	out := make([]domain.CategorySum, 0, len(order))
	for _, group := range order {
		out = append(out, domain.CategorySum{Level1Group: group, Total: sums[group]})
	}
	return out, nil
}

// MonthlySeries returns revenue versus spend per month over the last
// `months` calendar months, oldest first.
func (s *KPIService) MonthlySeries(ctx context.Context, companyID string, months int) ([]domain.MonthlyPoint, error) {
	ctx, span := kpiTracer.Start(ctx, "KPIService.MonthlySeries")
	defer span.End()

	if companyID == "" {
		return nil, &domain.ErrValidation{Field: "company_id", Message: "obrigatório"}
	}
	if months <= 0 {
		months = 6
	}

	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)
	last := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, -1)

	txs, err := s.transactions.ListTransactions(ctx, companyID, first, last)
	if err != nil {
		s.metrics.IncrExternalError("supabase/lancamentos")
		return nil, &domain.ErrExternalService{Service: "supabase/lancamentos", Err: err}
	}

	points := make([]domain.MonthlyPoint, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		month := first.AddDate(0, i, 0).Format("2006-01")
		points[i] = domain.MonthlyPoint{Month: month}
		index[month] = i
	}

	for _, tx := range txs {
		i, ok := index[tx.TransactionDate.Format("2006-01")]
		if !ok {
			continue
		}
		if strings.EqualFold(NormalizeField(tx.Level1Group), domain.RevenueBucket) {
			points[i].Revenue = points[i].Revenue.Add(tx.Amount.Abs())
		} else {
			points[i].Expenses = points[i].Expenses.Add(tx.Amount.Abs())
		}
	}
	return points, nil
}
