package service

import (
	"context"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/observability"
	"github.com/gestaofin/orcamento-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var budgetTracer = otel.Tracer("service/budget")

// BudgetService manages planned spend envelopes.
type BudgetService struct {
	store    port.BudgetStore
	kpiCache port.Cache[*domain.KPISummary]
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewBudgetService creates a new budget service.
func NewBudgetService(store port.BudgetStore, kpiCache port.Cache[*domain.KPISummary], metrics *observability.Metrics, logger *zap.Logger) *BudgetService {
	return &BudgetService{
		store:    store,
		kpiCache: kpiCache,
		metrics:  metrics,
		logger:   logger,
	}
}

// List returns all budgets of a company, newest first.
func (s *BudgetService) List(ctx context.Context, companyID string) ([]domain.Budget, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.List")
	defer span.End()

	if companyID == "" {
		return nil, &domain.ErrValidation{Field: "company_id", Message: "obrigatório"}
	}

	budgets, err := s.store.ListBudgets(ctx, companyID)
	if err != nil {
		s.metrics.IncrExternalError("supabase/orcamentos")
		return nil, &domain.ErrExternalService{Service: "supabase/orcamentos", Err: err}
	}
	return budgets, nil
}

// Get returns one budget of a company.
func (s *BudgetService) Get(ctx context.Context, companyID, budgetID string) (*domain.Budget, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Get")
	defer span.End()

	budget, err := s.store.GetBudget(ctx, companyID, budgetID)
	if err != nil {
		s.metrics.IncrExternalError("supabase/orcamentos")
		return nil, &domain.ErrExternalService{Service: "supabase/orcamentos", Err: err}
	}
	if budget == nil {
		return nil, &domain.ErrNotFound{Resource: "orçamento", ID: budgetID}
	}
	return budget, nil
}

// Create validates and creates a budget. New budgets default to rascunho.
func (s *BudgetService) Create(ctx context.Context, req *domain.BudgetRequest) (*domain.Budget, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Create")
	defer span.End()

	if err := validateBudgetRequest(req); err != nil {
		return nil, err
	}

	budget, err := s.store.CreateBudget(ctx, req)
	if err != nil {
		s.metrics.IncrExternalError("supabase/orcamentos")
		return nil, &domain.ErrExternalService{Service: "supabase/orcamentos", Err: err}
	}

	s.kpiCache.DeletePrefix("kpi:" + req.CompanyID)
	s.logger.Info("budget created",
		zap.String("budget_id", budget.ID),
		zap.String("company_id", budget.CompanyID),
	)
	return budget, nil
}

// Update validates and updates a budget.
func (s *BudgetService) Update(ctx context.Context, budgetID string, req *domain.BudgetRequest) (*domain.Budget, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Update")
	defer span.End()

	if err := validateBudgetRequest(req); err != nil {
		return nil, err
	}

	budget, err := s.store.UpdateBudget(ctx, budgetID, req)
	if err != nil {
		s.metrics.IncrExternalError("supabase/orcamentos")
		return nil, &domain.ErrExternalService{Service: "supabase/orcamentos", Err: err}
	}
	if budget == nil {
		return nil, &domain.ErrNotFound{Resource: "orçamento", ID: budgetID}
	}

	s.kpiCache.DeletePrefix("kpi:" + budget.CompanyID)
	return budget, nil
}

// Delete removes a budget.
func (s *BudgetService) Delete(ctx context.Context, budgetID string) error {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Delete")
	defer span.End()

	if err := s.store.DeleteBudget(ctx, budgetID); err != nil {
		s.metrics.IncrExternalError("supabase/orcamentos")
		return &domain.ErrExternalService{Service: "supabase/orcamentos", Err: err}
	}
	s.kpiCache.DeletePrefix("kpi:")
	return nil
}

func validateBudgetRequest(req *domain.BudgetRequest) error {
	if req.CompanyID == "" {
		return &domain.ErrValidation{Field: "company_id", Message: "obrigatório"}
	}
	if req.Name == "" {
		return &domain.ErrValidation{Field: "name", Message: "obrigatório"}
	}
	if req.PlannedAmount.IsNegative() {
		return &domain.ErrValidation{Field: "planned_amount", Message: "não pode ser negativo"}
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return &domain.ErrValidation{Field: "start_date", Message: "data inválida, use AAAA-MM-DD"}
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return &domain.ErrValidation{Field: "end_date", Message: "data inválida, use AAAA-MM-DD"}
	}
	if end.Before(start) {
		return &domain.ErrValidation{Field: "end_date", Message: "deve ser posterior a start_date"}
	}
	switch req.Status {
	case "", domain.BudgetRascunho, domain.BudgetAtivo, domain.BudgetFechado:
	default:
		return &domain.ErrValidation{Field: "status", Message: "status desconhecido"}
	}
	return nil
}
