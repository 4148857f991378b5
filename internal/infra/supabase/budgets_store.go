package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// BudgetStore implementation — orcamentos via PostgREST
// ============================================================

// ListBudgets fetches all budgets for a company.
func (c *Client) ListBudgets(ctx context.Context, companyID string) ([]domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBudgets")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", companyID))

	path := fmt.Sprintf("orcamentos?company_id=eq.%s&order=start_date.desc", q(companyID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Budget{}, nil
	}

	var rows []domain.Budget
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode orcamentos: %w", err)
	}
	return rows, nil
}

// GetBudget fetches one budget scoped to a company.
func (c *Client) GetBudget(ctx context.Context, companyID, budgetID string) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetBudget")
	defer span.End()

	path := fmt.Sprintf("orcamentos?company_id=eq.%s&id=eq.%s&limit=1", q(companyID), q(budgetID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Budget
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode orcamento: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// CreateBudget inserts one budget.
func (c *Client) CreateBudget(ctx context.Context, req *domain.BudgetRequest) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateBudget")
	defer span.End()

	status := req.Status
	if status == "" {
		status = domain.BudgetRascunho
	}

	body, err := c.doPost(ctx, "orcamentos", map[string]any{
		"company_id":     req.CompanyID,
		"name":           req.Name,
		"planned_amount": req.PlannedAmount,
		"start_date":     req.StartDate,
		"end_date":       req.EndDate,
		"status":         status,
	})
	if err != nil {
		return nil, err
	}

	var rows []domain.Budget
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created orcamento: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("orcamento insert returned no row")
	}
	return &rows[0], nil
}

// UpdateBudget patches one budget.
func (c *Client) UpdateBudget(ctx context.Context, budgetID string, req *domain.BudgetRequest) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateBudget")
	defer span.End()

	updates := map[string]any{
		"name":           req.Name,
		"planned_amount": req.PlannedAmount,
		"start_date":     req.StartDate,
		"end_date":       req.EndDate,
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}

	path := fmt.Sprintf("orcamentos?id=eq.%s", q(budgetID))
	body, err := c.doPatch(ctx, path, updates)
	if err != nil {
		return nil, err
	}

	var rows []domain.Budget
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode updated orcamento: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// DeleteBudget removes one budget.
func (c *Client) DeleteBudget(ctx context.Context, budgetID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteBudget")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("orcamentos?id=eq.%s", q(budgetID)))
}
