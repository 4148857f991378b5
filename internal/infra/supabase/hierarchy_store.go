package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// HierarchyStore implementation — chart-of-accounts view
// ============================================================

// ListHierarchyRows fetches all chart-of-accounts leaves for a company
// from the denormalized view, ordered level_1 → level_2 → analytical.
func (c *Client) ListHierarchyRows(ctx context.Context, companyID string) ([]domain.AccountHierarchyRow, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListHierarchyRows")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", companyID))

	path := fmt.Sprintf(
		"vw_plano_contas?company_id=eq.%s&order=level_1.asc,level_2.asc,analytical_account.asc",
		q(companyID),
	)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.AccountHierarchyRow{}, nil
	}

	var rows []domain.AccountHierarchyRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode vw_plano_contas: %w", err)
	}
	return rows, nil
}
