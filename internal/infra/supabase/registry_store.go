package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
)

// ============================================================
// RegistryStore implementation — fornecedores, centros_custo,
// colaboradores via PostgREST
// ============================================================

// --- Suppliers ---

func (c *Client) ListSuppliers(ctx context.Context, companyID string) ([]domain.Supplier, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListSuppliers")
	defer span.End()

	path := fmt.Sprintf("fornecedores?company_id=eq.%s&order=name.asc", q(companyID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Supplier{}, nil
	}

	var rows []domain.Supplier
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode fornecedores: %w", err)
	}
	return rows, nil
}

func (c *Client) CreateSupplier(ctx context.Context, s *domain.Supplier) (*domain.Supplier, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateSupplier")
	defer span.End()

	body, err := c.doPost(ctx, "fornecedores", map[string]any{
		"company_id": s.CompanyID,
		"name":       s.Name,
		"document":   s.Document,
		"email":      s.Email,
		"phone":      s.Phone,
		"status":     s.Status,
	})
	if err != nil {
		return nil, err
	}
	return decodeOne[domain.Supplier](body, "fornecedor")
}

func (c *Client) UpdateSupplier(ctx context.Context, supplierID string, updates map[string]any) (*domain.Supplier, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateSupplier")
	defer span.End()

	body, err := c.doPatch(ctx, fmt.Sprintf("fornecedores?id=eq.%s", q(supplierID)), updates)
	if err != nil {
		return nil, err
	}
	s, err := decodeOne[domain.Supplier](body, "fornecedor")
	if err != nil {
		return nil, nil
	}
	return s, nil
}

func (c *Client) DeleteSupplier(ctx context.Context, supplierID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteSupplier")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("fornecedores?id=eq.%s", q(supplierID)))
}

// --- Cost centers ---

func (c *Client) ListCostCenters(ctx context.Context, companyID string) ([]domain.CostCenter, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCostCenters")
	defer span.End()

	path := fmt.Sprintf("centros_custo?company_id=eq.%s&order=code.asc", q(companyID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.CostCenter{}, nil
	}

	var rows []domain.CostCenter
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode centros_custo: %w", err)
	}
	return rows, nil
}

func (c *Client) CreateCostCenter(ctx context.Context, cc *domain.CostCenter) (*domain.CostCenter, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCostCenter")
	defer span.End()

	body, err := c.doPost(ctx, "centros_custo", map[string]any{
		"company_id": cc.CompanyID,
		"name":       cc.Name,
		"code":       cc.Code,
		"status":     cc.Status,
	})
	if err != nil {
		return nil, err
	}
	return decodeOne[domain.CostCenter](body, "centro_custo")
}

func (c *Client) UpdateCostCenter(ctx context.Context, costCenterID string, updates map[string]any) (*domain.CostCenter, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCostCenter")
	defer span.End()

	body, err := c.doPatch(ctx, fmt.Sprintf("centros_custo?id=eq.%s", q(costCenterID)), updates)
	if err != nil {
		return nil, err
	}
	cc, err := decodeOne[domain.CostCenter](body, "centro_custo")
	if err != nil {
		return nil, nil
	}
	return cc, nil
}

func (c *Client) DeleteCostCenter(ctx context.Context, costCenterID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteCostCenter")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("centros_custo?id=eq.%s", q(costCenterID)))
}

// --- Collaborators ---

func (c *Client) ListCollaborators(ctx context.Context, companyID string) ([]domain.Collaborator, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCollaborators")
	defer span.End()

	path := fmt.Sprintf("colaboradores?company_id=eq.%s&order=name.asc", q(companyID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Collaborator{}, nil
	}

	var rows []domain.Collaborator
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode colaboradores: %w", err)
	}
	return rows, nil
}

func (c *Client) CreateCollaborator(ctx context.Context, col *domain.Collaborator) (*domain.Collaborator, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCollaborator")
	defer span.End()

	body, err := c.doPost(ctx, "colaboradores", map[string]any{
		"company_id": col.CompanyID,
		"name":       col.Name,
		"email":      col.Email,
		"cargo":      col.Cargo,
		"status":     col.Status,
	})
	if err != nil {
		return nil, err
	}
	return decodeOne[domain.Collaborator](body, "colaborador")
}

func (c *Client) UpdateCollaborator(ctx context.Context, collaboratorID string, updates map[string]any) (*domain.Collaborator, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCollaborator")
	defer span.End()

	body, err := c.doPatch(ctx, fmt.Sprintf("colaboradores?id=eq.%s", q(collaboratorID)), updates)
	if err != nil {
		return nil, err
	}
	col, err := decodeOne[domain.Collaborator](body, "colaborador")
	if err != nil {
		return nil, nil
	}
	return col, nil
}

func (c *Client) DeleteCollaborator(ctx context.Context, collaboratorID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteCollaborator")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("colaboradores?id=eq.%s", q(collaboratorID)))
}

// decodeOne decodes a PostgREST representation response expected to hold
// exactly one row.
func decodeOne[T any](body []byte, resource string) (*T, error) {
	var rows []T
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode %s: %w", resource, err)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty representation", resource)
	}
	return &rows[0], nil
}
