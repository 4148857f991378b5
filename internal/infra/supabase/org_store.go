package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
)

// ============================================================
// OrgStore implementation — empresas + grupos via PostgREST
// ============================================================

// ListCompanies fetches every company, active first, name ascending.
func (c *Client) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCompanies")
	defer span.End()

	body, err := c.doGet(ctx, "empresas?order=status.asc,name.asc")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Company{}, nil
	}

	var rows []domain.Company
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode empresas: %w", err)
	}
	return rows, nil
}

// GetCompany fetches one company by id.
func (c *Client) GetCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCompany")
	defer span.End()

	path := fmt.Sprintf("empresas?id=eq.%s&limit=1", q(companyID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Company
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode empresa: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// CreateCompany inserts one company.
func (c *Client) CreateCompany(ctx context.Context, req *domain.CompanyRequest) (*domain.Company, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCompany")
	defer span.End()

	status := req.Status
	if status == "" {
		status = domain.CompanyActive
	}

	body, err := c.doPost(ctx, "empresas", map[string]any{
		"name":     req.Name,
		"status":   status,
		"group_id": nullable(req.GroupID),
	})
	if err != nil {
		return nil, err
	}

	var rows []domain.Company
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created empresa: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empresa insert returned no row")
	}
	return &rows[0], nil
}

// UpdateCompany patches one company.
func (c *Client) UpdateCompany(ctx context.Context, companyID string, req *domain.CompanyRequest) (*domain.Company, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCompany")
	defer span.End()

	updates := map[string]any{"name": req.Name}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.GroupID != "" {
		updates["group_id"] = req.GroupID
	}

	path := fmt.Sprintf("empresas?id=eq.%s", q(companyID))
	body, err := c.doPatch(ctx, path, updates)
	if err != nil {
		return nil, err
	}

	var rows []domain.Company
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode updated empresa: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// DeleteCompany removes one company.
func (c *Client) DeleteCompany(ctx context.Context, companyID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteCompany")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("empresas?id=eq.%s", q(companyID)))
}

// --- Groups ---

// ListGroups fetches every company group ordered by code.
func (c *Client) ListGroups(ctx context.Context) ([]domain.Group, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListGroups")
	defer span.End()

	body, err := c.doGet(ctx, "grupos?order=code.asc")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Group{}, nil
	}

	var rows []domain.Group
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode grupos: %w", err)
	}
	return rows, nil
}

// CreateGroup inserts one group.
func (c *Client) CreateGroup(ctx context.Context, req *domain.GroupRequest) (*domain.Group, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateGroup")
	defer span.End()

	body, err := c.doPost(ctx, "grupos", map[string]any{
		"name": req.Name,
		"code": req.Code,
	})
	if err != nil {
		return nil, err
	}

	var rows []domain.Group
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created grupo: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("grupo insert returned no row")
	}
	return &rows[0], nil
}

// UpdateGroup patches one group.
func (c *Client) UpdateGroup(ctx context.Context, groupID string, req *domain.GroupRequest) (*domain.Group, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateGroup")
	defer span.End()

	path := fmt.Sprintf("grupos?id=eq.%s", q(groupID))
	body, err := c.doPatch(ctx, path, map[string]any{
		"name": req.Name,
		"code": req.Code,
	})
	if err != nil {
		return nil, err
	}

	var rows []domain.Group
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode updated grupo: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// DeleteGroup removes one group.
func (c *Client) DeleteGroup(ctx context.Context, groupID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteGroup")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("grupos?id=eq.%s", q(groupID)))
}
