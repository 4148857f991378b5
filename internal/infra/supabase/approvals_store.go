package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// ApprovalStore implementation — approval workflow via PostgREST
// ============================================================

// approvalRow maps the aprovacoes table columns. Status is stored in the
// backend vocabulary (PENDING/APPROVED/REJECTED).
type approvalRow struct {
	ID                string          `json:"id"`
	CompanyID         string          `json:"company_id"`
	TransactionDate   string          `json:"transaction_date"`
	Level1Group       string          `json:"level_1_group"`
	Level2Group       string          `json:"level_2_group"`
	AnalyticalAccount string          `json:"analytical_account"`
	Amount            decimal.Decimal `json:"amount"`
	Requester         string          `json:"requester"`
	Status            string          `json:"status"`
	Period            string          `json:"period"`
	ApprovalLevel     int             `json:"approval_level"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (r approvalRow) toDomain() domain.ApprovalItem {
	return domain.ApprovalItem{
		ID:                r.ID,
		CompanyID:         r.CompanyID,
		TransactionDate:   r.TransactionDate,
		Level1Group:       r.Level1Group,
		Level2Group:       r.Level2Group,
		AnalyticalAccount: r.AnalyticalAccount,
		Amount:            r.Amount,
		Requester:         r.Requester,
		Status:            domain.ApprovalStatusToDomain(r.Status),
		Period:            r.Period,
		ApprovalLevel:     r.ApprovalLevel,
		CreatedAt:         r.CreatedAt,
	}
}

// inList builds the value list for a PostgREST in.(...) filter, escaping
// each id so separators inside an id cannot rewrite the filter.
func inList(ids []string) string {
	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = q(id)
	}
	return strings.Join(escaped, ",")
}

// ListApprovals fetches approval items matching the filters, newest first.
func (c *Client) ListApprovals(ctx context.Context, f domain.ApprovalFilters) ([]domain.ApprovalItem, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListApprovals")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", f.CompanyID))

	path := fmt.Sprintf("aprovacoes?company_id=eq.%s&order=created_at.desc", q(f.CompanyID))
	if f.Period != "" {
		path += fmt.Sprintf("&period=eq.%s", q(f.Period))
	}
	if f.Status != "" {
		path += fmt.Sprintf("&status=eq.%s", domain.ApprovalStatusToStored(f.Status))
	}

	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.ApprovalItem{}, nil
	}

	var rows []approvalRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode aprovacoes: %w", err)
	}

	items := make([]domain.ApprovalItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toDomain())
	}
	return items, nil
}

// GetApprovalStatuses returns id → stored status for the given ids.
func (c *Client) GetApprovalStatuses(ctx context.Context, ids []string) (map[string]string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetApprovalStatuses")
	defer span.End()

	path := fmt.Sprintf("aprovacoes?id=in.(%s)&select=id,status", inList(ids))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode aprovacoes statuses: %w", err)
		}
	}

	statuses := make(map[string]string, len(rows))
	for _, r := range rows {
		statuses[r.ID] = r.Status
	}
	return statuses, nil
}

// UpdateApprovalStatus sets the stored status for every id in one batched
// PATCH.
func (c *Client) UpdateApprovalStatus(ctx context.Context, ids []string, storedStatus string) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateApprovalStatus")
	defer span.End()
	span.SetAttributes(attribute.Int("ids.count", len(ids)))

	path := fmt.Sprintf("aprovacoes?id=in.(%s)", inList(ids))
	_, err := c.doPatch(ctx, path, map[string]any{"status": storedStatus})
	return err
}

// historyRow maps the aprovacoes_historico table columns.
type historyRow struct {
	ID             string    `json:"id"`
	ApprovalItemID string    `json:"approval_item_id"`
	UserID         string    `json:"user_id"`
	Action         string    `json:"action"`
	Comment        string    `json:"comment"`
	CreatedAt      time.Time `json:"created_at"`
}

// InsertApprovalHistory appends one audit entry.
func (c *Client) InsertApprovalHistory(ctx context.Context, h *domain.ApprovalHistoryItem) error {
	ctx, span := tracer.Start(ctx, "Supabase.InsertApprovalHistory")
	defer span.End()

	_, err := c.doPost(ctx, "aprovacoes_historico", map[string]any{
		"approval_item_id": h.ApprovalItemID,
		"user_id":          h.UserID,
		"action":           h.Action,
		"comment":          h.Comment,
	})
	return err
}

// ListApprovalHistory fetches the audit trail for one item, oldest first.
func (c *Client) ListApprovalHistory(ctx context.Context, approvalID string) ([]domain.ApprovalHistoryItem, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListApprovalHistory")
	defer span.End()

	path := fmt.Sprintf("aprovacoes_historico?approval_item_id=eq.%s&order=created_at.asc", q(approvalID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.ApprovalHistoryItem{}, nil
	}

	var rows []historyRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode aprovacoes_historico: %w", err)
	}

	items := make([]domain.ApprovalHistoryItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, domain.ApprovalHistoryItem{
			ID:             r.ID,
			ApprovalItemID: r.ApprovalItemID,
			UserID:         r.UserID,
			Action:         r.Action,
			Comment:        r.Comment,
			CreatedAt:      r.CreatedAt,
		})
	}
	return items, nil
}
