package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// TransactionStore implementation — lancamentos via PostgREST
// ============================================================

const dateLayout = "2006-01-02"

// transactionRow maps the lancamentos table columns.
type transactionRow struct {
	domain.Transaction
	TransactionDate string `json:"transaction_date"`
}

func (r transactionRow) toDomain() domain.Transaction {
	t := r.Transaction
	if parsed, err := time.Parse(time.RFC3339, r.TransactionDate); err == nil {
		t.TransactionDate = parsed
	} else if parsed, err := time.Parse(dateLayout, r.TransactionDate); err == nil {
		t.TransactionDate = parsed
	}
	return t
}

// ListTransactions fetches entries for a company inside [from, to].
func (c *Client) ListTransactions(ctx context.Context, companyID string, from, to time.Time) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", companyID))

	path := fmt.Sprintf("lancamentos?company_id=eq.%s&order=transaction_date.desc", q(companyID))
	if !from.IsZero() {
		path += fmt.Sprintf("&transaction_date=gte.%s", from.Format(dateLayout))
	}
	if !to.IsZero() {
		path += fmt.Sprintf("&transaction_date=lte.%s", to.Format(dateLayout))
	}

	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Transaction{}, nil
	}

	var rows []transactionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode lancamentos: %w", err)
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for _, r := range rows {
		txs = append(txs, r.toDomain())
	}
	return txs, nil
}

// GetTransaction fetches one entry for a company.
func (c *Client) GetTransaction(ctx context.Context, companyID, txID string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTransaction")
	defer span.End()

	path := fmt.Sprintf("lancamentos?company_id=eq.%s&id=eq.%s&limit=1", q(companyID), q(txID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []transactionRow
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode lancamento: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	tx := rows[0].toDomain()
	return &tx, nil
}

// CreateTransaction inserts one entry.
func (c *Client) CreateTransaction(ctx context.Context, userID string, req *domain.TransactionRequest) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTransaction")
	defer span.End()

	body, err := c.doPost(ctx, "lancamentos", map[string]any{
		"company_id":         req.CompanyID,
		"transaction_date":   req.TransactionDate,
		"level_1_group":      req.Level1Group,
		"level_2_group":      req.Level2Group,
		"analytical_account": req.AnalyticalAccount,
		"amount":             req.Amount,
		"cost_center_id":     nullable(req.CostCenterID),
		"supplier_id":        nullable(req.SupplierID),
		"competency_months":  req.CompetencyMonths,
		"observations":       req.Observations,
		"created_by":         userID,
	})
	if err != nil {
		return nil, err
	}

	var rows []transactionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created lancamento: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("lancamento insert returned no row")
	}
	tx := rows[0].toDomain()
	return &tx, nil
}

// UpdateTransaction patches one entry.
func (c *Client) UpdateTransaction(ctx context.Context, txID string, req *domain.TransactionRequest) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateTransaction")
	defer span.End()

	path := fmt.Sprintf("lancamentos?id=eq.%s", q(txID))
	body, err := c.doPatch(ctx, path, map[string]any{
		"transaction_date":   req.TransactionDate,
		"level_1_group":      req.Level1Group,
		"level_2_group":      req.Level2Group,
		"analytical_account": req.AnalyticalAccount,
		"amount":             req.Amount,
		"cost_center_id":     nullable(req.CostCenterID),
		"supplier_id":        nullable(req.SupplierID),
		"competency_months":  req.CompetencyMonths,
		"observations":       req.Observations,
	})
	if err != nil {
		return nil, err
	}

	var rows []transactionRow
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode updated lancamento: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	tx := rows[0].toDomain()
	return &tx, nil
}

// DeleteTransaction removes one entry.
func (c *Client) DeleteTransaction(ctx context.Context, txID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTransaction")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("lancamentos?id=eq.%s", q(txID)))
}

// nullable maps an empty string to SQL NULL so optional foreign keys
// are not stored as empty strings.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
