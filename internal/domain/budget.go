package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget statuses.
const (
	BudgetRascunho = "rascunho"
	BudgetAtivo    = "ativo"
	BudgetFechado  = "fechado"
)

// Budget is a planned spend envelope for a company over a date range.
type Budget struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"company_id"`
	Name           string          `json:"name"`
	PlannedAmount  decimal.Decimal `json:"planned_amount"`
	RealizedAmount decimal.Decimal `json:"realized_amount"`
	StartDate      string          `json:"start_date"` // "2006-01-02"
	EndDate        string          `json:"end_date"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

// BudgetRequest is the create/update payload for a budget.
type BudgetRequest struct {
	CompanyID     string          `json:"company_id"`
	Name          string          `json:"name"`
	PlannedAmount decimal.Decimal `json:"planned_amount"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	Status        string          `json:"status,omitempty"`
}
