package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueBucket is the level_1 group treated as revenue. Every other
// level_1 group is treated as spend regardless of amount sign.
const RevenueBucket = "RECEITA"

// Transaction is one posted financial entry. Amount is signed by the
// level_1 group convention: positive = revenue, negative = expense.
type Transaction struct {
	ID                string          `json:"id"`
	CompanyID         string          `json:"company_id"`
	TransactionDate   time.Time       `json:"transaction_date"`
	Level1Group       string          `json:"level_1_group"`
	Level2Group       string          `json:"level_2_group"`
	AnalyticalAccount string          `json:"analytical_account"`
	Amount            decimal.Decimal `json:"amount"`
	CostCenterID      string          `json:"cost_center_id,omitempty"`
	SupplierID        string          `json:"supplier_id,omitempty"`
	CompetencyMonths  []string        `json:"competency_months,omitempty"` // "YYYY-MM" tags
	Observations      string          `json:"observations,omitempty"`
	CreatedBy         string          `json:"created_by,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// TransactionRequest is the create/update payload for a transaction.
type TransactionRequest struct {
	CompanyID         string          `json:"company_id"`
	TransactionDate   string          `json:"transaction_date"` // "2006-01-02"
	Level1Group       string          `json:"level_1_group"`
	Level2Group       string          `json:"level_2_group"`
	AnalyticalAccount string          `json:"analytical_account"`
	Amount            decimal.Decimal `json:"amount"`
	CostCenterID      string          `json:"cost_center_id,omitempty"`
	SupplierID        string          `json:"supplier_id,omitempty"`
	CompetencyMonths  []string        `json:"competency_months,omitempty"`
	Observations      string          `json:"observations,omitempty"`
}
