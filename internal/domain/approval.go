// Package domain holds the core entities of the budgeting and approval system.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Stored approval status values (what the Supabase tables hold).
const (
	ApprovalStoredPending  = "PENDING"
	ApprovalStoredApproved = "APPROVED"
	ApprovalStoredRejected = "REJECTED"
)

// Domain-facing approval status values (what the dashboard shows).
const (
	ApprovalPendente  = "PENDENTE"
	ApprovalAprovado  = "APROVADO"
	ApprovalReprovado = "REPROVADO"
)

// Decision values accepted by the bulk execute endpoint.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// ApprovalStatusToDomain maps a stored status to the domain vocabulary.
// Unknown values map to PENDENTE so a bad row never renders as decided.
func ApprovalStatusToDomain(stored string) string {
	switch strings.ToUpper(strings.TrimSpace(stored)) {
	case ApprovalStoredApproved:
		return ApprovalAprovado
	case ApprovalStoredRejected:
		return ApprovalReprovado
	default:
		return ApprovalPendente
	}
}

// ApprovalStatusToStored maps a domain status to the stored vocabulary.
func ApprovalStatusToStored(status string) string {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case ApprovalAprovado:
		return ApprovalStoredApproved
	case ApprovalReprovado:
		return ApprovalStoredRejected
	default:
		return ApprovalStoredPending
	}
}

// ApprovalItem is a financial line awaiting (or past) an accept/reject decision.
// Created by transaction submission; mutated only via approve/reject actions.
type ApprovalItem struct {
	ID                string          `json:"id"`
	CompanyID         string          `json:"company_id"`
	TransactionDate   string          `json:"transaction_date"`
	Level1Group       string          `json:"level_1_group"`
	Level2Group       string          `json:"level_2_group"`
	AnalyticalAccount string          `json:"analytical_account"`
	Amount            decimal.Decimal `json:"amount"`
	Requester         string          `json:"requester"`
	Status            string          `json:"status"` // domain vocabulary
	Period            string          `json:"period"`
	ApprovalLevel     int             `json:"approval_level"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ApprovalHistoryItem is one append-only audit entry for an approval item.
type ApprovalHistoryItem struct {
	ID             string    `json:"id"`
	ApprovalItemID string    `json:"approval_item_id"`
	UserID         string    `json:"user_id"`
	Action         string    `json:"action"`
	Comment        string    `json:"comment,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ApprovalFilters scope an approval listing. CompanyID is mandatory.
type ApprovalFilters struct {
	CompanyID string
	Period    string
	Status    string // domain vocabulary, empty or "TODOS" = all
}

// ExecuteApprovalRequest is a bulk accept/reject action.
type ExecuteApprovalRequest struct {
	IDs      []string `json:"ids"`
	Decision string   `json:"decision"`
	Comment  string   `json:"comment,omitempty"`
}

// ExecuteApprovalResult summarizes a bulk decision.
type ExecuteApprovalResult struct {
	Action          string   `json:"action"`
	Updated         int      `json:"updated"`
	SkippedIDs      []string `json:"skipped_ids,omitempty"`
	HistoryFailures int      `json:"history_failures,omitempty"`
}
