package port

import (
	"context"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
)

// ApprovalStore defines data operations for the approval workflow.
// Implemented by the Supabase adapter (or any other persistence layer).
// Status strings cross this boundary in the stored vocabulary
// (PENDING/APPROVED/REJECTED); the service maps to and from the domain one.
type ApprovalStore interface {
	// ListApprovals returns items matching the filters, newest first.
	ListApprovals(ctx context.Context, f domain.ApprovalFilters) ([]domain.ApprovalItem, error)

	// GetApprovalStatuses returns id → stored status for the given ids.
	// Ids that do not exist are absent from the map.
	GetApprovalStatuses(ctx context.Context, ids []string) (map[string]string, error)

	// UpdateApprovalStatus sets the stored status for every id in one
	// batched update.
	UpdateApprovalStatus(ctx context.Context, ids []string, storedStatus string) error

	// InsertApprovalHistory appends one audit entry.
	InsertApprovalHistory(ctx context.Context, h *domain.ApprovalHistoryItem) error

	// ListApprovalHistory returns the audit trail for one item, oldest first.
	ListApprovalHistory(ctx context.Context, approvalID string) ([]domain.ApprovalHistoryItem, error)
}
