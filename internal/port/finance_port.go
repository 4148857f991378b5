package port

import (
	"context"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
)

// HierarchyStore loads chart-of-accounts leaves for a company.
type HierarchyStore interface {
	// ListHierarchyRows returns all leaves for a company ordered
	// level_1 → level_2 → analytical_account ascending.
	ListHierarchyRows(ctx context.Context, companyID string) ([]domain.AccountHierarchyRow, error)
}

// TransactionStore defines data operations for posted entries.
type TransactionStore interface {
	ListTransactions(ctx context.Context, companyID string, from, to time.Time) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, companyID, txID string) (*domain.Transaction, error)
	CreateTransaction(ctx context.Context, userID string, req *domain.TransactionRequest) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, txID string, req *domain.TransactionRequest) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, txID string) error
}

// BudgetStore defines data operations for budgets.
type BudgetStore interface {
	ListBudgets(ctx context.Context, companyID string) ([]domain.Budget, error)
	GetBudget(ctx context.Context, companyID, budgetID string) (*domain.Budget, error)
	CreateBudget(ctx context.Context, req *domain.BudgetRequest) (*domain.Budget, error)
	UpdateBudget(ctx context.Context, budgetID string, req *domain.BudgetRequest) (*domain.Budget, error)
	DeleteBudget(ctx context.Context, budgetID string) error
}
