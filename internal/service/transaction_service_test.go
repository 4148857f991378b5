package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/cache"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/observability"
	"github.com/gestaofin/orcamento-bfa-go/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type creatingTransactionStore struct {
	mockTransactionStore
	createdBy string
	created   *domain.TransactionRequest
}

func (m *creatingTransactionStore) CreateTransaction(_ context.Context, userID string, req *domain.TransactionRequest) (*domain.Transaction, error) {
	m.createdBy = userID
	m.created = req
	return &domain.Transaction{ID: "lan-1", CompanyID: req.CompanyID}, nil
}

func newTransactionService(store *creatingTransactionStore) *service.TransactionService {
	return service.NewTransactionService(store, cache.New[*domain.KPISummary](time.Minute), observability.NewMetrics(), zap.NewNop())
}

func validTransactionRequest() *domain.TransactionRequest {
	return &domain.TransactionRequest{
		CompanyID:         "emp-1",
		TransactionDate:   "2026-08-15",
		Level1Group:       "DESPESAS",
		Level2Group:       "Pessoal",
		AnalyticalAccount: "Salários",
		Amount:            decimal.NewFromInt(-1200),
		CompetencyMonths:  []string{"2026-08", "2026-09"},
	}
}

func TestTransactionCreate_Validation(t *testing.T) {
	svc := newTransactionService(&creatingTransactionStore{})

	tests := []struct {
		name   string
		mutate func(*domain.TransactionRequest)
	}{
		{"missing company", func(r *domain.TransactionRequest) { r.CompanyID = "" }},
		{"bad date", func(r *domain.TransactionRequest) { r.TransactionDate = "15/08/2026" }},
		{"missing level 1", func(r *domain.TransactionRequest) { r.Level1Group = "" }},
		{"missing analytical account", func(r *domain.TransactionRequest) { r.AnalyticalAccount = "" }},
		{"zero amount", func(r *domain.TransactionRequest) { r.Amount = decimal.Zero }},
		{"bad competency month", func(r *domain.TransactionRequest) { r.CompetencyMonths = []string{"ago/2026"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validTransactionRequest()
			tt.mutate(req)

			var validation *domain.ErrValidation
			_, err := svc.Create(context.Background(), "user-1", req)
			if !errors.As(err, &validation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestTransactionCreate_NormalizesHierarchyFields(t *testing.T) {
	store := &creatingTransactionStore{}
	svc := newTransactionService(store)

	req := validTransactionRequest()
	req.Level1Group = "  DESPESAS  "
	req.AnalyticalAccount = "Salários"

	if _, err := svc.Create(context.Background(), "user-1", req); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if store.created.Level1Group != "DESPESAS" {
		t.Errorf("level 1 not normalized: %q", store.created.Level1Group)
	}
	if store.created.AnalyticalAccount != "Salários" {
		t.Errorf("analytical account not NFC-normalized: %q", store.created.AnalyticalAccount)
	}
	if store.createdBy != "user-1" {
		t.Errorf("expected acting user on create, got %q", store.createdBy)
	}
}

func TestTransactionList_RequiresCompany(t *testing.T) {
	svc := newTransactionService(&creatingTransactionStore{})

	var validation *domain.ErrValidation
	_, err := svc.List(context.Background(), "", time.Time{}, time.Time{})
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTransactionGet_NotFound(t *testing.T) {
	svc := newTransactionService(&creatingTransactionStore{})

	var notFound *domain.ErrNotFound
	_, err := svc.Get(context.Background(), "emp-1", "lan-404")
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
