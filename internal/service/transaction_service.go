package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/observability"
	"github.com/gestaofin/orcamento-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var transactionTracer = otel.Tracer("service/transaction")

// TransactionService manages posted financial entries.
type TransactionService struct {
	store    port.TransactionStore
	kpiCache port.Cache[*domain.KPISummary]
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(store port.TransactionStore, kpiCache port.Cache[*domain.KPISummary], metrics *observability.Metrics, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		store:    store,
		kpiCache: kpiCache,
		metrics:  metrics,
		logger:   logger,
	}
}

// List returns a company's transactions within [from, to]. Zero times
// mean an open end of the range.
func (s *TransactionService) List(ctx context.Context, companyID string, from, to time.Time) ([]domain.Transaction, error) {
	ctx, span := transactionTracer.Start(ctx, "TransactionService.List")
	defer span.End()
	span.SetAttributes(attribute.String("company_id", companyID))

	if companyID == "" {
		return nil, &domain.ErrValidation{Field: "company_id", Message: "obrigatório"}
	}

	txs, err := s.store.ListTransactions(ctx, companyID, from, to)
	if err != nil {
		s.metrics.IncrExternalError("supabase/lancamentos")
		return nil, &domain.ErrExternalService{Service: "supabase/lancamentos", Err: err}
	}
	return txs, nil
}

// Get returns one transaction of a company.
func (s *TransactionService) Get(ctx context.Context, companyID, txID string) (*domain.Transaction, error) {
	ctx, span := transactionTracer.Start(ctx, "TransactionService.Get")
	defer span.End()

	tx, err := s.store.GetTransaction(ctx, companyID, txID)
	if err != nil {
		s.metrics.IncrExternalError("supabase/lancamentos")
		return nil, &domain.ErrExternalService{Service: "supabase/lancamentos", Err: err}
	}
	if tx == nil {
		return nil, &domain.ErrNotFound{Resource: "lançamento", ID: txID}
	}
	return tx, nil
}

// Create validates and posts a transaction on behalf of a user.
func (s *TransactionService) Create(ctx context.Context, userID string, req *domain.TransactionRequest) (*domain.Transaction, error) {
	ctx, span := transactionTracer.Start(ctx, "TransactionService.Create")
	defer span.End()

	if err := validateTransactionRequest(req); err != nil {
		return nil, err
	}
	normalizeTransactionRequest(req)

	tx, err := s.store.CreateTransaction(ctx, userID, req)
	if err != nil {
		s.metrics.IncrExternalError("supabase/lancamentos")
		return nil, &domain.ErrExternalService{Service: "supabase/lancamentos", Err: err}
	}

	s.kpiCache.DeletePrefix("kpi:" + req.CompanyID)
	s.logger.Info("transaction posted",
		zap.String("transaction_id", tx.ID),
		zap.String("company_id", tx.CompanyID),
		zap.String("created_by", userID),
	)
	return tx, nil
}

// Update validates and updates a transaction.
func (s *TransactionService) Update(ctx context.Context, txID string, req *domain.TransactionRequest) (*domain.Transaction, error) {
	ctx, span := transactionTracer.Start(ctx, "TransactionService.Update")
	defer span.End()

	if err := validateTransactionRequest(req); err != nil {
		return nil, err
	}
	normalizeTransactionRequest(req)

	tx, err := s.store.UpdateTransaction(ctx, txID, req)
	if err != nil {
		s.metrics.IncrExternalError("supabase/lancamentos")
		return nil, &domain.ErrExternalService{Service: "supabase/lancamentos", Err: err}
	}
	if tx == nil {
		return nil, &domain.ErrNotFound{Resource: "lançamento", ID: txID}
	}

	s.kpiCache.DeletePrefix("kpi:" + tx.CompanyID)
	return tx, nil
}

// Delete removes a transaction.
func (s *TransactionService) Delete(ctx context.Context, txID string) error {
	ctx, span := transactionTracer.Start(ctx, "TransactionService.Delete")
	defer span.End()

	if err := s.store.DeleteTransaction(ctx, txID); err != nil {
		s.metrics.IncrExternalError("supabase/lancamentos")
		return &domain.ErrExternalService{Service: "supabase/lancamentos", Err: err}
	}
	s.kpiCache.DeletePrefix("kpi:")
	return nil
}

func validateTransactionRequest(req *domain.TransactionRequest) error {
	if req.CompanyID == "" {
		return &domain.ErrValidation{Field: "company_id", Message: "obrigatório"}
	}
	if _, err := time.Parse(dateLayout, req.TransactionDate); err != nil {
		return &domain.ErrValidation{Field: "transaction_date", Message: "data inválida, use AAAA-MM-DD"}
	}
	if req.Level1Group == "" {
		return &domain.ErrValidation{Field: "level_1_group", Message: "obrigatório"}
	}
	if req.AnalyticalAccount == "" {
		return &domain.ErrValidation{Field: "analytical_account", Message: "obrigatório"}
	}
	if req.Amount.IsZero() {
		return &domain.ErrValidation{Field: "amount", Message: "não pode ser zero"}
	}
	for _, cm := range req.CompetencyMonths {
		if _, err := time.Parse("2006-01", cm); err != nil {
			return &domain.ErrValidation{Field: "competency_months", Message: fmt.Sprintf("mês inválido: %s, use AAAA-MM", cm)}
		}
	}
	return nil
}

// normalizeTransactionRequest canonicalizes the hierarchy fields so KPI
// grouping and permission matching compare equal for the same account.
func normalizeTransactionRequest(req *domain.TransactionRequest) {
	req.Level1Group = NormalizeField(req.Level1Group)
	req.Level2Group = NormalizeField(req.Level2Group)
	req.AnalyticalAccount = NormalizeField(req.AnalyticalAccount)
}
