// Package service contains the application logic layered between the
// HTTP handlers and the Supabase-backed stores.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/observability"
	"github.com/gestaofin/orcamento-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var approvalTracer = otel.Tracer("service/approval")

// ApprovalService drives the approval workflow: filtered listings, bulk
// accept/reject decisions, and the per-item audit trail.
type ApprovalService struct {
	store   port.ApprovalStore
	cache   port.Cache[[]domain.ApprovalItem]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewApprovalService creates a new approval service.
func NewApprovalService(store port.ApprovalStore, cache port.Cache[[]domain.ApprovalItem], metrics *observability.Metrics, logger *zap.Logger) *ApprovalService {
	return &ApprovalService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// List returns approval items scoped to a company, optionally narrowed by
// period and status. CompanyID is mandatory: listings never span companies.
// Statuses cross the wire in the stored vocabulary and are returned in the
// domain one (PENDENTE/APROVADO/REPROVADO).
func (s *ApprovalService) List(ctx context.Context, f domain.ApprovalFilters) ([]domain.ApprovalItem, error) {
	ctx, span := approvalTracer.Start(ctx, "ApprovalService.List")
	defer span.End()

	if f.CompanyID == "" {
		return nil, &domain.ErrValidation{Field: "company_id", Message: "obrigatório"}
	}

	status, err := normalizeStatusFilter(f.Status)
	if err != nil {
		return nil, err
	}
	f.Status = status

	key := approvalCacheKey(f)
	if items, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("approvals")
		return items, nil
	}
	s.metrics.IncrCacheMiss("approvals")

	start := time.Now()
	items, err := s.store.ListApprovals(ctx, f)
	s.metrics.RecordRequestDuration("approvals.list", time.Since(start))
	if err != nil {
		s.metrics.IncrExternalError("supabase/aprovacoes")
		return nil, &domain.ErrExternalService{Service: "supabase/aprovacoes", Err: err}
	}

	s.cache.Set(key, items)
	return items, nil
}

// Execute applies one bulk accept/reject decision.
//
// Ids whose stored status is no longer PENDING are skipped rather than
// re-decided: a decision is only ever a PENDING → APPROVED or
// PENDING → REJECTED transition. The remaining ids are updated in one
// batched call; afterwards one audit entry per id is inserted
// sequentially, best-effort. A failed audit insert is logged and counted
// but never rolls back the status update nor blocks the following ids.
func (s *ApprovalService) Execute(ctx context.Context, userID string, req *domain.ExecuteApprovalRequest) (*domain.ExecuteApprovalResult, error) {
	ctx, span := approvalTracer.Start(ctx, "ApprovalService.Execute")
	defer span.End()
	span.SetAttributes(
		attribute.Int("ids.count", len(req.IDs)),
		attribute.String("decision", req.Decision),
	)

	if len(req.IDs) == 0 {
		return nil, &domain.ErrValidation{Field: "ids", Message: "ao menos um item é necessário"}
	}

	var targetStored, action string
	switch strings.ToLower(strings.TrimSpace(req.Decision)) {
	case domain.DecisionApprove:
		targetStored = domain.ApprovalStoredApproved
		action = domain.ApprovalAprovado
	case domain.DecisionReject:
		targetStored = domain.ApprovalStoredRejected
		action = domain.ApprovalReprovado
	default:
		return nil, &domain.ErrValidation{Field: "decision", Message: "deve ser 'approve' ou 'reject'"}
	}

	statuses, err := s.store.GetApprovalStatuses(ctx, req.IDs)
	if err != nil {
		s.metrics.IncrExternalError("supabase/aprovacoes")
		return nil, &domain.ErrExternalService{Service: "supabase/aprovacoes", Err: err}
	}

	eligible := make([]string, 0, len(req.IDs))
	var skipped []string
	for _, id := range req.IDs {
		if statuses[id] == domain.ApprovalStoredPending {
			eligible = append(eligible, id)
		} else {
			skipped = append(skipped, id)
		}
	}

	result := &domain.ExecuteApprovalResult{
		Action:     action,
		SkippedIDs: skipped,
	}
	if len(eligible) == 0 {
		s.logger.Warn("approval execute: no pending items in selection",
			zap.Int("requested", len(req.IDs)),
			zap.Int("skipped", len(skipped)),
		)
		return result, nil
	}

	start := time.Now()
	if err := s.store.UpdateApprovalStatus(ctx, eligible, targetStored); err != nil {
		s.metrics.IncrExternalError("supabase/aprovacoes")
		s.metrics.IncrRequest("error")
		return nil, &domain.ErrExternalService{Service: "supabase/aprovacoes", Err: err}
	}
	s.metrics.RecordRequestDuration("approvals.execute", time.Since(start))
	s.metrics.RecordDecisions(strings.ToLower(req.Decision), len(eligible))
	result.Updated = len(eligible)

	// The status transition above is the authoritative action; the audit
	// trail is best-effort and a partial trail is accepted.
	for _, id := range eligible {
		histErr := s.store.InsertApprovalHistory(ctx, &domain.ApprovalHistoryItem{
			ApprovalItemID: id,
			UserID:         userID,
			Action:         action,
			Comment:        req.Comment,
		})
		if histErr != nil {
			result.HistoryFailures++
			s.metrics.IncrHistoryFailure()
			s.logger.Error("approval execute: history insert failed",
				zap.String("approval_id", id),
				zap.String("action", action),
				zap.Error(histErr),
			)
		}
	}

	s.cache.DeletePrefix("approvals:")
	s.metrics.IncrRequest("success")

	s.logger.Info("approval decision executed",
		zap.String("user_id", userID),
		zap.String("action", action),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", len(result.SkippedIDs)),
		zap.Int("history_failures", result.HistoryFailures),
	)

	return result, nil
}

// History returns the audit trail for one approval item, oldest first.
func (s *ApprovalService) History(ctx context.Context, approvalID string) ([]domain.ApprovalHistoryItem, error) {
	ctx, span := approvalTracer.Start(ctx, "ApprovalService.History")
	defer span.End()

	if approvalID == "" {
		return nil, &domain.ErrValidation{Field: "approval_id", Message: "obrigatório"}
	}

	items, err := s.store.ListApprovalHistory(ctx, approvalID)
	if err != nil {
		s.metrics.IncrExternalError("supabase/aprovacoes_historico")
		return nil, &domain.ErrExternalService{Service: "supabase/aprovacoes_historico", Err: err}
	}
	return items, nil
}

// normalizeStatusFilter accepts the domain vocabulary case-insensitively.
// Empty, "todos" and "all" mean no status filter.
func normalizeStatusFilter(status string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "", "TODOS", "ALL":
		return "", nil
	case domain.ApprovalPendente:
		return domain.ApprovalPendente, nil
	case domain.ApprovalAprovado:
		return domain.ApprovalAprovado, nil
	case domain.ApprovalReprovado:
		return domain.ApprovalReprovado, nil
	default:
		return "", &domain.ErrValidation{Field: "status", Message: fmt.Sprintf("status desconhecido: %s", status)}
	}
}

func approvalCacheKey(f domain.ApprovalFilters) string {
	return fmt.Sprintf("approvals:%s:%s:%s", f.CompanyID, f.Period, f.Status)
}
