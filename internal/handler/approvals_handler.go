package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Aprovações — GET /v1/approvals
// ============================================================

func listApprovalsHandler(svc *service.ApprovalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/approvals")
		defer span.End()

		filters := domain.ApprovalFilters{
			CompanyID: r.URL.Query().Get("company_id"),
			Period:    r.URL.Query().Get("period"),
			Status:    r.URL.Query().Get("status"),
		}
		span.SetAttributes(attribute.String("company.id", filters.CompanyID))

		items, err := svc.List(ctx, filters)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"items": items,
			"total": len(items),
		})
	}
}

// ============================================================
// Aprovações — POST /v1/approvals/execute
// ============================================================

func executeApprovalsHandler(svc *service.ApprovalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/approvals/execute")
		defer span.End()

		var req domain.ExecuteApprovalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := svc.Execute(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// ============================================================
// Aprovações — GET /v1/approvals/{approvalId}/history
// ============================================================

func approvalHistoryHandler(svc *service.ApprovalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/approvals/{approvalId}/history")
		defer span.End()

		approvalID := chi.URLParam(r, "approvalId")
		span.SetAttributes(attribute.String("approval.id", approvalID))

		entries, err := svc.History(ctx, approvalID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"approval_id": approvalID,
			"entries":     entries,
		})
	}
}
