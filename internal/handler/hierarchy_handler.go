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
// Plano de contas — GET /v1/companies/{companyId}/hierarchy
// ============================================================

func getHierarchyHandler(svc *service.HierarchyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/companies/{companyId}/hierarchy")
		defer span.End()

		companyID := chi.URLParam(r, "companyId")
		span.SetAttributes(attribute.String("company.id", companyID))

		tree, err := svc.Tree(ctx, companyID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, tree)
	}
}

// ============================================================
// Permissões — POST /v1/users/{userId}/permissions/accounts
// ============================================================

type grantPermissionsRequest struct {
	Selections []domain.AccountPathSelection `json:"selections"`
}

func grantPermissionsHandler(svc *service.HierarchyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/users/{userId}/permissions/accounts")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		span.SetAttributes(attribute.String("user.id", userID))

		var req grantPermissionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		paths, err := svc.GrantPaths(ctx, userID, req.Selections)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"user_id": userID,
			"paths":   paths,
			"total":   len(paths),
		})
	}
}

// ============================================================
// Permissões — DELETE /v1/users/{userId}/permissions/accounts
// ============================================================

type revokePermissionRequest struct {
	Path string `json:"path"`
}

func revokePermissionHandler(svc *service.HierarchyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/users/{userId}/permissions/accounts")
		defer span.End()

		userID := chi.URLParam(r, "userId")

		var req revokePermissionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		paths, err := svc.RevokePath(ctx, userID, req.Path)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"user_id": userID,
			"paths":   paths,
			"total":   len(paths),
		})
	}
}

// ============================================================
// Permissões — DELETE /v1/users/{userId}/permissions/accounts/all
// ============================================================

func clearPermissionsHandler(svc *service.HierarchyService, users *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/users/{userId}/permissions/accounts/all")
		defer span.End()

		userID := chi.URLParam(r, "userId")

		if _, err := users.Get(ctx, userID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if err := svc.ClearPaths(ctx, userID); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"user_id": userID,
			"paths":   []string{},
			"total":   0,
		})
	}
}
