package handler

import (
	"net/http"
	"strconv"

	"github.com/gestaofin/orcamento-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Dashboard — GET /v1/companies/{companyId}/kpis
// ============================================================

func getKPIsHandler(svc *service.KPIService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/companies/{companyId}/kpis")
		defer span.End()

		companyID := chi.URLParam(r, "companyId")
		period := r.URL.Query().Get("period")
		span.SetAttributes(
			attribute.String("company.id", companyID),
			attribute.String("period", period),
		)

		summary, err := svc.Summary(ctx, companyID, period)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

// ============================================================
// Dashboard — GET /v1/companies/{companyId}/dashboard/categories
// ============================================================

func getCategoryBreakdownHandler(svc *service.KPIService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/companies/{companyId}/dashboard/categories")
		defer span.End()

		companyID := chi.URLParam(r, "companyId")
		period := r.URL.Query().Get("period")

		categories, err := svc.CategoryBreakdown(ctx, companyID, period)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"categories": categories,
		})
	}
}

// ============================================================
// Dashboard — GET /v1/companies/{companyId}/dashboard/monthly
// ============================================================

func getMonthlySeriesHandler(svc *service.KPIService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/companies/{companyId}/dashboard/monthly")
		defer span.End()

		companyID := chi.URLParam(r, "companyId")

		months := 0
		if v := r.URL.Query().Get("months"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 36 {
				months = n
			}
		}

		points, err := svc.MonthlySeries(ctx, companyID, months)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"points": points,
		})
	}
}
