package handler

import (
	"net/http"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/observability"
	"github.com/gestaofin/orcamento-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles the application services the router exposes.
type Services struct {
	Approvals    *service.ApprovalService
	Hierarchy    *service.HierarchyService
	KPIs         *service.KPIService
	Org          *service.OrgService
	Budgets      *service.BudgetService
	Transactions *service.TransactionService
	Registry     *service.RegistryService
	Users        *service.UserService
	Auth         *service.AuthService
}

// NewRouter creates the HTTP router with all routes and middleware.
// Everything under /v1 except the public auth endpoints requires a valid
// access token; management routes additionally require the admin role.
func NewRouter(svcs *Services, metrics *observability.Metrics, corsOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Org, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Autenticação (public)
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authRegisterHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
			r.Post("/refresh", authRefreshHandler(svcs.Auth, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Auth, logger))
				r.Post("/logout", authLogoutHandler(svcs.Auth, logger))
			})
		})

		// =============================================
		// Protected routes
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// Aprovações
			r.Get("/approvals", listApprovalsHandler(svcs.Approvals, logger))
			r.Post("/approvals/execute", executeApprovalsHandler(svcs.Approvals, logger))
			r.Get("/approvals/{approvalId}/history", approvalHistoryHandler(svcs.Approvals, logger))

			// Empresas e grupos (reads)
			r.Get("/companies", listCompaniesHandler(svcs.Org, logger))
			r.Get("/companies/{companyId}", getCompanyHandler(svcs.Org, logger))
			r.Get("/groups", listGroupsHandler(svcs.Org, logger))

			// Plano de contas
			r.Get("/companies/{companyId}/hierarchy", getHierarchyHandler(svcs.Hierarchy, logger))

			// Dashboard
			r.Get("/companies/{companyId}/kpis", getKPIsHandler(svcs.KPIs, logger))
			r.Get("/companies/{companyId}/dashboard/categories", getCategoryBreakdownHandler(svcs.KPIs, logger))
			r.Get("/companies/{companyId}/dashboard/monthly", getMonthlySeriesHandler(svcs.KPIs, logger))

			// Orçamentos
			r.Get("/companies/{companyId}/budgets", listBudgetsHandler(svcs.Budgets, logger))
			r.Get("/companies/{companyId}/budgets/{budgetId}", getBudgetHandler(svcs.Budgets, logger))
			r.Post("/companies/{companyId}/budgets", createBudgetHandler(svcs.Budgets, logger))
			r.Put("/companies/{companyId}/budgets/{budgetId}", updateBudgetHandler(svcs.Budgets, logger))
			r.Delete("/companies/{companyId}/budgets/{budgetId}", deleteBudgetHandler(svcs.Budgets, logger))

			// Lançamentos
			r.Get("/companies/{companyId}/transactions", listTransactionsHandler(svcs.Transactions, logger))
			r.Get("/companies/{companyId}/transactions/{transactionId}", getTransactionHandler(svcs.Transactions, logger))
			r.Post("/companies/{companyId}/transactions", createTransactionHandler(svcs.Transactions, logger))
			r.Put("/companies/{companyId}/transactions/{transactionId}", updateTransactionHandler(svcs.Transactions, logger))
			r.Delete("/companies/{companyId}/transactions/{transactionId}", deleteTransactionHandler(svcs.Transactions, logger))

			// Fornecedores
			r.Get("/companies/{companyId}/suppliers", listSuppliersHandler(svcs.Registry, logger))
			r.Post("/companies/{companyId}/suppliers", createSupplierHandler(svcs.Registry, logger))
			r.Put("/companies/{companyId}/suppliers/{supplierId}", updateSupplierHandler(svcs.Registry, logger))
			r.Delete("/companies/{companyId}/suppliers/{supplierId}", deleteSupplierHandler(svcs.Registry, logger))

			// Centros de custo
			r.Get("/companies/{companyId}/cost-centers", listCostCentersHandler(svcs.Registry, logger))
			r.Post("/companies/{companyId}/cost-centers", createCostCenterHandler(svcs.Registry, logger))
			r.Put("/companies/{companyId}/cost-centers/{costCenterId}", updateCostCenterHandler(svcs.Registry, logger))
			r.Delete("/companies/{companyId}/cost-centers/{costCenterId}", deleteCostCenterHandler(svcs.Registry, logger))

			// Colaboradores
			r.Get("/companies/{companyId}/collaborators", listCollaboratorsHandler(svcs.Registry, logger))
			r.Post("/companies/{companyId}/collaborators", createCollaboratorHandler(svcs.Registry, logger))
			r.Put("/companies/{companyId}/collaborators/{collaboratorId}", updateCollaboratorHandler(svcs.Registry, logger))
			r.Delete("/companies/{companyId}/collaborators/{collaboratorId}", deleteCollaboratorHandler(svcs.Registry, logger))

			// Usuários (reads)
			r.Get("/users", listUsersHandler(svcs.Users, logger))
			r.Get("/users/{userId}", getUserHandler(svcs.Users, logger))

			// =============================================
			// Admin-only management routes
			// =============================================
			r.Group(func(r chi.Router) {
				r.Use(AdminOnlyMiddleware(logger))

				r.Post("/companies", createCompanyHandler(svcs.Org, logger))
				r.Put("/companies/{companyId}", updateCompanyHandler(svcs.Org, logger))
				r.Delete("/companies/{companyId}", deleteCompanyHandler(svcs.Org, logger))

				r.Post("/groups", createGroupHandler(svcs.Org, logger))
				r.Put("/groups/{groupId}", updateGroupHandler(svcs.Org, logger))
				r.Delete("/groups/{groupId}", deleteGroupHandler(svcs.Org, logger))

				r.Put("/users/{userId}", updateUserHandler(svcs.Users, logger))
				r.Delete("/users/{userId}", deleteUserHandler(svcs.Users, logger))

				r.Post("/users/{userId}/permissions/accounts", grantPermissionsHandler(svcs.Hierarchy, logger))
				r.Delete("/users/{userId}/permissions/accounts", revokePermissionHandler(svcs.Hierarchy, logger))
				r.Delete("/users/{userId}/permissions/accounts/all", clearPermissionsHandler(svcs.Hierarchy, svcs.Users, logger))

				r.Get("/metrics/ops", opsMetricsHandler(metrics, logger))
			})
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(orgSvc *service.OrgService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "orcamento-bfa", Status: "healthy", LatencyMs: 0, UptimePercent: 99.99, LastChecked: now},
		}

		if orgSvc != nil {
			start := time.Now()
			_, err := orgSvc.ListCompanies(ctx)
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status, LatencyMs: latency,
				UptimePercent: 99.9, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		status := http.StatusOK
		if overallStatus == "unhealthy" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func opsMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/metrics/ops")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.GetOpsSnapshot())
	}
}
