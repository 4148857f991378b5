package service

import (
	"context"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/observability"
	"github.com/gestaofin/orcamento-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var registryTracer = otel.Tracer("service/registry")

// RegistryService manages the company-scoped registries: suppliers,
// cost centers and collaborators.
type RegistryService struct {
	store   port.RegistryStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewRegistryService creates a new registry service.
func NewRegistryService(store port.RegistryStore, metrics *observability.Metrics, logger *zap.Logger) *RegistryService {
	return &RegistryService{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *RegistryService) ListSuppliers(ctx context.Context, companyID string) ([]domain.Supplier, error) {
	ctx, span := registryTracer.Start(ctx, "RegistryService.ListSuppliers")
	defer span.End()

	if companyID == "" {
		return nil, &domain.ErrValidation{Field: "company_id", Message: "obrigatório"}
	}
	suppliers, err := s.store.ListSuppliers(ctx, companyID)
	if err != nil {
		s.metrics.IncrExternalError("supabase/fornecedores")
		return nil, &domain.ErrExternalService{Service: "supabase/fornecedores", Err: err}
	}
	return suppliers, nil
}

func (s *RegistryService) CreateSupplier(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error) {
	ctx, span := registryTracer.Start(ctx, "RegistryService.CreateSupplier")
	defer span.End()

	if supplier.CompanyID == "" {
		return nil, &domain.ErrValidation{Field: "company_id", Message: "obrigatório"}
	}
	if supplier.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "obrigatório"}
	}
	created, err := s.store.CreateSupplier(ctx, supplier)
	if err != nil {
		s.metrics.IncrExternalError("supabase/fornecedores")
		return nil, &domain.ErrExternalService{Service: "supabase/fornecedores", Err: err}
	}
	return created, nil
}

func (s *RegistryService) UpdateSupplier(ctx context.Context, supplierID string, updates map[string]any) (*domain.Supplier, error) {
	ctx, span := registryTracer.Start(ctx, "RegistryService.UpdateSupplier")
	defer span.End()

	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "updates", Message: "nenhum campo para atualizar"}
	}
	updated, err := s.store.UpdateSupplier(ctx, supplierID, updates)
	if err != nil {
		s.metrics.IncrExternalError("supabase/fornecedores")
		return nil, &domain.ErrExternalService{Service: "supabase/fornecedores", Err: err}
	}
	if updated == nil {
		return nil, &domain.ErrNotFound{Resource: "fornecedor", ID: supplierID}
	}
	return updated, nil
}

func (s *RegistryService) DeleteSupplier(ctx context.Context, supplierID string) error {
	ctx, span := registryTracer.Start(ctx, "RegistryService.DeleteSupplier")
	defer span.End()

	if err := s.store.DeleteSupplier(ctx, supplierID); err != nil {
		s.metrics.IncrExternalError("supabase/fornecedores")
		return &domain.ErrExternalService{Service: "supabase/fornecedores", Err: err}
	}
	return nil
}

func (s *RegistryService) ListCostCenters(ctx context.Context, companyID string) ([]domain.CostCenter, error) {
	ctx, span := registryTracer.Start(ctx, "RegistryService.ListCostCenters")
	defer span.End()

	if companyID == "" {
		return nil, &domain.ErrValidation{Field: "company_id", Message: "obrigatório"}
	}
	centers, err := s.store.ListCostCenters(ctx, companyID)
	if err != nil {
		s.metrics.IncrExternalError("supabase/centros_custo")
		return nil, &domain.ErrExternalService{Service: "supabase/centros_custo", Err: err}
	}
	return centers, nil
}

func (s *RegistryService) CreateCostCenter(ctx context.Context, cc *domain.CostCenter) (*domain.CostCenter, error) {
	ctx, span := registryTracer.Start(ctx, "RegistryService.CreateCostCenter")
	defer span.End()

	if cc.CompanyID == "" {
		return nil, &domain.ErrValidation{Field: "company_id", Message: "obrigatório"}
	}
	if cc.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "obrigatório"}
	}
	created, err := s.store.CreateCostCenter(ctx, cc)
	if err != nil {
		s.metrics.IncrExternalError("supabase/centros_custo")
		return nil, &domain.ErrExternalService{Service: "supabase/centros_custo", Err: err}
	}
	return created, nil
}

func (s *RegistryService) UpdateCostCenter(ctx context.Context, costCenterID string, updates map[string]any) (*domain.CostCenter, error) {
	ctx, span := registryTracer.Start(ctx, "RegistryService.UpdateCostCenter")
	defer span.End()

	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "updates", Message: "nenhum campo para atualizar"}
	}
	updated, err := s.store.UpdateCostCenter(ctx, costCenterID, updates)
	if err != nil {
		s.metrics.IncrExternalError("supabase/centros_custo")
		return nil, &domain.ErrExternalService{Service: "supabase/centros_custo", Err: err}
	}
	if updated == nil {
		return nil, &domain.ErrNotFound{Resource: "centro de custo", ID: costCenterID}
	}
	return updated, nil
}

func (s *RegistryService) DeleteCostCenter(ctx context.Context, costCenterID string) error {
	ctx, span := registryTracer.Start(ctx, "RegistryService.DeleteCostCenter")
	defer span.End()

	if err := s.store.DeleteCostCenter(ctx, costCenterID); err != nil {
		s.metrics.IncrExternalError("supabase/centros_custo")
		return &domain.ErrExternalService{Service: "supabase/centros_custo", Err: err}
	}
	return nil
}

func (s *RegistryService) ListCollaborators(ctx context.Context, companyID string) ([]domain.Collaborator, error) {
	ctx, span := registryTracer.Start(ctx, "RegistryService.ListCollaborators")
	defer span.End()

	if companyID == "" {
		return nil, &domain.ErrValidation{Field: "company_id", Message: "obrigatório"}
	}
	collaborators, err := s.store.ListCollaborators(ctx, companyID)
	if err != nil {
		s.metrics.IncrExternalError("supabase/colaboradores")
		return nil, &domain.ErrExternalService{Service: "supabase/colaboradores", Err: err}
	}
	return collaborators, nil
}

func (s *RegistryService) CreateCollaborator(ctx context.Context, c *domain.Collaborator) (*domain.Collaborator, error) {
	ctx, span := registryTracer.Start(ctx, "RegistryService.CreateCollaborator")
	defer span.End()

	if c.CompanyID == "" {
		return nil, &domain.ErrValidation{Field: "company_id", Message: "obrigatório"}
	}
	if c.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "obrigatório"}
	}
	created, err := s.store.CreateCollaborator(ctx, c)
	if err != nil {
		s.metrics.IncrExternalError("supabase/colaboradores")
		return nil, &domain.ErrExternalService{Service: "supabase/colaboradores", Err: err}
	}
	return created, nil
}

func (s *RegistryService) UpdateCollaborator(ctx context.Context, collaboratorID string, updates map[string]any) (*domain.Collaborator, error) {
	ctx, span := registryTracer.Start(ctx, "RegistryService.UpdateCollaborator")
	defer span.End()

	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "updates", Message: "nenhum campo para atualizar"}
	}
	updated, err := s.store.UpdateCollaborator(ctx, collaboratorID, updates)
	if err != nil {
		s.metrics.IncrExternalError("supabase/colaboradores")
		return nil, &domain.ErrExternalService{Service: "supabase/colaboradores", Err: err}
	}
	if updated == nil {
		return nil, &domain.ErrNotFound{Resource: "colaborador", ID: collaboratorID}
	}
	return updated, nil
}

func (s *RegistryService) DeleteCollaborator(ctx context.Context, collaboratorID string) error {
	ctx, span := registryTracer.Start(ctx, "RegistryService.DeleteCollaborator")
	defer span.End()

	if err := s.store.DeleteCollaborator(ctx, collaboratorID); err != nil {
		s.metrics.IncrExternalError("supabase/colaboradores")
		return &domain.ErrExternalService{Service: "supabase/colaboradores", Err: err}
	}
	return nil
}
