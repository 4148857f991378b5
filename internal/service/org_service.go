package service

import (
	"context"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/observability"
	"github.com/gestaofin/orcamento-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var orgTracer = otel.Tracer("service/org")

// OrgService manages companies and their owning groups.
type OrgService struct {
	store   port.OrgStore
	users   port.UserStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewOrgService creates a new organization service.
func NewOrgService(store port.OrgStore, users port.UserStore, metrics *observability.Metrics, logger *zap.Logger) *OrgService {
	return &OrgService{
		store:   store,
		users:   users,
		metrics: metrics,
		logger:  logger,
	}
}

// ListCompanies returns all companies, active first.
func (s *OrgService) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	ctx, span := orgTracer.Start(ctx, "OrgService.ListCompanies")
	defer span.End()

	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		s.metrics.IncrExternalError("supabase/empresas")
		return nil, &domain.ErrExternalService{Service: "supabase/empresas", Err: err}
	}
	return companies, nil
}

// GetCompany returns one company by id.
func (s *OrgService) GetCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	ctx, span := orgTracer.Start(ctx, "OrgService.GetCompany")
	defer span.End()

	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		s.metrics.IncrExternalError("supabase/empresas")
		return nil, &domain.ErrExternalService{Service: "supabase/empresas", Err: err}
	}
	if company == nil {
		return nil, &domain.ErrNotFound{Resource: "empresa", ID: companyID}
	}
	return company, nil
}

// CreateCompany creates a company and grants the creating user access to
// it, so a freshly created company is immediately visible to its creator.
// The grant is a separate call: a failure there leaves the company
// created and is surfaced so the client can retry the grant.
func (s *OrgService) CreateCompany(ctx context.Context, creatorUserID string, req *domain.CompanyRequest) (*domain.Company, error) {
	ctx, span := orgTracer.Start(ctx, "OrgService.CreateCompany")
	defer span.End()
	span.SetAttributes(attribute.String("name", req.Name))

	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "obrigatório"}
	}

	company, err := s.store.CreateCompany(ctx, req)
	if err != nil {
		s.metrics.IncrExternalError("supabase/empresas")
		return nil, &domain.ErrExternalService{Service: "supabase/empresas", Err: err}
	}

	if err := s.users.GrantCompanyAccess(ctx, creatorUserID, company.ID); err != nil {
		s.logger.Error("company created but creator access grant failed",
			zap.String("company_id", company.ID),
			zap.String("user_id", creatorUserID),
			zap.Error(err),
		)
		return company, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}

	s.logger.Info("company created",
		zap.String("company_id", company.ID),
		zap.String("created_by", creatorUserID),
	)
	return company, nil
}

// UpdateCompany updates a company's mutable fields.
func (s *OrgService) UpdateCompany(ctx context.Context, companyID string, req *domain.CompanyRequest) (*domain.Company, error) {
	ctx, span := orgTracer.Start(ctx, "OrgService.UpdateCompany")
	defer span.End()

	if req.Status != "" && req.Status != domain.CompanyActive && req.Status != domain.CompanyInactive {
		return nil, &domain.ErrValidation{Field: "status", Message: "deve ser 'ativa' ou 'inativa'"}
	}

	company, err := s.store.UpdateCompany(ctx, companyID, req)
	if err != nil {
		s.metrics.IncrExternalError("supabase/empresas")
		return nil, &domain.ErrExternalService{Service: "supabase/empresas", Err: err}
	}
	if company == nil {
		return nil, &domain.ErrNotFound{Resource: "empresa", ID: companyID}
	}
	return company, nil
}

// DeleteCompany removes a company.
func (s *OrgService) DeleteCompany(ctx context.Context, companyID string) error {
	ctx, span := orgTracer.Start(ctx, "OrgService.DeleteCompany")
	defer span.End()

	if err := s.store.DeleteCompany(ctx, companyID); err != nil {
		s.metrics.IncrExternalError("supabase/empresas")
		return &domain.ErrExternalService{Service: "supabase/empresas", Err: err}
	}
	s.logger.Info("company deleted", zap.String("company_id", companyID))
	return nil
}

// ListGroups returns all groups ordered by code.
func (s *OrgService) ListGroups(ctx context.Context) ([]domain.Group, error) {
	ctx, span := orgTracer.Start(ctx, "OrgService.ListGroups")
	defer span.End()

	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		s.metrics.IncrExternalError("supabase/grupos")
		return nil, &domain.ErrExternalService{Service: "supabase/grupos", Err: err}
	}
	return groups, nil
}

// CreateGroup creates a company group.
func (s *OrgService) CreateGroup(ctx context.Context, req *domain.GroupRequest) (*domain.Group, error) {
	ctx, span := orgTracer.Start(ctx, "OrgService.CreateGroup")
	defer span.End()

	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "obrigatório"}
	}
	if req.Code == "" {
		return nil, &domain.ErrValidation{Field: "code", Message: "obrigatório"}
	}

	group, err := s.store.CreateGroup(ctx, req)
	if err != nil {
		s.metrics.IncrExternalError("supabase/grupos")
		return nil, &domain.ErrExternalService{Service: "supabase/grupos", Err: err}
	}
	return group, nil
}

// UpdateGroup updates a group's name or code.
func (s *OrgService) UpdateGroup(ctx context.Context, groupID string, req *domain.GroupRequest) (*domain.Group, error) {
	ctx, span := orgTracer.Start(ctx, "OrgService.UpdateGroup")
	defer span.End()

	group, err := s.store.UpdateGroup(ctx, groupID, req)
	if err != nil {
		s.metrics.IncrExternalError("supabase/grupos")
		return nil, &domain.ErrExternalService{Service: "supabase/grupos", Err: err}
	}
	if group == nil {
		return nil, &domain.ErrNotFound{Resource: "grupo", ID: groupID}
	}
	return group, nil
}

// DeleteGroup removes a group. Companies pointing at it keep their
// group_id; orphan cleanup is a backend concern.
func (s *OrgService) DeleteGroup(ctx context.Context, groupID string) error {
	ctx, span := orgTracer.Start(ctx, "OrgService.DeleteGroup")
	defer span.End()

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		s.metrics.IncrExternalError("supabase/grupos")
		return &domain.ErrExternalService{Service: "supabase/grupos", Err: err}
	}
	return nil
}
