package port

import (
	"context"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
)

// OrgStore defines data operations for companies and groups.
type OrgStore interface {
	// Companies
	ListCompanies(ctx context.Context) ([]domain.Company, error)
	GetCompany(ctx context.Context, companyID string) (*domain.Company, error)
	CreateCompany(ctx context.Context, req *domain.CompanyRequest) (*domain.Company, error)
	UpdateCompany(ctx context.Context, companyID string, req *domain.CompanyRequest) (*domain.Company, error)
	DeleteCompany(ctx context.Context, companyID string) error

	// Groups
	ListGroups(ctx context.Context) ([]domain.Group, error)
	CreateGroup(ctx context.Context, req *domain.GroupRequest) (*domain.Group, error)
	UpdateGroup(ctx context.Context, groupID string, req *domain.GroupRequest) (*domain.Group, error)
	DeleteGroup(ctx context.Context, groupID string) error
}

// RegistryStore defines data operations for suppliers, cost centers
// and collaborators, all scoped by company.
type RegistryStore interface {
	ListSuppliers(ctx context.Context, companyID string) ([]domain.Supplier, error)
	CreateSupplier(ctx context.Context, s *domain.Supplier) (*domain.Supplier, error)
	UpdateSupplier(ctx context.Context, supplierID string, updates map[string]any) (*domain.Supplier, error)
	DeleteSupplier(ctx context.Context, supplierID string) error

	ListCostCenters(ctx context.Context, companyID string) ([]domain.CostCenter, error)
	CreateCostCenter(ctx context.Context, cc *domain.CostCenter) (*domain.CostCenter, error)
	UpdateCostCenter(ctx context.Context, costCenterID string, updates map[string]any) (*domain.CostCenter, error)
	DeleteCostCenter(ctx context.Context, costCenterID string) error

	ListCollaborators(ctx context.Context, companyID string) ([]domain.Collaborator, error)
	CreateCollaborator(ctx context.Context, c *domain.Collaborator) (*domain.Collaborator, error)
	UpdateCollaborator(ctx context.Context, collaboratorID string, updates map[string]any) (*domain.Collaborator, error)
	DeleteCollaborator(ctx context.Context, collaboratorID string) error
}
