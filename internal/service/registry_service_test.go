package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/observability"
	"github.com/gestaofin/orcamento-bfa-go/internal/service"

	"go.uber.org/zap"
)

type mockRegistryStore struct {
	suppliers     []domain.Supplier
	costCenters   []domain.CostCenter
	collaborators []domain.Collaborator

	listErr      error
	updateResult bool
	deletedID    string
	updates      map[string]any
}

func (m *mockRegistryStore) ListSuppliers(ctx context.Context, companyID string) ([]domain.Supplier, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.suppliers, nil
}

func (m *mockRegistryStore) CreateSupplier(ctx context.Context, s *domain.Supplier) (*domain.Supplier, error) {
	created := *s
	created.ID = "forn-new"
	m.suppliers = append(m.suppliers, created)
	return &created, nil
}

func (m *mockRegistryStore) UpdateSupplier(ctx context.Context, supplierID string, updates map[string]any) (*domain.Supplier, error) {
	if !m.updateResult {
		return nil, nil
	}
	m.updates = updates
	return &domain.Supplier{ID: supplierID}, nil
}

func (m *mockRegistryStore) DeleteSupplier(ctx context.Context, supplierID string) error {
	m.deletedID = supplierID
	return nil
}

func (m *mockRegistryStore) ListCostCenters(ctx context.Context, companyID string) ([]domain.CostCenter, error) {
	return m.costCenters, nil
}

func (m *mockRegistryStore) CreateCostCenter(ctx context.Context, cc *domain.CostCenter) (*domain.CostCenter, error) {
	created := *cc
	created.ID = "cc-new"
	return &created, nil
}

func (m *mockRegistryStore) UpdateCostCenter(ctx context.Context, costCenterID string, updates map[string]any) (*domain.CostCenter, error) {
	if !m.updateResult {
		return nil, nil
	}
	return &domain.CostCenter{ID: costCenterID}, nil
}

func (m *mockRegistryStore) DeleteCostCenter(ctx context.Context, costCenterID string) error {
	m.deletedID = costCenterID
	return nil
}

func (m *mockRegistryStore) ListCollaborators(ctx context.Context, companyID string) ([]domain.Collaborator, error) {
	return m.collaborators, nil
}

func (m *mockRegistryStore) CreateCollaborator(ctx context.Context, c *domain.Collaborator) (*domain.Collaborator, error) {
	created := *c
	created.ID = "col-new"
	return &created, nil
}

func (m *mockRegistryStore) UpdateCollaborator(ctx context.Context, collaboratorID string, updates map[string]any) (*domain.Collaborator, error) {
	if !m.updateResult {
		return nil, nil
	}
	return &domain.Collaborator{ID: collaboratorID}, nil
}

func (m *mockRegistryStore) DeleteCollaborator(ctx context.Context, collaboratorID string) error {
	m.deletedID = collaboratorID
	return nil
}

func newRegistryService(store *mockRegistryStore) *service.RegistryService {
	return service.NewRegistryService(store, observability.NewMetrics(), zap.NewNop())
}

func TestRegistryService_ListSuppliers_RequiresCompany(t *testing.T) {
	svc := newRegistryService(&mockRegistryStore{})

	_, err := svc.ListSuppliers(context.Background(), "")
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "company_id" {
		t.Errorf("field = %q, want company_id", verr.Field)
	}
}

func TestRegistryService_ListSuppliers_StoreFailure(t *testing.T) {
	store := &mockRegistryStore{listErr: errors.New("timeout")}
	svc := newRegistryService(store)

	_, err := svc.ListSuppliers(context.Background(), "emp-1")
	var eerr *domain.ErrExternalService
	if !errors.As(err, &eerr) {
		t.Fatalf("expected external service error, got %v", err)
	}
}

func TestRegistryService_CreateSupplier(t *testing.T) {
	store := &mockRegistryStore{}
	svc := newRegistryService(store)

	created, err := svc.CreateSupplier(context.Background(), &domain.Supplier{
		CompanyID: "emp-1",
		Name:      "Fornecedor Alfa",
		Document:  "12.345.678/0001-90",
	})
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	if created.ID != "forn-new" {
		t.Errorf("ID = %q, want forn-new", created.ID)
	}
}

func TestRegistryService_CreateSupplier_Validation(t *testing.T) {
	svc := newRegistryService(&mockRegistryStore{})

	cases := []struct {
		name     string
		supplier *domain.Supplier
		field    string
	}{
		{"missing company", &domain.Supplier{Name: "Alfa"}, "company_id"},
		{"missing name", &domain.Supplier{CompanyID: "emp-1"}, "name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateSupplier(context.Background(), tc.supplier)
			var verr *domain.ErrValidation
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("field = %q, want %q", verr.Field, tc.field)
			}
		})
	}
}

func TestRegistryService_UpdateSupplier(t *testing.T) {
	store := &mockRegistryStore{updateResult: true}
	svc := newRegistryService(store)

	updated, err := svc.UpdateSupplier(context.Background(), "forn-1", map[string]any{"email": "novo@alfa.com"})
	if err != nil {
		t.Fatalf("UpdateSupplier: %v", err)
	}
	if updated.ID != "forn-1" {
		t.Errorf("ID = %q, want forn-1", updated.ID)
	}
	if store.updates["email"] != "novo@alfa.com" {
		t.Errorf("updates = %v, want email set", store.updates)
	}
}

func TestRegistryService_UpdateSupplier_NotFound(t *testing.T) {
	svc := newRegistryService(&mockRegistryStore{updateResult: false})

	_, err := svc.UpdateSupplier(context.Background(), "forn-missing", map[string]any{"email": "x@y.com"})
	var nerr *domain.ErrNotFound
	if !errors.As(err, &nerr) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRegistryService_UpdateSupplier_EmptyBody(t *testing.T) {
	svc := newRegistryService(&mockRegistryStore{updateResult: true})

	_, err := svc.UpdateSupplier(context.Background(), "forn-1", map[string]any{})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegistryService_DeleteSupplier(t *testing.T) {
	store := &mockRegistryStore{}
	svc := newRegistryService(store)

	if err := svc.DeleteSupplier(context.Background(), "forn-1"); err != nil {
		t.Fatalf("DeleteSupplier: %v", err)
	}
	if store.deletedID != "forn-1" {
		t.Errorf("deletedID = %q, want forn-1", store.deletedID)
	}
}

func TestRegistryService_CostCenters(t *testing.T) {
	store := &mockRegistryStore{
		costCenters:  []domain.CostCenter{{ID: "cc-1", Name: "Comercial"}},
		updateResult: true,
	}
	svc := newRegistryService(store)

	centers, err := svc.ListCostCenters(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("ListCostCenters: %v", err)
	}
	if len(centers) != 1 || centers[0].Name != "Comercial" {
		t.Errorf("centers = %+v", centers)
	}

	created, err := svc.CreateCostCenter(context.Background(), &domain.CostCenter{
		CompanyID: "emp-1",
		Name:      "Logística",
		Code:      "CC-02",
	})
	if err != nil {
		t.Fatalf("CreateCostCenter: %v", err)
	}
	if created.ID != "cc-new" {
		t.Errorf("ID = %q, want cc-new", created.ID)
	}

	if _, err := svc.CreateCostCenter(context.Background(), &domain.CostCenter{CompanyID: "emp-1"}); err == nil {
		t.Error("expected validation error for missing name")
	}

	if _, err := svc.UpdateCostCenter(context.Background(), "cc-1", map[string]any{"status": "inativo"}); err != nil {
		t.Fatalf("UpdateCostCenter: %v", err)
	}
	if err := svc.DeleteCostCenter(context.Background(), "cc-1"); err != nil {
		t.Fatalf("DeleteCostCenter: %v", err)
	}
	if store.deletedID != "cc-1" {
		t.Errorf("deletedID = %q, want cc-1", store.deletedID)
	}
}

func TestRegistryService_Collaborators(t *testing.T) {
	store := &mockRegistryStore{
		collaborators: []domain.Collaborator{{ID: "col-1", Name: "João Lima", Cargo: "Analista"}},
		updateResult:  true,
	}
	svc := newRegistryService(store)

	collaborators, err := svc.ListCollaborators(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("ListCollaborators: %v", err)
	}
	if len(collaborators) != 1 || collaborators[0].Cargo != "Analista" {
		t.Errorf("collaborators = %+v", collaborators)
	}

	created, err := svc.CreateCollaborator(context.Background(), &domain.Collaborator{
		CompanyID: "emp-1",
		Name:      "Maria Alves",
	})
	if err != nil {
		t.Fatalf("CreateCollaborator: %v", err)
	}
	if created.ID != "col-new" {
		t.Errorf("ID = %q, want col-new", created.ID)
	}

	if _, err := svc.CreateCollaborator(context.Background(), &domain.Collaborator{Name: "Sem Empresa"}); err == nil {
		t.Error("expected validation error for missing company")
	}

	_, err = svc.UpdateCollaborator(context.Background(), "col-missing", map[string]any{"cargo": "Gerente"})
	if err != nil {
		t.Fatalf("UpdateCollaborator: %v", err)
	}
	if err := svc.DeleteCollaborator(context.Background(), "col-1"); err != nil {
		t.Fatalf("DeleteCollaborator: %v", err)
	}
}
