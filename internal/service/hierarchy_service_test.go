package service_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/cache"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/observability"
	"github.com/gestaofin/orcamento-bfa-go/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

type mockHierarchyStore struct {
	rows    []domain.AccountHierarchyRow
	listErr error
	calls   int
}

func (m *mockHierarchyStore) ListHierarchyRows(_ context.Context, _ string) ([]domain.AccountHierarchyRow, error) {
	m.calls++
	return m.rows, m.listErr
}

type mockUserStore struct {
	profiles map[string]*domain.Profile

	savedUserID string
	savedPaths  []string
	setErr      error
}

func (m *mockUserStore) ListProfiles(_ context.Context) ([]domain.Profile, error) {
	var out []domain.Profile
	for _, p := range m.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockUserStore) GetProfileByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	return m.profiles[userID], nil
}

func (m *mockUserStore) UpdateProfile(_ context.Context, userID string, _ map[string]any) (*domain.Profile, error) {
	return m.profiles[userID], nil
}

func (m *mockUserStore) SetPermissionPaths(_ context.Context, userID string, paths []string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.savedUserID = userID
	m.savedPaths = paths
	return nil
}

func (m *mockUserStore) GrantCompanyAccess(_ context.Context, _, _ string) error {
	return nil
}

func newHierarchyService(store *mockHierarchyStore, users *mockUserStore) *service.HierarchyService {
	return service.NewHierarchyService(
		store,
		users,
		cache.New[*domain.AccountTree](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func sampleRows() []domain.AccountHierarchyRow {
	return []domain.AccountHierarchyRow{
		{Level1: "DESPESAS", Level2: "Pessoal", AnalyticalAccount: "Salários"},
		{Level1: "DESPESAS", Level2: "Pessoal", AnalyticalAccount: "Benefícios"},
		{Level1: "DESPESAS", Level2: "Ocupação", AnalyticalAccount: "Aluguel"},
		{Level1: "RECEITA", Level2: "Vendas", AnalyticalAccount: "Produtos"},
	}
}

// --- Tests ---

func TestNormalizeField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims and collapses whitespace", "  Despesas   Gerais \t", "Despesas Gerais"},
		{"nfc normalization", "Salários", "Salários"},
		{"empty", "   ", ""},
		{"already clean", "Aluguel", "Aluguel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := service.NormalizeField(tt.input); got != tt.want {
				t.Errorf("NormalizeField(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildTree(t *testing.T) {
	rows := append(sampleRows(),
		domain.AccountHierarchyRow{Level1: "DESPESAS", Level2: "Pessoal", AnalyticalAccount: "Salários"}, // duplicate
		domain.AccountHierarchyRow{Level1: "DESPESAS", Level2: "", AnalyticalAccount: "Órfã"},            // incomplete
	)

	tree := service.BuildTree(rows)

	if got := tree.Level1Order; !reflect.DeepEqual(got, []string{"DESPESAS", "RECEITA"}) {
		t.Errorf("unexpected level 1 order: %v", got)
	}
	if got := tree.Level2Order["DESPESAS"]; !reflect.DeepEqual(got, []string{"Pessoal", "Ocupação"}) {
		t.Errorf("unexpected level 2 order: %v", got)
	}
	if got := tree.Levels["DESPESAS"]["Pessoal"]; !reflect.DeepEqual(got, []string{"Salários", "Benefícios"}) {
		t.Errorf("duplicate not collapsed or order lost: %v", got)
	}
}

func TestBuildTree_Empty(t *testing.T) {
	tree := service.BuildTree(nil)
	if len(tree.Levels) != 0 || len(tree.Level1Order) != 0 {
		t.Errorf("expected empty tree, got %+v", tree)
	}
}

func TestExpandSelection(t *testing.T) {
	tree := service.BuildTree(sampleRows())

	t.Run("level 1 expands everything under", func(t *testing.T) {
		paths, err := service.ExpandSelection(tree, domain.AccountPathSelection{Level1: "DESPESAS"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := []string{
			"DESPESAS > Pessoal > Salários",
			"DESPESAS > Pessoal > Benefícios",
			"DESPESAS > Ocupação > Aluguel",
		}
		if !reflect.DeepEqual(paths, want) {
			t.Errorf("got %v, want %v", paths, want)
		}
	})

	t.Run("level 2 expands one branch", func(t *testing.T) {
		paths, err := service.ExpandSelection(tree, domain.AccountPathSelection{Level1: "DESPESAS", Level2: "Ocupação"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(paths, []string{"DESPESAS > Ocupação > Aluguel"}) {
			t.Errorf("got %v", paths)
		}
	})

	t.Run("full triple is a single path", func(t *testing.T) {
		paths, err := service.ExpandSelection(tree, domain.AccountPathSelection{
			Level1: "DESPESAS", Level2: "Pessoal", Analytical: "Salários",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(paths, []string{"DESPESAS > Pessoal > Salários"}) {
			t.Errorf("got %v", paths)
		}
	})

	t.Run("missing level rejected", func(t *testing.T) {
		var notFound *domain.ErrNotFound
		_, err := service.ExpandSelection(tree, domain.AccountPathSelection{Level1: "INEXISTENTE"})
		if !errors.As(err, &notFound) {
			t.Errorf("expected not found for level 1, got %v", err)
		}
		_, err = service.ExpandSelection(tree, domain.AccountPathSelection{Level1: "DESPESAS", Level2: "Nada"})
		if !errors.As(err, &notFound) {
			t.Errorf("expected not found for level 2, got %v", err)
		}
		_, err = service.ExpandSelection(tree, domain.AccountPathSelection{
			Level1: "DESPESAS", Level2: "Pessoal", Analytical: "Nada",
		})
		if !errors.As(err, &notFound) {
			t.Errorf("expected not found for analytical account, got %v", err)
		}
	})

	t.Run("selection is normalized before lookup", func(t *testing.T) {
		paths, err := service.ExpandSelection(tree, domain.AccountPathSelection{
			Level1: " DESPESAS ", Level2: "Pessoal", Analytical: "Salários",
		})
		if err != nil {
			t.Fatalf("expected normalized match, got %v", err)
		}
		if len(paths) != 1 {
			t.Errorf("got %v", paths)
		}
	})
}

func TestHierarchyTree_Cached(t *testing.T) {
	store := &mockHierarchyStore{rows: sampleRows()}
	svc := newHierarchyService(store, &mockUserStore{})

	if _, err := svc.Tree(context.Background(), "emp-1"); err != nil {
		t.Fatalf("first tree: %v", err)
	}
	if _, err := svc.Tree(context.Background(), "emp-1"); err != nil {
		t.Fatalf("second tree: %v", err)
	}
	if store.calls != 1 {
		t.Errorf("expected 1 store call, got %d", store.calls)
	}

	svc.InvalidateCompany("emp-1")
	if _, err := svc.Tree(context.Background(), "emp-1"); err != nil {
		t.Fatalf("third tree: %v", err)
	}
	if store.calls != 2 {
		t.Errorf("expected reload after invalidation, got %d calls", store.calls)
	}
}

func TestGrantPaths_UnionsAndSorts(t *testing.T) {
	store := &mockHierarchyStore{rows: sampleRows()}
	users := &mockUserStore{profiles: map[string]*domain.Profile{
		"user-1": {UserID: "user-1", PermissionPaths: []string{"DESPESAS > Pessoal > Salários"}},
	}}
	svc := newHierarchyService(store, users)

	merged, err := svc.GrantPaths(context.Background(), "user-1", []domain.AccountPathSelection{
		{CompanyID: "emp-1", Level1: "DESPESAS", Level2: "Pessoal"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []string{
		"DESPESAS > Pessoal > Benefícios",
		"DESPESAS > Pessoal > Salários",
	}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("got %v, want %v", merged, want)
	}
	if !reflect.DeepEqual(users.savedPaths, want) {
		t.Errorf("stored paths %v, want %v", users.savedPaths, want)
	}

	// Granting the same branch again changes nothing.
	again, err := svc.GrantPaths(context.Background(), "user-1", []domain.AccountPathSelection{
		{CompanyID: "emp-1", Level1: "DESPESAS", Level2: "Pessoal"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !reflect.DeepEqual(again, want) {
		t.Errorf("idempotency broken: got %v", again)
	}
}

func TestGrantPaths_UnknownUser(t *testing.T) {
	svc := newHierarchyService(&mockHierarchyStore{}, &mockUserStore{profiles: map[string]*domain.Profile{}})

	var notFound *domain.ErrNotFound
	_, err := svc.GrantPaths(context.Background(), "ghost", []domain.AccountPathSelection{
		{CompanyID: "emp-1", Level1: "DESPESAS"},
	})
	if !errors.As(err, &notFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRevokePath(t *testing.T) {
	users := &mockUserStore{profiles: map[string]*domain.Profile{
		"user-1": {UserID: "user-1", PermissionPaths: []string{
			"DESPESAS > Pessoal > Salários",
			"DESPESAS > Ocupação > Aluguel",
		}},
	}}
	svc := newHierarchyService(&mockHierarchyStore{}, users)

	remaining, err := svc.RevokePath(context.Background(), "user-1", "DESPESAS > Pessoal > Salários")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !reflect.DeepEqual(remaining, []string{"DESPESAS > Ocupação > Aluguel"}) {
		t.Errorf("got %v", remaining)
	}

	// Revoking an absent path is a no-op and must not hit the store.
	users.savedPaths = nil
	remaining, err = svc.RevokePath(context.Background(), "user-1", "nunca concedido")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if users.savedPaths != nil {
		t.Errorf("no-op revoke should not persist, stored %v", users.savedPaths)
	}
	if len(remaining) != 2 {
		t.Errorf("expected untouched set, got %v", remaining)
	}
}
