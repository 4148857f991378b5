package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/cache"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/observability"
	"github.com/gestaofin/orcamento-bfa-go/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

type mockApprovalStore struct {
	items      []domain.ApprovalItem
	statuses   map[string]string
	listErr    error
	updateErr  error
	historyErr map[string]error // per approval id

	updatedIDs    []string
	updatedStatus string
	historyRows   []domain.ApprovalHistoryItem
}

func (m *mockApprovalStore) ListApprovals(_ context.Context, _ domain.ApprovalFilters) ([]domain.ApprovalItem, error) {
	return m.items, m.listErr
}

func (m *mockApprovalStore) GetApprovalStatuses(_ context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		out[id] = m.statuses[id]
	}
	return out, nil
}

func (m *mockApprovalStore) UpdateApprovalStatus(_ context.Context, ids []string, status string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedIDs = ids
	m.updatedStatus = status
	return nil
}

func (m *mockApprovalStore) InsertApprovalHistory(_ context.Context, entry *domain.ApprovalHistoryItem) error {
	if err := m.historyErr[entry.ApprovalItemID]; err != nil {
		return err
	}
	m.historyRows = append(m.historyRows, *entry)
	return nil
}

func (m *mockApprovalStore) ListApprovalHistory(_ context.Context, approvalID string) ([]domain.ApprovalHistoryItem, error) {
	var out []domain.ApprovalHistoryItem
	for _, row := range m.historyRows {
		if row.ApprovalItemID == approvalID {
			out = append(out, row)
		}
	}
	return out, nil
}

func newApprovalService(store *mockApprovalStore) *service.ApprovalService {
	return service.NewApprovalService(
		store,
		cache.New[[]domain.ApprovalItem](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

// --- Tests ---

func TestApprovalList_RequiresCompany(t *testing.T) {
	svc := newApprovalService(&mockApprovalStore{})

	_, err := svc.List(context.Background(), domain.ApprovalFilters{})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApprovalList_UnknownStatusRejected(t *testing.T) {
	svc := newApprovalService(&mockApprovalStore{})

	_, err := svc.List(context.Background(), domain.ApprovalFilters{CompanyID: "emp-1", Status: "talvez"})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApprovalList_TodosMeansNoFilter(t *testing.T) {
	store := &mockApprovalStore{items: []domain.ApprovalItem{
		{ID: "ap-1", Status: domain.ApprovalPendente},
		{ID: "ap-2", Status: domain.ApprovalAprovado},
	}}
	svc := newApprovalService(store)

	items, err := svc.List(context.Background(), domain.ApprovalFilters{CompanyID: "emp-1", Status: "todos"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestApprovalList_SecondCallHitsCache(t *testing.T) {
	store := &mockApprovalStore{items: []domain.ApprovalItem{{ID: "ap-1"}}}
	svc := newApprovalService(store)

	filters := domain.ApprovalFilters{CompanyID: "emp-1"}
	if _, err := svc.List(context.Background(), filters); err != nil {
		t.Fatalf("first list: %v", err)
	}

	// A store failure now would surface unless the cache answers.
	store.listErr = errors.New("supabase down")
	items, err := svc.List(context.Background(), filters)
	if err != nil {
		t.Fatalf("expected cached result, got %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 cached item, got %d", len(items))
	}
}

func TestApprovalExecute_ApprovesPendingOnly(t *testing.T) {
	store := &mockApprovalStore{
		statuses: map[string]string{
			"ap-1": domain.ApprovalStoredPending,
			"ap-2": domain.ApprovalStoredApproved,
			"ap-3": domain.ApprovalStoredPending,
		},
		historyErr: map[string]error{},
	}
	svc := newApprovalService(store)

	result, err := svc.Execute(context.Background(), "user-1", &domain.ExecuteApprovalRequest{
		IDs:      []string{"ap-1", "ap-2", "ap-3"},
		Decision: "approve",
		Comment:  "ok",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Updated != 2 {
		t.Errorf("expected 2 updated, got %d", result.Updated)
	}
	if len(result.SkippedIDs) != 1 || result.SkippedIDs[0] != "ap-2" {
		t.Errorf("expected ap-2 skipped, got %v", result.SkippedIDs)
	}
	if store.updatedStatus != domain.ApprovalStoredApproved {
		t.Errorf("expected stored status APPROVED, got %s", store.updatedStatus)
	}
	if len(store.historyRows) != 2 {
		t.Fatalf("expected one history row per updated id, got %d", len(store.historyRows))
	}
	for _, row := range store.historyRows {
		if row.Action != domain.ApprovalAprovado {
			t.Errorf("expected action APROVADO, got %s", row.Action)
		}
		if row.UserID != "user-1" {
			t.Errorf("expected acting user on history row, got %s", row.UserID)
		}
	}
}

func TestApprovalExecute_RejectDecision(t *testing.T) {
	store := &mockApprovalStore{
		statuses:   map[string]string{"ap-1": domain.ApprovalStoredPending},
		historyErr: map[string]error{},
	}
	svc := newApprovalService(store)

	result, err := svc.Execute(context.Background(), "user-1", &domain.ExecuteApprovalRequest{
		IDs:      []string{"ap-1"},
		Decision: "reject",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Action != domain.ApprovalReprovado {
		t.Errorf("expected action REPROVADO, got %s", result.Action)
	}
	if store.updatedStatus != domain.ApprovalStoredRejected {
		t.Errorf("expected stored status REJECTED, got %s", store.updatedStatus)
	}
}

func TestApprovalExecute_HistoryFailureDoesNotAbort(t *testing.T) {
	store := &mockApprovalStore{
		statuses: map[string]string{
			"ap-1": domain.ApprovalStoredPending,
			"ap-2": domain.ApprovalStoredPending,
		},
		historyErr: map[string]error{"ap-1": errors.New("insert failed")},
	}
	svc := newApprovalService(store)

	result, err := svc.Execute(context.Background(), "user-1", &domain.ExecuteApprovalRequest{
		IDs:      []string{"ap-1", "ap-2"},
		Decision: "approve",
	})
	if err != nil {
		t.Fatalf("expected no error despite history failure, got %v", err)
	}
	if result.Updated != 2 {
		t.Errorf("status update stays authoritative: expected 2 updated, got %d", result.Updated)
	}
	if result.HistoryFailures != 1 {
		t.Errorf("expected 1 history failure, got %d", result.HistoryFailures)
	}
	if len(store.historyRows) != 1 {
		t.Errorf("expected the other history row to land, got %d", len(store.historyRows))
	}
}

func TestApprovalExecute_NothingPending(t *testing.T) {
	store := &mockApprovalStore{
		statuses:   map[string]string{"ap-1": domain.ApprovalStoredRejected},
		historyErr: map[string]error{},
	}
	svc := newApprovalService(store)

	result, err := svc.Execute(context.Background(), "user-1", &domain.ExecuteApprovalRequest{
		IDs:      []string{"ap-1"},
		Decision: "approve",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Updated != 0 {
		t.Errorf("expected 0 updated, got %d", result.Updated)
	}
	if len(store.updatedIDs) != 0 {
		t.Errorf("expected no batched update, got %v", store.updatedIDs)
	}
	if len(result.SkippedIDs) != 1 {
		t.Errorf("expected 1 skipped, got %d", len(result.SkippedIDs))
	}
}

func TestApprovalExecute_Validation(t *testing.T) {
	svc := newApprovalService(&mockApprovalStore{})

	var validation *domain.ErrValidation

	_, err := svc.Execute(context.Background(), "user-1", &domain.ExecuteApprovalRequest{Decision: "approve"})
	if !errors.As(err, &validation) {
		t.Errorf("expected validation error for empty ids, got %v", err)
	}

	_, err = svc.Execute(context.Background(), "user-1", &domain.ExecuteApprovalRequest{
		IDs:      []string{"ap-1"},
		Decision: "maybe",
	})
	if !errors.As(err, &validation) {
		t.Errorf("expected validation error for bad decision, got %v", err)
	}
}

func TestApprovalHistory(t *testing.T) {
	store := &mockApprovalStore{
		historyRows: []domain.ApprovalHistoryItem{
			{ApprovalItemID: "ap-1", Action: domain.ApprovalAprovado},
			{ApprovalItemID: "ap-2", Action: domain.ApprovalReprovado},
		},
	}
	svc := newApprovalService(store)

	entries, err := svc.History(context.Background(), "ap-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(entries))
	}
}
