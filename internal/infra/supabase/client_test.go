package supabase_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/resilience"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/supabase"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

func newTestClient(backendURL string, cb *gobreaker.CircuitBreaker) *supabase.Client {
	if cb == nil {
		cb = resilience.NewCircuitBreaker("test")
	}
	cfg := resilience.Config{MaxRetries: 0, InitialBackoff: time.Millisecond, MaxConcurrency: 4}
	return supabase.NewClient(http.DefaultClient, backendURL, "anon-key", "service-key", cb, cfg, zap.NewNop())
}

func TestGetCredentials_MissingRowIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, nil)
	cred, err := client.GetCredentials(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected nil error for missing row, got %v", err)
	}
	if cred != nil {
		t.Errorf("expected nil credential, got %+v", cred)
	}
}

func TestGetProfileByUserID_MissingRowIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, nil)
	profile, err := client.GetProfileByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected nil error for missing row, got %v", err)
	}
	if profile != nil {
		t.Errorf("expected nil profile, got %+v", profile)
	}
}

func TestApprovalIDFilterEscaped(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, nil)
	_, err := client.GetApprovalStatuses(context.Background(), []string{"ap-1", "ap,2)"})
	if err != nil {
		t.Fatalf("GetApprovalStatuses: %v", err)
	}
	if !strings.Contains(rawQuery, "id=in.(ap-1,ap%2C2%29)") {
		t.Errorf("filter separators not escaped, query = %q", rawQuery)
	}

	if err := client.UpdateApprovalStatus(context.Background(), []string{"ap,2)"}, "APPROVED"); err != nil {
		t.Fatalf("UpdateApprovalStatus: %v", err)
	}
	if !strings.Contains(rawQuery, "id=in.(ap%2C2%29)") {
		t.Errorf("patch filter separators not escaped, query = %q", rawQuery)
	}
}

func TestOpenBreakerSurfacesCircuitOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "test",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
	})
	client := newTestClient(srv.URL, cb)

	if _, err := client.GetCredentials(context.Background(), "user-1"); err == nil {
		t.Fatal("expected the first call to fail")
	}

	_, err := client.GetCredentials(context.Background(), "user-1")
	var open *domain.ErrCircuitOpen
	if !errors.As(err, &open) {
		t.Fatalf("expected circuit-open error, got %v", err)
	}
}
