package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// --- Mocks ---

type mockAuthStore struct {
	profilesByEmail map[string]*domain.Profile
	profilesByID    map[string]*domain.Profile
	credentials     map[string]*domain.AuthCredential
	refreshTokens   map[string]*domain.AuthRefreshToken

	credUpdates map[string]any
	revokedAll  string
}

func newMockAuthStore() *mockAuthStore {
	return &mockAuthStore{
		profilesByEmail: map[string]*domain.Profile{},
		profilesByID:    map[string]*domain.Profile{},
		credentials:     map[string]*domain.AuthCredential{},
		refreshTokens:   map[string]*domain.AuthRefreshToken{},
	}
}

func (m *mockAuthStore) GetProfileByEmail(_ context.Context, email string) (*domain.Profile, error) {
	return m.profilesByEmail[email], nil
}

func (m *mockAuthStore) GetProfileByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	return m.profilesByID[userID], nil
}

func (m *mockAuthStore) CreateUserWithProfile(_ context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.RegisterResponse, error) {
	userID := "new-user"
	m.profilesByEmail[req.Email] = &domain.Profile{UserID: userID, Email: req.Email, Role: domain.RoleUser}
	m.credentials[userID] = &domain.AuthCredential{UserID: userID, PasswordHash: passwordHash}
	return &domain.RegisterResponse{UserID: userID, Email: req.Email}, nil
}

func (m *mockAuthStore) GetCredentials(_ context.Context, userID string) (*domain.AuthCredential, error) {
	return m.credentials[userID], nil
}

func (m *mockAuthStore) UpdateCredentials(_ context.Context, userID string, updates map[string]any) error {
	m.credUpdates = updates
	if cred := m.credentials[userID]; cred != nil {
		if v, ok := updates["failed_attempts"].(int); ok {
			cred.FailedAttempts = v
		}
	}
	return nil
}

func (m *mockAuthStore) StoreRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	m.refreshTokens[tokenHash] = &domain.AuthRefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}
	return nil
}

func (m *mockAuthStore) GetRefreshToken(_ context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	return m.refreshTokens[tokenHash], nil
}

func (m *mockAuthStore) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	delete(m.refreshTokens, tokenHash)
	return nil
}

func (m *mockAuthStore) RevokeAllRefreshTokens(_ context.Context, userID string) error {
	m.revokedAll = userID
	for hash, tok := range m.refreshTokens {
		if tok.UserID == userID {
			delete(m.refreshTokens, hash)
		}
	}
	return nil
}

func newAuthService(store *mockAuthStore) *service.AuthService {
	return service.NewAuthService(store, "test-secret", 15*time.Minute, 7*24*time.Hour, zap.NewNop())
}

// seedUser registers a user directly in the mock with a cheap hash.
func seedUser(store *mockAuthStore, userID, email, password string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	store.profilesByEmail[email] = &domain.Profile{
		UserID: userID, Email: email, FirstName: "Ana", LastName: "Souza", Role: domain.RoleUser,
	}
	store.profilesByID[userID] = store.profilesByEmail[email]
	store.credentials[userID] = &domain.AuthCredential{UserID: userID, PasswordHash: string(hash)}
}

// --- Tests ---

func TestRegister_Validation(t *testing.T) {
	svc := newAuthService(newMockAuthStore())
	var validation *domain.ErrValidation

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "not-an-email", Password: "longenough", FirstName: "Ana",
	})
	if !errors.As(err, &validation) {
		t.Errorf("expected validation error for bad email, got %v", err)
	}

	_, err = svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "ana@exemplo.com", Password: "curta", FirstName: "Ana",
	})
	if !errors.As(err, &validation) {
		t.Errorf("expected validation error for short password, got %v", err)
	}

	_, err = svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "ana@exemplo.com", Password: "longenough",
	})
	if !errors.As(err, &validation) {
		t.Errorf("expected validation error for missing first name, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newMockAuthStore()
	seedUser(store, "user-1", "ana@exemplo.com", "senhasegura")
	svc := newAuthService(store)

	var conflict *domain.ErrConflict
	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "ANA@Exemplo.com", Password: "senhasegura", FirstName: "Ana",
	})
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict for existing email, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	store := newMockAuthStore()
	seedUser(store, "user-1", "ana@exemplo.com", "senhasegura")
	svc := newAuthService(store)

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "Ana@Exemplo.com ", Password: "senhasegura",
	})
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
	if resp.UserID != "user-1" {
		t.Errorf("unexpected user id: %s", resp.UserID)
	}
	if resp.Name != "Ana Souza" {
		t.Errorf("unexpected name: %s", resp.Name)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("expected a token pair")
	}
	if len(store.refreshTokens) != 1 {
		t.Errorf("expected one stored refresh token, got %d", len(store.refreshTokens))
	}
}

func TestLogin_WrongPasswordCountsAttempt(t *testing.T) {
	store := newMockAuthStore()
	seedUser(store, "user-1", "ana@exemplo.com", "senhasegura")
	svc := newAuthService(store)

	var unauthorized *domain.ErrUnauthorized
	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "ana@exemplo.com", Password: "errada",
	})
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if store.credUpdates["failed_attempts"] != 1 {
		t.Errorf("expected failed attempt recorded, got %v", store.credUpdates)
	}
}

func TestLogin_LocksAfterMaxAttempts(t *testing.T) {
	store := newMockAuthStore()
	seedUser(store, "user-1", "ana@exemplo.com", "senhasegura")
	store.credentials["user-1"].FailedAttempts = 4
	svc := newAuthService(store)

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "ana@exemplo.com", Password: "errada",
	})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, ok := store.credUpdates["locked_until"]; !ok {
		t.Error("expected lock to be persisted on fifth failure")
	}
}

func TestLogin_LockedAccountRejected(t *testing.T) {
	store := newMockAuthStore()
	seedUser(store, "user-1", "ana@exemplo.com", "senhasegura")
	lockedUntil := time.Now().Add(10 * time.Minute)
	store.credentials["user-1"].LockedUntil = &lockedUntil
	svc := newAuthService(store)

	// Even the right password fails while the lock holds.
	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "ana@exemplo.com", Password: "senhasegura",
	})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if !strings.Contains(unauthorized.Message, "bloqueada") {
		t.Errorf("expected lock message, got %q", unauthorized.Message)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newAuthService(newMockAuthStore())

	var unauthorized *domain.ErrUnauthorized
	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "ninguem@exemplo.com", Password: "whatever",
	})
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogin_ProfileWithoutCredentials(t *testing.T) {
	store := newMockAuthStore()
	seedUser(store, "user-1", "ana@exemplo.com", "senhasegura")
	delete(store.credentials, "user-1")
	svc := newAuthService(store)

	var unauthorized *domain.ErrUnauthorized
	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "ana@exemplo.com", Password: "senhasegura",
	})
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if unauthorized.Message != "Credenciais inválidas" {
		t.Errorf("unexpected message: %s", unauthorized.Message)
	}
}

func TestValidateAccessToken_RoundTrip(t *testing.T) {
	store := newMockAuthStore()
	seedUser(store, "user-1", "ana@exemplo.com", "senhasegura")
	svc := newAuthService(store)

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "ana@exemplo.com", Password: "senhasegura",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if claims.Sub != "user-1" || claims.Role != domain.RoleUser {
		t.Errorf("unexpected claims: %+v", claims)
	}

	// A token signed with a different secret never validates.
	other := service.NewAuthService(store, "other-secret", 15*time.Minute, time.Hour, zap.NewNop())
	if _, err := other.ValidateAccessToken(resp.AccessToken); err == nil {
		t.Error("expected validation failure with wrong secret")
	}

	// Refresh tokens are opaque, not JWTs.
	if _, err := svc.ValidateAccessToken(resp.RefreshToken); err == nil {
		t.Error("expected refresh token to be rejected as access token")
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	store := newMockAuthStore()
	seedUser(store, "user-1", "ana@exemplo.com", "senhasegura")
	svc := newAuthService(store)

	login, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "ana@exemplo.com", Password: "senhasegura",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("expected a rotated refresh token")
	}

	// Rotation revokes the presented token.
	var unauthorized *domain.ErrUnauthorized
	_, err = svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: login.RefreshToken})
	if !errors.As(err, &unauthorized) {
		t.Errorf("expected reuse of rotated token to fail, got %v", err)
	}
}

func TestRefresh_ExpiredToken(t *testing.T) {
	store := newMockAuthStore()
	seedUser(store, "user-1", "ana@exemplo.com", "senhasegura")
	svc := service.NewAuthService(store, "test-secret", 15*time.Minute, -time.Hour, zap.NewNop())

	login, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "ana@exemplo.com", Password: "senhasegura",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	var unauthorized *domain.ErrUnauthorized
	_, err = svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: login.RefreshToken})
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected expired token rejection, got %v", err)
	}
	if len(store.refreshTokens) != 0 {
		t.Error("expected expired token to be revoked")
	}
}

func TestLogout_RevokesAll(t *testing.T) {
	store := newMockAuthStore()
	seedUser(store, "user-1", "ana@exemplo.com", "senhasegura")
	svc := newAuthService(store)

	if _, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "ana@exemplo.com", Password: "senhasegura",
	}); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), "user-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if store.revokedAll != "user-1" {
		t.Errorf("expected revoke-all for user-1, got %q", store.revokedAll)
	}
	if len(store.refreshTokens) != 0 {
		t.Errorf("expected no refresh tokens left, got %d", len(store.refreshTokens))
	}
}
