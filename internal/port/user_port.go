package port

import (
	"context"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
)

// UserStore defines data operations for user profiles and their
// account-permission / company-access sets.
type UserStore interface {
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	GetProfileByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID string, updates map[string]any) (*domain.Profile, error)
	SetPermissionPaths(ctx context.Context, userID string, paths []string) error
	GrantCompanyAccess(ctx context.Context, userID, companyID string) error
}

// AuthStore defines all data operations for the authentication system.
type AuthStore interface {
	GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error)
	GetProfileByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	CreateUserWithProfile(ctx context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.RegisterResponse, error)

	GetCredentials(ctx context.Context, userID string) (*domain.AuthCredential, error)
	UpdateCredentials(ctx context.Context, userID string, updates map[string]any) error

	StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}
