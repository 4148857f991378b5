package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"

	"github.com/google/uuid"
)

// ============================================================
// AuthStore implementation — credentials + refresh tokens
// ============================================================

// GetProfileByEmail fetches one profile by email. A miss is not an error
// for auth lookups.
func (c *Client) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfileByEmail")
	defer span.End()

	path := fmt.Sprintf("profiles?email=eq.%s&limit=1", q(email))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []domain.Profile
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode profile by email: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// CreateUserWithProfile inserts the profile and its credential row.
func (c *Client) CreateUserWithProfile(ctx context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.RegisterResponse, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateUserWithProfile")
	defer span.End()

	userID := uuid.New().String()

	if _, err := c.doPost(ctx, "profiles", map[string]any{
		"user_id":              userID,
		"email":                req.Email,
		"first_name":           req.FirstName,
		"last_name":            req.LastName,
		"role":                 domain.RoleUser,
		"cargo":                req.Cargo,
		"aprovador":            false,
		"pacoteiro":            false,
		"permissoes_conta_ids": []string{},
		"company_access_ids":   []string{},
	}); err != nil {
		return nil, err
	}

	if _, err := c.doPost(ctx, "user_credentials", map[string]any{
		"user_id":         userID,
		"password_hash":   passwordHash,
		"failed_attempts": 0,
	}); err != nil {
		return nil, err
	}

	return &domain.RegisterResponse{
		UserID:  userID,
		Email:   req.Email,
		Message: "Usuário criado com sucesso",
	}, nil
}

// GetCredentials fetches the credential row for a user.
func (c *Client) GetCredentials(ctx context.Context, userID string) (*domain.AuthCredential, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCredentials")
	defer span.End()

	path := fmt.Sprintf("user_credentials?user_id=eq.%s&limit=1", q(userID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.AuthCredential
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode user_credentials: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// UpdateCredentials patches the credential row (failed attempts, lockout,
// last login, password hash).
func (c *Client) UpdateCredentials(ctx context.Context, userID string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCredentials")
	defer span.End()

	path := fmt.Sprintf("user_credentials?user_id=eq.%s", q(userID))
	_, err := c.doPatch(ctx, path, updates)
	return err
}

// StoreRefreshToken inserts a hashed refresh token.
func (c *Client) StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	ctx, span := tracer.Start(ctx, "Supabase.StoreRefreshToken")
	defer span.End()

	_, err := c.doPost(ctx, "refresh_tokens", map[string]any{
		"user_id":    userID,
		"token_hash": tokenHash,
		"expires_at": expiresAt.Format(time.RFC3339),
		"revoked":    false,
	})
	return err
}

// GetRefreshToken looks up a non-revoked refresh token by hash.
func (c *Client) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetRefreshToken")
	defer span.End()

	path := fmt.Sprintf("refresh_tokens?token_hash=eq.%s&revoked=eq.false&limit=1", q(tokenHash))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []domain.AuthRefreshToken
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode refresh_tokens: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// RevokeRefreshToken marks one refresh token revoked.
func (c *Client) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeRefreshToken")
	defer span.End()

	path := fmt.Sprintf("refresh_tokens?token_hash=eq.%s", q(tokenHash))
	_, err := c.doPatch(ctx, path, map[string]any{"revoked": true})
	return err
}

// RevokeAllRefreshTokens revokes every token for a user (logout).
func (c *Client) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeAllRefreshTokens")
	defer span.End()

	path := fmt.Sprintf("refresh_tokens?user_id=eq.%s&revoked=eq.false", q(userID))
	_, err := c.doPatch(ctx, path, map[string]any{"revoked": true})
	return err
}
