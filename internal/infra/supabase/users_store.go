package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// UserStore implementation — profiles via PostgREST
// ============================================================

// ListProfiles fetches every user profile.
func (c *Client) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListProfiles")
	defer span.End()

	body, err := c.doGet(ctx, "profiles?order=first_name.asc")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Profile{}, nil
	}

	var rows []domain.Profile
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return rows, nil
}

// GetProfileByUserID fetches one profile by auth identity.
func (c *Client) GetProfileByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfileByUserID")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	path := fmt.Sprintf("profiles?user_id=eq.%s&limit=1", q(userID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Profile
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// UpdateProfile patches mutable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, userID string, updates map[string]any) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateProfile")
	defer span.End()

	path := fmt.Sprintf("profiles?user_id=eq.%s", q(userID))
	body, err := c.doPatch(ctx, path, updates)
	if err != nil {
		return nil, err
	}

	var rows []domain.Profile
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode updated profile: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// SetPermissionPaths replaces the profile's analytic-account permission set.
func (c *Client) SetPermissionPaths(ctx context.Context, userID string, paths []string) error {
	ctx, span := tracer.Start(ctx, "Supabase.SetPermissionPaths")
	defer span.End()
	span.SetAttributes(attribute.Int("paths.count", len(paths)))

	path := fmt.Sprintf("profiles?user_id=eq.%s", q(userID))
	_, err := c.doPatch(ctx, path, map[string]any{"permissoes_conta_ids": paths})
	return err
}

// GrantCompanyAccess appends one company to the profile's access set.
// The read-modify-write is not atomic; the backend's last write wins,
// matching the rest of the system's concurrency model.
func (c *Client) GrantCompanyAccess(ctx context.Context, userID, companyID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.GrantCompanyAccess")
	defer span.End()

	profile, err := c.GetProfileByUserID(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range profile.CompanyAccessIDs {
		if id == companyID {
			return nil // already granted
		}
	}
	access := append(profile.CompanyAccessIDs, companyID)

	path := fmt.Sprintf("profiles?user_id=eq.%s", q(userID))
	_, err = c.doPatch(ctx, path, map[string]any{"company_access_ids": access})
	return err
}
