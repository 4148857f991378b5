package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Edge function invocation — implements port.UserAdminInvoker
// ============================================================

// deleteUserFunction is the server-side function that removes the user's
// rows in the two dependent tables and then the auth identity.
const deleteUserFunction = "delete-user"

// InvokeFunction calls a Supabase edge function with a JSON body.
func (c *Client) InvokeFunction(ctx context.Context, name string, payload any) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InvokeFunction")
	defer span.End()

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/functions/v1/%s", c.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", "application/json")

	var body []byte
	_, err = c.cb.Execute(func() (any, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("supabase: function invoke failed",
				zap.String("function", name),
				zap.Error(err),
			)
			return nil, err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Warn("supabase: function non-2xx",
				zap.String("function", name),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(b)),
			)
			return nil, fmt.Errorf("function %s returned %d: %s", name, resp.StatusCode, string(b))
		}
		body = b
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// DeleteUser invokes the user-deletion function for one auth identity.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteUser")
	defer span.End()

	body, err := c.InvokeFunction(ctx, deleteUserFunction, map[string]any{"user_id": userID})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/functions", Err: err}
	}

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode delete-user response: %w", err)
	}
	if !result.Success {
		return &domain.ErrExternalService{
			Service: "supabase/functions",
			Err:     fmt.Errorf("delete-user: %s", result.Error),
		}
	}

	c.logger.Info("user deleted via edge function", zap.String("user_id", userID))
	return nil
}
