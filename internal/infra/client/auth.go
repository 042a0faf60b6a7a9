package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"

	"go.uber.org/zap"
)

// SignIn exchanges credentials for a token and user profile. A success:false
// answer is returned as a response, not an error, so the caller can show the
// backend's message.
func (c *Client) SignIn(ctx context.Context, req *domain.SignInRequest) (*domain.SignInResponse, error) {
	ctx, span := tracer.Start(ctx, "Client.SignIn")
	defer span.End()

	var raw json.RawMessage
	err := c.Request(ctx, "/api/auth/signin", RequestOptions{
		Method:   http.MethodPost,
		Data:     req,
		SkipAuth: true,
	}, &raw)

	var rejected *domain.ErrRejected
	var authErr *domain.ErrAuthenticationRequired
	var httpErr *domain.ErrHTTP
	switch {
	case err == nil:
		var resp domain.SignInResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("decode sign-in response: %w", err)
		}
		c.warnUnknownPermissions(raw)
		return &resp, nil
	case errors.As(err, &rejected):
		return &domain.SignInResponse{Success: false, Message: rejected.Message}, nil
	case errors.As(err, &authErr):
		return &domain.SignInResponse{Success: false, Message: "invalid credentials"}, nil
	case errors.As(err, &httpErr) && httpErr.Status < 500:
		return &domain.SignInResponse{Success: false, Message: httpErr.Message()}, nil
	}
	return nil, err
}

// warnUnknownPermissions logs the permission keys dropped while decoding.
func (c *Client) warnUnknownPermissions(body []byte) {
	var raw struct {
		Data struct {
			Permissions json.RawMessage `json:"permissions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil || len(raw.Data.Permissions) == 0 {
		return
	}
	if keys := domain.UnknownPermissionKeys(raw.Data.Permissions); len(keys) > 0 {
		c.logger.Warn("dropping unknown permission keys", zap.Strings("keys", keys))
	}
}

// ValidateToken asks the backend whether token is still a live session.
// 401/403 and {valid:false} both mean invalid; transport failures are errors.
func (c *Client) ValidateToken(ctx context.Context, token string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Client.ValidateToken")
	defer span.End()

	var resp struct {
		Valid bool `json:"valid"`
	}
	err := c.Request(ctx, "/api/auth/validate", RequestOptions{
		Method:   http.MethodGet,
		Headers:  map[string]string{"Authorization": "Bearer " + token},
		SkipAuth: true,
	}, &resp)

	var authErr *domain.ErrAuthenticationRequired
	var rejected *domain.ErrRejected
	switch {
	case err == nil:
		return resp.Valid, nil
	case errors.As(err, &authErr), errors.As(err, &rejected):
		c.logger.Info("stored token rejected by backend", zap.Error(err))
		return false, nil
	}
	return false, err
}
