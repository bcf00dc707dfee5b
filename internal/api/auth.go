package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

// Login authenticates against the backend and stores the issued token and
// user on the session.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}

	env, err := c.do(ctx, http.MethodPost, "/auth/login", requestOptions{body: req})
	if err != nil {
		return nil, err
	}

	var out models.LoginResponse
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}

	if err := c.session.SetToken(out.Token); err != nil {
		c.logger.Warn("failed to persist session token", zap.Error(err))
	}
	if err := c.session.SetUser(&out.User); err != nil {
		c.logger.Warn("failed to persist session user", zap.Error(err))
	}
	return &out, nil
}

// Logout revokes the session server-side and clears local state. The local
// session is cleared even when the revoke call fails; a dead token on disk
// helps nobody.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", requestOptions{})
	if clearErr := c.session.Clear(); clearErr != nil {
		c.logger.Warn("failed to clear session on logout", zap.Error(clearErr))
	}
	return err
}

// CurrentUser fetches the authenticated account and refreshes the cached
// session user.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/auth/me", requestOptions{})
	if err != nil {
		return nil, err
	}
	var out models.User
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	if err := c.session.SetUser(&out); err != nil {
		c.logger.Warn("failed to cache session user", zap.Error(err))
	}
	return &out, nil
}

// RefreshToken exchanges the current token for a fresh one.
func (c *Client) RefreshToken(ctx context.Context) (*models.RefreshTokenResponse, error) {
	env, err := c.do(ctx, http.MethodPost, "/auth/refresh", requestOptions{})
	if err != nil {
		return nil, err
	}
	var out models.RefreshTokenResponse
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	if err := c.session.SetToken(out.Token); err != nil {
		c.logger.Warn("failed to persist refreshed token", zap.Error(err))
	}
	return &out, nil
}
