package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/thesavant42/adminboard/internal/models"
)

// ErrNoToken is returned by Login when the service answers without a token.
var ErrNoToken = errors.New("login response did not include a token")

type loginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	ExpiresInMins int    `json:"expiresInMins,omitempty"`
}

// Login exchanges credentials for a profile and bearer token. The token is
// not installed on the client; the session layer decides that.
func (c *Client) Login(ctx context.Context, username, password string, expiresInMins int) (*models.AuthUser, error) {
	var out models.AuthUser
	err := c.do(ctx, request{
		op:     "log in",
		method: http.MethodPost,
		path:   "/auth/login",
		body: loginRequest{
			Username:      username,
			Password:      password,
			ExpiresInMins: expiresInMins,
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.BearerToken() == "" {
		return nil, ErrNoToken
	}
	return &out, nil
}

// CurrentUser returns the profile the current token belongs to
func (c *Client) CurrentUser(ctx context.Context) (*models.AuthUser, error) {
	var out models.AuthUser
	err := c.do(ctx, request{
		op:     "fetch current user",
		method: http.MethodGet,
		path:   "/auth/me",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
