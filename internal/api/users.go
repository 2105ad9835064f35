package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/thesavant42/adminboard/internal/models"
)

// ListUsers fetches one page of users
func (c *Client) ListUsers(ctx context.Context, limit, skip int) (*models.UsersResponse, error) {
	var out models.UsersResponse
	err := c.do(ctx, request{
		op:     "fetch users",
		method: http.MethodGet,
		path:   "/users",
		query:  pageQuery(limit, skip),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchUsers runs a full-text user search. Every match is returned (limit=0).
func (c *Client) SearchUsers(ctx context.Context, query string) (*models.UsersResponse, error) {
	var out models.UsersResponse
	err := c.do(ctx, request{
		op:     "search users",
		method: http.MethodGet,
		path:   "/users/search",
		query:  url.Values{"q": {query}, "limit": {"0"}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser fetches a single user by id
func (c *Client) GetUser(ctx context.Context, id int) (*models.User, error) {
	var out models.User
	err := c.do(ctx, request{
		op:     "fetch user",
		method: http.MethodGet,
		path:   fmt.Sprintf("/users/%d", id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
