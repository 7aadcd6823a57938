package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/publiflow/publiflow-client/internal/model"
)

// UserInput is the JSON payload of user create/update. An empty Password is
// omitted on the wire, which the server reads as "unchanged".
type UserInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	RoleID   int    `json:"roleId"`
	Password string `json:"password,omitempty"`
}

// UsersByRole returns all accounts carrying the given role identifier.
func (c *Client) UsersByRole(ctx context.Context, roleID int) ([]model.AdminUser, error) {
	var out []model.AdminUser
	err := c.getJSON(ctx, fmt.Sprintf("/users/type/%d", roleID), nil, &out)
	return out, err
}

// User returns a single account by id.
func (c *Client) User(ctx context.Context, id int64) (model.AdminUser, error) {
	var out model.AdminUser
	err := c.getJSON(ctx, fmt.Sprintf("/users/%d", id), nil, &out)
	return out, err
}

// CreateUser creates an account.
func (c *Client) CreateUser(ctx context.Context, in UserInput) (model.AdminUser, error) {
	var out model.AdminUser
	err := c.sendJSON(ctx, http.MethodPost, "/users", in, &out)
	return out, err
}

// UpdateUser updates an account.
func (c *Client) UpdateUser(ctx context.Context, id int64, in UserInput) (model.AdminUser, error) {
	var out model.AdminUser
	err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), in, &out)
	return out, err
}

// DeleteUser removes an account by id.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.deleteJSON(ctx, fmt.Sprintf("/users/%d", id))
}
