package api

import (
	"context"
	"net/http"

	"github.com/publiflow/publiflow-client/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the authentication endpoint's success payload.
type LoginResult struct {
	Token string            `json:"token"`
	User  model.UserProfile `json:"user"`
}

// Login exchanges credentials for a bearer token and profile snapshot.
// It does not install the token; the session layer owns that step.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	err := c.sendJSON(ctx, http.MethodPost, "/login", loginRequest{Email: email, Password: password}, &out)
	return out, err
}
