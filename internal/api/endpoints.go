package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChatRequest struct {
	Message string `json:"message"`
	NPCName string `json:"npc_name"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login/", "", req, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("login response carried no access_token")
	}
	return &out, nil
}

// Signup creates an account. The response body is not needed.
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/signup/", "", req, nil)
}

// Chat sends one turn to the agent. A 404 is reported as ErrUnknownIdentity
// wrapped around the *Error.
func (c *Client) Chat(ctx context.Context, token string, req ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	err := c.do(ctx, http.MethodPost, "/chat/", token, req, &out)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return nil, fmt.Errorf("%w: %w", ErrUnknownIdentity, apiErr)
		}
		return nil, err
	}
	return &out, nil
}

// DeleteAccount irreversibly removes the authenticated account.
func (c *Client) DeleteAccount(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/auth/delete-account", token, nil, nil)
}
