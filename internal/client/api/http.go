// Package api talks to the campus auth endpoint, over HTTP or against an
// in-memory stand-in.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"campus/internal/client/session"
)

const defaultTimeout = 15 * time.Second

// HTTPClient implements session.AuthAPI against the /auth endpoints.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

type Option func(*HTTPClient)

func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		c.client = client
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*session.AuthResponse, error) {
	var out session.AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Register(ctx context.Context, in session.RegisterInput) (*session.RegisterResponse, error) {
	var out session.RegisterResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/register", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) RequestPasswordReset(ctx context.Context, email string) error {
	return c.Do(ctx, http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": email}, nil)
}

func (c *HTTPClient) VerifyCode(ctx context.Context, email, code string, purpose session.Purpose) error {
	body := map[string]string{"email": email, "code": code, "purpose": string(purpose)}
	return c.Do(ctx, http.MethodPost, "/auth/verify-code", "", body, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, email, newPassword, code string) error {
	body := map[string]string{"email": email, "newPassword": newPassword}
	if code != "" {
		body["code"] = code
	}
	return c.Do(ctx, http.MethodPost, "/auth/reset-password", "", body, nil)
}

func (c *HTTPClient) Revoke(ctx context.Context, token string) error {
	return c.Do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

type errorEnvelope struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// Do sends a JSON request and decodes a 2xx body into out when out is non-nil.
// Error responses come back as *session.AuthError. Do is shared with the
// other resource clients.
func (c *HTTPClient) Do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return session.WrapError(session.KindValidation, "", fmt.Errorf("encoding request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return session.WrapError(session.KindTransport, "", fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return session.WrapError(session.KindTransport, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return session.WrapError(session.KindTransport, "", fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return session.WrapError(session.KindTransport, "", fmt.Errorf("decoding response: %w", err))
		}
		return nil
	}

	var env errorEnvelope
	_ = json.Unmarshal(data, &env)
	return StatusError(resp.StatusCode, env.Error, env.Description)
}

// ResponseError is the cause attached to failures the server reported.
type ResponseError struct {
	Status      int
	Code        string
	Description string
}

func (e *ResponseError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Code)
}

// StatusError maps an error response to the client's error taxonomy.
func StatusError(status int, code, description string) *session.AuthError {
	cause := &ResponseError{Status: status, Code: code, Description: description}
	switch status {
	case http.StatusBadRequest:
		if code == "invalid_code" {
			return session.WrapError(session.KindInvalidCode, "", cause)
		}
		return session.WrapError(session.KindValidation, description, cause)
	case http.StatusUnauthorized:
		return session.WrapError(session.KindInvalidCredentials, "", cause)
	case http.StatusForbidden:
		return session.WrapError(session.KindInvalidCredentials, "Please verify your email before logging in.", cause)
	case http.StatusNotFound:
		return session.WrapError(session.KindNotFound, "", cause)
	case http.StatusConflict:
		return session.WrapError(session.KindConflict, "", cause)
	default:
		return session.WrapError(session.KindTransport, "", cause)
	}
}
