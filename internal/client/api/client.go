// Package api is the client side of the cake library HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/cakelibrary/internal/client/models"
)

// Client is what the session needs from the server.
type Client interface {
	Register(ctx context.Context, username, email, password string) (*RegisterResult, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, token string) (*models.User, error)
	Ping(ctx context.Context) error
}

type RegisterResult struct {
	Message string `json:"message"`
	// Token is set only if the server chose to log the user in.
	Token string       `json:"token,omitempty"`
	User  *models.User `json:"user,omitempty"`
}

type LoginResult struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient targets baseURL, which includes the /api prefix
// (e.g. http://localhost:4000/api).
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Register(ctx context.Context, username, email, password string) (*RegisterResult, error) {
	var out RegisterResult
	err := c.do(ctx, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.New("login response has no token")
	}
	return &out, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

func (c *HTTPClient) Profile(ctx context.Context, token string) (*models.User, error) {
	var out struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/profile", token, nil, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, errors.New("profile response has no user")
	}
	return out.User, nil
}

// Ping hits /health, which lives beside the /api prefix.
func (c *HTTPClient) Ping(ctx context.Context) error {
	root := strings.TrimSuffix(c.baseURL, "/api")
	return c.doURL(ctx, http.MethodGet, root+"/health", "", nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	return c.doURL(ctx, method, c.baseURL+path, token, in, out)
}

func (c *HTTPClient) doURL(ctx context.Context, method, url, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var body struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Error   string            `json:"error"`
		Fields  map[string]string `json:"fields"`
	}
	_ = json.Unmarshal(data, &body)

	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	return &APIError{Status: status, Code: body.Code, Message: msg, Fields: body.Fields}
}
