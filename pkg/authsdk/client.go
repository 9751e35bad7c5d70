package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client drives the authentication service HTTP API. Methods that act on
// the caller's own account take the access token explicitly; the client
// itself holds no session state.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates a password account and returns its first session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (TokenResponse, error) {
	var out TokenResponse
	err := c.postJSON(ctx, "/auth/register", "", req, &out, http.StatusCreated)
	return out, err
}

// Login authenticates with email and password. When the account has 2FA
// enabled the returned challenge is non-nil and the token response is empty;
// complete the login with LoginWithTwoFactor.
func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, *TwoFactorChallengeResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", "", LoginRequest{Email: email, Password: password})
	if err != nil {
		return TokenResponse{}, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return TokenResponse{}, nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return TokenResponse{}, nil, parseErrorResponse(resp, body)
	}

	var challenge TwoFactorChallengeResponse
	if err := json.Unmarshal(body, &challenge); err == nil && challenge.TwoFactorRequired {
		return TokenResponse{}, &challenge, nil
	}

	var out TokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return TokenResponse{}, nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil, nil
}

// LoginWithTwoFactor completes a 2FA-gated login with a TOTP or backup code.
func (c *Client) LoginWithTwoFactor(ctx context.Context, email, password, code string) (TokenResponse, error) {
	var out TokenResponse
	err := c.postJSON(ctx, "/auth/login-with-2fa", "", TwoFactorLoginRequest{
		Email:    email,
		Password: password,
		Code:     code,
	}, &out, http.StatusOK)
	return out, err
}

// Refresh rotates a refresh token into a new session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenResponse, error) {
	var out TokenResponse
	err := c.postJSON(ctx, "/auth/refresh", "", RefreshRequest{RefreshToken: refreshToken}, &out, http.StatusOK)
	return out, err
}

// Logout revokes one refresh token.
func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	return c.postJSON(ctx, "/auth/logout", accessToken, LogoutRequest{RefreshToken: refreshToken}, nil, http.StatusNoContent)
}

// LogoutAll revokes every refresh token the account holds.
func (c *Client) LogoutAll(ctx context.Context, accessToken string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/auth/logout-all", accessToken, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusNoContent)
}

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context, accessToken string) (UserResponse, error) {
	var out UserResponse
	err := c.getJSON(ctx, "/auth/me", accessToken, &out)
	return out, err
}

// TwoFactorSetup begins TOTP enrollment for the authenticated account.
func (c *Client) TwoFactorSetup(ctx context.Context, accessToken string) (TwoFactorSetupResponse, error) {
	var out TwoFactorSetupResponse
	err := c.postJSON(ctx, "/auth/2fa/setup", accessToken, nil, &out, http.StatusOK)
	return out, err
}

// TwoFactorVerify activates 2FA with a code from the pending secret.
func (c *Client) TwoFactorVerify(ctx context.Context, accessToken, code string) error {
	return c.postJSON(ctx, "/auth/2fa/verify", accessToken, TwoFactorCodeRequest{Code: code}, nil, http.StatusNoContent)
}

// TwoFactorDisable turns 2FA off after verifying a current code.
func (c *Client) TwoFactorDisable(ctx context.Context, accessToken, code string) error {
	return c.postJSON(ctx, "/auth/2fa/disable", accessToken, TwoFactorCodeRequest{Code: code}, nil, http.StatusNoContent)
}

// ChangeRole assigns a role to a user. Requires an admin session.
func (c *Client) ChangeRole(ctx context.Context, accessToken, userID, role string) error {
	path := "/auth/users/" + userID + "/role"
	req, err := c.newRequest(ctx, http.MethodPatch, path, accessToken, RoleChangeRequest{Role: role})
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	return decodeJSON(resp, nil, http.StatusNoContent)
}

// Livez probes liveness.
func (c *Client) Livez(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.getJSON(ctx, "/livez", "", &out)
	return out, err
}

// Readyz probes readiness.
func (c *Client) Readyz(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.getJSON(ctx, "/readyz", "", &out)
	return out, err
}

func (c *Client) newRequest(ctx context.Context, method, path, accessToken string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, body any) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, accessToken, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

func (c *Client) postJSON(ctx context.Context, path, accessToken string, body, target any, expectedStatus int) error {
	resp, err := c.do(ctx, http.MethodPost, path, accessToken, body)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, expectedStatus)
}

func (c *Client) getJSON(ctx context.Context, path, accessToken string, target any) error {
	resp, err := c.do(ctx, http.MethodGet, path, accessToken, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, http.StatusOK)
}

// decodeJSON drains the response, returning a typed APIError on an
// unexpected status and unmarshalling into target otherwise. A nil target
// skips decoding.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, body)
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
