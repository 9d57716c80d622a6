package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/config"
)

// ErrInvalidCredentials is returned when the provider rejects a password or
// refresh grant.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ProviderUser is the provider's view of an account.
type ProviderUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	ConfirmedAt string `json:"confirmed_at,omitempty"`
}

// Session is an issued token pair. A sign-up that still needs email
// confirmation yields a Session with an empty AccessToken but a populated
// User.
type Session struct {
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	TokenType    string       `json:"token_type,omitempty"`
	ExpiresIn    int          `json:"expires_in,omitempty"`
	User         ProviderUser `json:"user"`
}

// IClient defines the operations delegated to the external identity provider.
// Token contents are verified locally (auth.VerifyAccessToken); everything
// that mutates provider-side state goes through here.
type IClient interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Recover(ctx context.Context, email string) error
	Verify(ctx context.Context, verifyType, token, email string) (*Session, error)
	UpdatePassword(ctx context.Context, accessToken, newPassword string) error
	AdminUpdateEmail(ctx context.Context, userID, newEmail string) error
	AdminDeleteUser(ctx context.Context, userID string) error
}

// client implements IClient against a GoTrue-style HTTP API.
type client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates an identity provider client.
func NewClient(cfg *config.Config) IClient {
	return &client{
		baseURL:    cfg.IdentityBaseURL,
		serviceKey: cfg.IdentityServiceKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// providerError is the provider's error body; field names vary by endpoint.
type providerError struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

func (e *providerError) text() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	case e.Message != "":
		return e.Message
	}
	return "identity provider request failed"
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
// bearer overrides the service key for user-scoped calls.
func (c *client) do(ctx context.Context, method, path, bearer string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode identity request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create identity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.serviceKey)
	if bearer == "" {
		bearer = c.serviceKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Error calling identity provider %s %s: %v", method, path, err)
		return fmt.Errorf("failed to contact identity provider")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read identity response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var pErr providerError
		_ = json.Unmarshal(respBody, &pErr)
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, pErr.text())
		}
		return fmt.Errorf("identity provider returned status %d: %s", resp.StatusCode, pErr.text())
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse identity response: %w", err)
		}
	}
	return nil
}

// SignUp creates a provider account. Depending on provider settings the
// response is either a full session or just the unconfirmed user.
func (c *client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		return nil, err
	}
	if session.User.ID == "" {
		// Some providers return the bare user object instead of a session
		// when confirmation is pending.
		return nil, fmt.Errorf("identity provider returned no user on signup")
	}
	return &session, nil
}

func (c *client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", map[string]string{
		"refresh_token": refreshToken,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Recover asks the provider to send a password-reset email. The provider
// responds identically whether or not the account exists.
func (c *client) Recover(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/v1/recover", "", map[string]string{
		"email": email,
	}, nil)
}

// Verify redeems a one-time token (signup confirmation or recovery) for a
// session.
func (c *client) Verify(ctx context.Context, verifyType, token, email string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/auth/v1/verify", "", map[string]string{
		"type":  verifyType,
		"token": token,
		"email": email,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdatePassword sets a new password for the session owner.
func (c *client) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	return c.do(ctx, http.MethodPut, "/auth/v1/user", accessToken, map[string]string{
		"password": newPassword,
	}, nil)
}

// AdminUpdateEmail changes an account's email via the admin API.
func (c *client) AdminUpdateEmail(ctx context.Context, userID, newEmail string) error {
	return c.do(ctx, http.MethodPut, "/auth/v1/admin/users/"+userID, "", map[string]string{
		"email": newEmail,
	}, nil)
}

// AdminDeleteUser removes a provider account. Used to roll back sign-up when
// the local profile row cannot be created.
func (c *client) AdminDeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/auth/v1/admin/users/"+userID, "", nil, nil)
}
