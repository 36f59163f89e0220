// Package eight is the HTTP client for the Eight Sleep cloud API:
// password authentication, refresh-token exchange, interval telemetry
// and device temperature control.
package eight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
	"github.com/rbkantor/eightsleep-nosub-app/internal/config"
)

// Token is the credential material returned by the auth endpoints.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
}

// AuthError means the provider rejected the credentials or refresh
// token. It is fatal for the calling request: the user must log in
// again, there is no retry.
type AuthError struct {
	Status int
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("eight auth failed (status %d): %s", e.Status, e.Reason)
}

func (e *AuthError) Unwrap() error { return internal.ErrProviderAuth }

type Client struct {
	authURL      string
	baseURL      string
	host         string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       internal.Logger
}

func NewClient(cfg *config.Config, logger internal.Logger) *Client {
	return &Client{
		authURL:      cfg.EightAuthURL,
		baseURL:      cfg.EightClientAPIURL,
		host:         cfg.EightClientHost,
		clientID:     cfg.EightClientID,
		clientSecret: cfg.EightClientSecret,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		logger:       logger,
	}
}

type tokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    json.Number     `json:"expires_in"`
	UserID       string          `json:"userId"`
}

// Authenticate exchanges email/password for a fresh token pair.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*Token, error) {
	payload := map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"grant_type":    "password",
		"username":      email,
		"password":      password,
	}
	return c.requestToken(ctx, payload, "")
}

// RefreshToken exchanges a refresh token for a new token pair. The
// provider user id is carried through unchanged when the response
// omits it.
func (c *Client) RefreshToken(ctx context.Context, refreshToken, eightUserID string) (*Token, error) {
	payload := map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	}
	return c.requestToken(ctx, payload, eightUserID)
}

func (c *Client) requestToken(ctx context.Context, payload map[string]string, fallbackUserID string) (*Token, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("eight token request failed: %v", err)
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusForbidden {
		c.logger.Warnf("eight rejected credentials: status=%d", resp.StatusCode)
		return nil, &AuthError{Status: resp.StatusCode, Reason: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token request returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, &AuthError{Status: resp.StatusCode, Reason: "empty access token in response"}
	}

	expiresIn, err := tokenResp.ExpiresIn.Int64()
	if err != nil || expiresIn <= 0 {
		expiresIn = 3600
	}

	userID := tokenResp.UserID
	if userID == "" {
		userID = fallbackUserID
	}

	return &Token{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(expiresIn) * time.Second),
		UserID:       userID,
	}, nil
}
