package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Credentials is an oauth2.TokenSource backed by the console's own
// /auth/login and /auth/refresh endpoints. After the first login it prefers
// the refresh token; when the refresh is rejected it falls back to a full
// login with the stored credentials.
type Credentials struct {
	BaseURL  string
	Email    string
	Password string

	// HTTP defaults to http.DefaultClient.
	HTTP *http.Client

	mu           sync.Mutex
	refreshToken string
}

type tokenData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at"`
}

// Token implements oauth2.TokenSource.
func (c *Credentials) Token() (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refreshToken != "" {
		tok, err := c.exchange("/auth/refresh", map[string]string{
			"refresh_token": c.refreshToken,
		})
		if err == nil {
			return tok, nil
		}
		// Refresh token expired or revoked, fall through to a fresh login.
		c.refreshToken = ""
	}

	tok, err := c.exchange("/auth/login", map[string]string{
		"email":    c.Email,
		"password": c.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return tok, nil
}

func (c *Credentials) exchange(path string, payload map[string]string) (*oauth2.Token, error) {
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode auth request: %w", err)
	}
	resp, err := httpClient.Post(c.BaseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var data tokenData
	if err := decodeEnvelope(resp, &data); err != nil {
		return nil, err
	}
	if data.AccessToken == "" {
		return nil, fmt.Errorf("auth response carried no access token")
	}
	if data.RefreshToken != "" {
		c.refreshToken = data.RefreshToken
	}

	tok := &oauth2.Token{AccessToken: data.AccessToken, TokenType: "Bearer"}
	if data.ExpiresAt > 0 {
		tok.Expiry = time.Unix(data.ExpiresAt, 0)
	}
	return tok, nil
}
