// Package authclient is a small HTTP client for the auth endpoints, used by
// other services and by integration tooling.
package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Skotchmaster/edu_platform/pkg/identity"
)

const DefaultCookieName = "edu_refresh"

// ErrRejected is returned for 400, 401 and 403 answers.
var ErrRejected = errors.New("authclient: request rejected")

type Client struct {
	baseURL    string
	httpClient *http.Client
	CookieName string
}

func NewClient(authServiceURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(authServiceURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		CookieName: DefaultCookieName,
	}
}

// Tokens is an access token plus the refresh token taken from the cookie.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"-"`
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
		}
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return resp, nil
}

func (c *Client) readTokens(resp *http.Response) (*Tokens, error) {
	defer resp.Body.Close()

	var out Tokens
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == c.CookieName {
			out.RefreshToken = ck.Value
		}
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*Tokens, error) {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return c.readTokens(resp)
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token/refresh", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: c.CookieName, Value: refreshToken})

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return c.readTokens(resp)
}

// Logout revokes refreshToken and, when accessToken is set, denies it too.
func (c *Client) Logout(ctx context.Context, refreshToken, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if refreshToken != "" {
		req.AddCookie(&http.Cookie{Name: c.CookieName, Value: refreshToken})
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) Me(ctx context.Context, accessToken string) (identity.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me", nil)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.do(req)
	if err != nil {
		return identity.Identity{}, err
	}
	defer resp.Body.Close()

	var id identity.Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return identity.Identity{}, fmt.Errorf("decode response: %w", err)
	}
	return id, nil
}
