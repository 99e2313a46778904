// Package idp talks to the external identity provider. Only the userinfo
// result contract is modelled here; token exchange happens upstream.
package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// UserInfo is the provider's view of a user, used to synchronize the local
// user row.
type UserInfo struct {
	Subject   string `json:"id"`
	Email     string `json:"preferred_email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"picture"`
}

// Client resolves identity-provider user attributes.
type Client interface {
	// UserInfo fetches the provider's attributes for a token subject.
	UserInfo(ctx context.Context, subject string) (UserInfo, error)
}

// httpClient implements Client against the provider's management API.
type httpClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  zerolog.Logger
}

// NewClient creates a new identity-provider client.
func NewClient(baseURL, token string, logger zerolog.Logger) Client {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With().Str("component", "idp-client").Logger(),
	}
}

// UserInfo fetches the provider's attributes for a token subject.
func (c *httpClient) UserInfo(ctx context.Context, subject string) (UserInfo, error) {
	endpoint := fmt.Sprintf("%s/api/v1/user?id=%s", c.baseURL, url.QueryEscape(subject))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return UserInfo{}, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("subject", subject).Msg("userinfo request failed")
		return UserInfo{}, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return UserInfo{}, fmt.Errorf("failed to read userinfo response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("subject", subject).
			Msg("userinfo request rejected")
		return UserInfo{}, fmt.Errorf("userinfo request rejected with status %d", resp.StatusCode)
	}

	var info UserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return UserInfo{}, fmt.Errorf("failed to decode userinfo response: %w", err)
	}

	return info, nil
}
