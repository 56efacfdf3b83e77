package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// ErrGitHubUnauthorized means GitHub rejected the access token
// outright, as opposed to a transport failure.
var ErrGitHubUnauthorized = errors.New("github rejected the access token")

const (
	githubAPIBase    = "https://api.github.com"
	githubUserAgent  = "authentication_hybrid"
	githubHTTPLimit  = 5 * time.Second
	githubAcceptType = "application/vnd.github+json"
)

type GitHubProfile struct {
	ID        string
	Login     string
	Name      string
	AvatarURL string
}

// GitHubClient fetches identity data from GitHub on the user's
// behalf.
type GitHubClient interface {
	FetchProfile(ctx context.Context, accessToken string) (*GitHubProfile, error)
	// FetchPrimaryEmail returns the primary verified address,
	// preferring primary+verified, then any verified, then the first
	// listed.
	FetchPrimaryEmail(ctx context.Context, accessToken string) (string, error)
}

// HTTPGitHubClient talks to api.github.com with a bounded per-call
// timeout using an oauth2 token-source transport.
type HTTPGitHubClient struct {
	baseURL string
}

func NewGitHubClient() *HTTPGitHubClient {
	return &HTTPGitHubClient{baseURL: githubAPIBase}
}

func (c *HTTPGitHubClient) FetchProfile(ctx context.Context, accessToken string) (*GitHubProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, githubHTTPLimit)
	defer cancel()

	var payload struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.get(ctx, accessToken, "/user", &payload); err != nil {
		return nil, err
	}
	return &GitHubProfile{
		ID:        strconv.FormatInt(payload.ID, 10),
		Login:     payload.Login,
		Name:      payload.Name,
		AvatarURL: payload.AvatarURL,
	}, nil
}

func (c *HTTPGitHubClient) FetchPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, githubHTTPLimit)
	defer cancel()

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := c.get(ctx, accessToken, "/user/emails", &emails); err != nil {
		return "", err
	}
	if len(emails) == 0 {
		return "", errors.New("github returned no email addresses")
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}
	return emails[0].Email, nil
}

func (c *HTTPGitHubClient) get(ctx context.Context, accessToken, path string, out any) error {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	client := oauth2.NewClient(ctx, src)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", githubAcceptType)
	req.Header.Set("User-Agent", githubUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrGitHubUnauthorized
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("github %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("github %s: decode: %w", path, err)
	}
	return nil
}
