package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// DefaultHost is the public GitHub host.
const DefaultHost = "github.com"

// GitHubUser is the identity a token authenticates as.
type GitHubUser struct {
	Login  string
	Name   string
	Email  string
	Scopes []string
}

// GitHubVerifier checks personal access tokens against the GitHub REST API.
type GitHubVerifier struct {
	client *github.Client
}

type verifierConfig struct {
	host       string
	baseURL    string
	httpClient *http.Client
}

// VerifierOption configures a GitHubVerifier.
type VerifierOption func(*verifierConfig)

// WithHost selects the GitHub host. Hosts other than github.com are treated
// as GitHub Enterprise Server.
func WithHost(host string) VerifierOption {
	return func(c *verifierConfig) {
		c.host = host
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) VerifierOption {
	return func(c *verifierConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets the transport used underneath the token source.
func WithHTTPClient(hc *http.Client) VerifierOption {
	return func(c *verifierConfig) {
		c.httpClient = hc
	}
}

// NewGitHubVerifier creates a verifier for token.
func NewGitHubVerifier(token string, opts ...VerifierOption) (*GitHubVerifier, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrTokenRequired
	}

	cfg := verifierConfig{host: DefaultHost}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx := context.Background()
	if cfg.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.httpClient)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	var err error
	switch {
	case cfg.baseURL != "":
		base := strings.TrimSuffix(cfg.baseURL, "/") + "/"
		client.BaseURL, err = client.BaseURL.Parse(base)
	case cfg.host != "" && cfg.host != DefaultHost:
		client, err = client.WithEnterpriseURLs("https://"+cfg.host+"/", "https://"+cfg.host+"/")
	}
	if err != nil {
		return nil, fmt.Errorf("configure GitHub API URL: %w", err)
	}

	return &GitHubVerifier{client: client}, nil
}

// Verify fetches the authenticated user. A 401 yields an error wrapping
// ErrTokenRejected; transport failures are returned as-is.
func (v *GitHubVerifier) Verify(ctx context.Context) (*GitHubUser, error) {
	user, resp, err := v.client.Users.Get(ctx, "")
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil &&
			ghErr.Response.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", ErrTokenRejected, ghErr.Message)
		}
		return nil, fmt.Errorf("get authenticated user: %w", err)
	}

	u := &GitHubUser{
		Login: user.GetLogin(),
		Name:  user.GetName(),
		Email: user.GetEmail(),
	}
	if resp != nil {
		for _, s := range strings.Split(resp.Header.Get("X-OAuth-Scopes"), ",") {
			if s = strings.TrimSpace(s); s != "" {
				u.Scopes = append(u.Scopes, s)
			}
		}
	}
	return u, nil
}
