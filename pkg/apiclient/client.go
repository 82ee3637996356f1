// Package apiclient wraps outbound calls to the platform API with the
// session-aware interceptor chain and drives the login exchange.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/edulane/edulane-go/pkg/logging"
	"github.com/edulane/edulane-go/pkg/session"
)

const (
	defaultTokenPath = "/token"
	defaultUserPath  = "/users/me"
	defaultTimeout   = 30 * time.Second
)

// Config configures the API client.
type Config struct {
	// BaseURL is the API root, including any version prefix
	// (e.g. "http://localhost:8000/api/v1").
	BaseURL string

	// TokenPath is the token-issuing endpoint relative to BaseURL.
	// Default: "/token".
	TokenPath string

	// UserPath is the current-user profile endpoint relative to
	// BaseURL. Default: "/users/me".
	UserPath string

	// Timeout bounds each request. Default: 30s.
	Timeout time.Duration

	// Transport overrides the underlying RoundTripper (tests).
	Transport http.RoundTripper
}

// Client is the HTTP client all API traffic goes through. Every
// request rides the interceptor chain; page-level callers use Do/Get
// and stay oblivious to session handling.
type Client struct {
	http     *http.Client
	base     *url.URL
	tokenURL *url.URL
	userURL  *url.URL
	store    *session.Store
	logger   logging.Logger
}

// New creates a client bound to the given session store.
func New(cfg Config, store *session.Store, logger logging.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("apiclient: base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("apiclient: invalid base URL: %w", err)
	}
	if logger == nil {
		logger = logging.NewSimpleLogger("apiclient", logging.LevelInfo, false)
	}

	tokenPath := cfg.TokenPath
	if tokenPath == "" {
		tokenPath = defaultTokenPath
	}
	userPath := cfg.UserPath
	if userPath == "" {
		userPath = defaultUserPath
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	baseTransport := cfg.Transport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}

	tokenURL := base.JoinPath(tokenPath)
	c := &Client{
		base:     base,
		tokenURL: tokenURL,
		userURL:  base.JoinPath(userPath),
		store:    store,
		logger:   logger,
	}
	c.http = &http.Client{
		Timeout: timeout,
		Transport: &authTransport{
			base:      baseTransport,
			store:     store,
			tokenPath: tokenURL.Path,
			logger:    logger.WithModule("apiclient"),
		},
	}

	return c, nil
}

// HTTPClient exposes the interceptor-wrapped client for callers that
// want to issue requests directly.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// NewRequest builds a request for a path relative to the API root.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), body)
}

// Do sends a request through the interceptor chain.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.http.Do(req)
}

// Get issues a GET against a path relative to the API root.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Login runs the full login exchange: it dispatches LoginStart, submits
// the username/password form to the token endpoint, fetches the full
// profile with the fresh token, and dispatches LoginSuccess. A 401 from
// the token endpoint dispatches LoginFailure with the server's message
// and returns ErrLoginRejected; it never forces a logout, so a bad
// password cannot bounce an existing session.
func (c *Client) Login(ctx context.Context, username, password string) (*session.User, error) {
	c.store.LoginStart()

	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.tokenURL.String(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	// The exchange rides our client so tests and custom transports
	// apply; the token path is excluded from 401 interception.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	tok, err := conf.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil &&
			retrieveErr.Response.StatusCode == http.StatusUnauthorized {
			detail := errorDetail(retrieveErr.Body, "incorrect username or password")
			c.logger.Info("login rejected", "username", username)
			c.store.LoginFailure(detail)
			return nil, fmt.Errorf("%w: %s", ErrLoginRejected, detail)
		}
		c.store.LoginFailure("login failed: " + err.Error())
		return nil, fmt.Errorf("apiclient: token exchange failed: %w", err)
	}

	// The credential only carries a summary of the user; the profile
	// endpoint returns the authoritative record.
	user, err := c.fetchUser(ctx, tok.AccessToken)
	if err != nil {
		c.store.LoginFailure("login failed: " + err.Error())
		return nil, err
	}

	c.store.LoginSuccess(*user, tok.AccessToken)
	c.logger.Info("login succeeded", "username", user.Username)
	return user, nil
}

// CurrentUser fetches the authenticated profile using the session's
// current credential.
func (c *Client) CurrentUser(ctx context.Context) (*session.User, error) {
	return c.fetchUser(ctx, "")
}

// fetchUser retrieves the profile. With an explicit token it is set on
// the request directly (the login exchange, before the session holds
// the new credential); otherwise the transport injects the session's.
func (c *Client) fetchUser(ctx context.Context, token string) (*session.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("apiclient: building profile request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(body, ""),
		}
	}

	var user session.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("apiclient: decoding profile: %w", err)
	}
	return &user, nil
}
