package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"diffusedbrush/internal/config"
	"diffusedbrush/internal/httpretry"
	"diffusedbrush/internal/services"
)

const (
	component          = "reddit"
	defaultHTTPTimeout = 15 * time.Second
	tokenExpirySlack   = time.Minute
	maxResponseBytes   = 8 << 20
)

// Config captures the settings required to talk to Reddit.
type Config struct {
	ClientID          string
	ClientSecret      string
	Username          string
	Password          string
	UserAgent         string
	AuthURL           string
	BaseURL           string
	Subreddit         string
	FlairID           string
	RequestsPerMinute int
	TimeoutSeconds    int
}

// ConfigFrom extracts the Reddit settings from the application config.
func ConfigFrom(cfg *config.Config) Config {
	r := cfg.Reddit
	return Config{
		ClientID:          r.ClientID,
		ClientSecret:      r.ClientSecret,
		Username:          r.Username,
		Password:          r.Password,
		UserAgent:         r.UserAgent,
		AuthURL:           r.AuthURL,
		BaseURL:           r.BaseURL,
		Subreddit:         r.Subreddit,
		FlairID:           r.FlairID,
		RequestsPerMinute: r.RequestsPerMinute,
		TimeoutSeconds:    r.TimeoutSeconds,
	}
}

// Client is a Reddit API client bound to one bot account.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	policy     httpretry.Policy
	now        func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(policy httpretry.Policy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithLimiter overrides the request pacing limiter.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		if limiter != nil {
			c.limiter = limiter
		}
	}
}

// WithClock overrides the clock used for token expiry (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New constructs a Reddit client.
func New(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://oauth.reddit.com"
	}
	if strings.TrimSpace(cfg.AuthURL) == "" {
		cfg.AuthURL = "https://www.reddit.com/api/v1/access_token"
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = "diffusedbrush-bot/0.2"
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 5),
		policy:     httpretry.DefaultPolicy(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Identity returns the bot account name.
func (c *Client) Identity() string {
	return strings.TrimSpace(c.cfg.Username)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type": {"password"},
		"username":   {c.cfg.Username},
		"password":   {c.cfg.Password},
	}
	var parsed tokenResponse
	err := c.policy.Do(ctx, "reddit auth", func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("reddit auth: new request: %w", err)
		}
		req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		return c.send(req, "reddit auth", &parsed)
	})
	if err != nil {
		return "", services.Wrap(services.ErrTransient, component, "auth", "Failed to obtain access token", err)
	}
	if parsed.Error != "" || parsed.AccessToken == "" {
		return "", services.Wrap(services.ErrConfiguration, component, "auth",
			fmt.Sprintf("Token request rejected (%s); check reddit credentials", firstNonEmpty(parsed.Error, "empty token")), nil)
	}
	lifetime := time.Duration(parsed.ExpiresIn) * time.Second
	if lifetime <= tokenExpirySlack {
		lifetime = 2 * tokenExpirySlack
	}
	c.token = parsed.AccessToken
	c.tokenExpiry = c.now().Add(lifetime - tokenExpirySlack)
	return c.token, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// call performs one authenticated API request. A 401 invalidates the cached
// token and is retried once with a fresh one. Only GETs follow the retry
// policy: a POST that timed out or hit a 5xx may still have been applied.
func (c *Client) call(ctx context.Context, method, path string, query, form url.Values, out any) error {
	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	policy := c.policy
	if method != http.MethodGet {
		policy.Attempts = 1
	}
	reauthed := false
	return policy.Do(ctx, "reddit "+path, func(ctx context.Context) error {
		for {
			token, err := c.accessToken(ctx)
			if err != nil {
				return err
			}
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			var body io.Reader
			if form != nil {
				body = strings.NewReader(form.Encode())
			}
			req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
			if err != nil {
				return fmt.Errorf("reddit request: new request: %w", err)
			}
			req.Header.Set("Authorization", "bearer "+token)
			req.Header.Set("User-Agent", c.cfg.UserAgent)
			if form != nil {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}
			err = c.send(req, "reddit "+path, out)
			var statusErr *httpretry.StatusError
			if !reauthed && errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
				reauthed = true
				c.invalidateToken()
				continue
			}
			return err
		}
	})
}

func (c *Client) send(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: http error: %w", op, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s: read body: %w", op, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return httpretry.NewStatusError(op, resp, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// classify maps a transport error to the services taxonomy.
func classify(op, message string, err error) error {
	var statusErr *httpretry.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return services.Wrap(services.ErrNotFound, component, op, message, err)
	}
	if errors.Is(err, services.ErrConfiguration) || errors.Is(err, services.ErrTransient) {
		return err
	}
	return services.Wrap(services.ErrTransient, component, op, message, err)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
