package imgur

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"diffusedbrush/internal/config"
	"diffusedbrush/internal/hosting"
	"diffusedbrush/internal/httpretry"
	"diffusedbrush/internal/services"
)

const (
	component          = "imgur"
	defaultBaseURL     = "https://api.imgur.com"
	defaultHTTPTimeout = 60 * time.Second
)

// Config captures the runtime settings required to upload to Imgur.
type Config struct {
	ClientID       string
	BaseURL        string
	TimeoutSeconds int
}

// ConfigFrom extracts Imgur settings from the application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		ClientID:       cfg.Imgur.ClientID,
		BaseURL:        cfg.Imgur.BaseURL,
		TimeoutSeconds: cfg.Imgur.TimeoutSeconds,
	}
}

// Client uploads images anonymously under a registered client id.
type Client struct {
	cfg        Config
	httpClient *http.Client
	policy     httpretry.Policy
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

// WithRetryPolicy overrides the transport retry policy.
func WithRetryPolicy(policy httpretry.Policy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// NewClient constructs an Imgur client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		policy:     httpretry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

var _ hosting.Host = (*Client)(nil)

type uploadResponse struct {
	Data struct {
		ID    string `json:"id"`
		Link  string `json:"link"`
		Error any    `json:"error"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// Upload posts the image and returns its direct link.
func (c *Client) Upload(ctx context.Context, image []byte, title string) (string, error) {
	if len(image) == 0 {
		return "", services.Wrap(services.ErrValidation, component, "upload", "Image is empty", nil)
	}
	if c.cfg.ClientID == "" {
		return "", services.Wrap(services.ErrConfiguration, component, "upload",
			"Imgur client id missing; set IMGUR_CLIENT_ID", nil)
	}
	form := url.Values{}
	form.Set("image", base64.StdEncoding.EncodeToString(image))
	form.Set("type", "base64")
	if title = strings.TrimSpace(title); title != "" {
		form.Set("title", title)
	}
	encoded := form.Encode()

	var parsed uploadResponse
	err := c.policy.Do(ctx, "imgur upload", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/3/image", strings.NewReader(encoded))
		if err != nil {
			return fmt.Errorf("imgur request: new request: %w", err)
		}
		req.Header.Set("Authorization", "Client-ID "+c.cfg.ClientID)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("imgur request: http error: %w", err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("imgur request: read body: %w", err)
		}
		if resp.StatusCode >= http.StatusMultipleChoices {
			return httpretry.NewStatusError("imgur request", resp, body)
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return fmt.Errorf("imgur request: decode response: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", services.Wrap(services.ErrTransient, component, "upload", "Image upload failed", err)
	}
	link := strings.TrimSpace(parsed.Data.Link)
	if !parsed.Success || link == "" {
		return "", services.Wrap(services.ErrTransient, component, "upload",
			fmt.Sprintf("Upload not accepted (status=%d error=%v)", parsed.Status, parsed.Data.Error), nil)
	}
	return link, nil
}
