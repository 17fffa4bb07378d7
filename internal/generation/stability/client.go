package stability

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"diffusedbrush/internal/config"
	"diffusedbrush/internal/generation"
	"diffusedbrush/internal/httpretry"
	"diffusedbrush/internal/services"
)

const (
	component          = "stability"
	defaultBaseURL     = "https://api.stability.ai"
	defaultHTTPTimeout = 120 * time.Second

	finishSuccess         = "SUCCESS"
	finishContentFiltered = "CONTENT_FILTERED"
)

// Config captures the runtime settings required to talk to Stability.
type Config struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// ConfigFrom extracts Stability settings from the application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		APIKey:         cfg.Stability.APIKey,
		BaseURL:        cfg.Stability.BaseURL,
		TimeoutSeconds: cfg.Stability.TimeoutSeconds,
	}
}

// Client wraps the text-to-image API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	// Single attempt. generation.GenerateWithRetry owns retries.
	policy httpretry.Policy
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

// NewClient constructs a Stability client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		policy:     httpretry.Policy{Attempts: 1},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

var _ generation.Generator = (*Client)(nil)

type textPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type textToImageRequest struct {
	TextPrompts []textPrompt `json:"text_prompts"`
	CFGScale    float64      `json:"cfg_scale"`
	Steps       int          `json:"steps"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Samples     int          `json:"samples"`
}

type textToImageResponse struct {
	Artifacts []struct {
		Base64       string `json:"base64"`
		Seed         int64  `json:"seed"`
		FinishReason string `json:"finishReason"`
	} `json:"artifacts"`
}

type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Generate requests one image. A CONTENT_FILTERED artifact or an
// invalid_prompts rejection yields generation.ErrContentRejected.
func (c *Client) Generate(ctx context.Context, prompt string, params generation.Params) (generation.Image, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return generation.Image{}, services.Wrap(services.ErrValidation, component, "generate", "Prompt is empty", nil)
	}
	if c.cfg.APIKey == "" {
		return generation.Image{}, services.Wrap(services.ErrConfiguration, component, "generate",
			"Stability API key missing; set STABILITY_KEY", nil)
	}
	engine := strings.TrimSpace(params.Engine)
	if engine == "" {
		return generation.Image{}, services.Wrap(services.ErrConfiguration, component, "generate", "Engine is empty", nil)
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "v1", "generation", engine, "text-to-image")
	if err != nil {
		return generation.Image{}, services.Wrap(services.ErrConfiguration, component, "generate", "Invalid base url", err)
	}
	samples := params.Samples
	if samples <= 0 {
		samples = 1
	}
	encoded, err := json.Marshal(textToImageRequest{
		TextPrompts: []textPrompt{{Text: prompt, Weight: 1}},
		CFGScale:    params.CFGScale,
		Steps:       params.Steps,
		Width:       params.Width,
		Height:      params.Height,
		Samples:     samples,
	})
	if err != nil {
		return generation.Image{}, services.Wrap(services.ErrValidation, component, "generate", "Failed to encode request", err)
	}

	var parsed textToImageResponse
	err = c.policy.Do(ctx, "stability generate", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
		if err != nil {
			return fmt.Errorf("stability request: new request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("stability request: http error: %w", err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("stability request: read body: %w", err)
		}
		if resp.StatusCode >= http.StatusMultipleChoices {
			var apiErr apiError
			if json.Unmarshal(body, &apiErr) == nil && apiErr.Name == "invalid_prompts" {
				return fmt.Errorf("%w: %s", generation.ErrContentRejected, apiErr.Message)
			}
			return httpretry.NewStatusError("stability request", resp, body)
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return fmt.Errorf("stability request: decode response: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, services.ErrContentRejected) {
			return generation.Image{}, err
		}
		return generation.Image{}, services.Wrap(services.ErrTransient, component, "generate", "Text-to-image request failed", err)
	}
	return decodeArtifact(parsed)
}

func decodeArtifact(parsed textToImageResponse) (generation.Image, error) {
	if len(parsed.Artifacts) == 0 {
		return generation.Image{}, services.Wrap(services.ErrTransient, component, "generate", "Response contained no artifacts", nil)
	}
	filtered := false
	for _, artifact := range parsed.Artifacts {
		switch artifact.FinishReason {
		case finishContentFiltered:
			filtered = true
			continue
		case finishSuccess, "":
		default:
			continue
		}
		data, err := base64.StdEncoding.DecodeString(artifact.Base64)
		if err != nil {
			return generation.Image{}, services.Wrap(services.ErrTransient, component, "generate", "Artifact is not valid base64", err)
		}
		return generation.Image{Data: data, ContentType: http.DetectContentType(data), Seed: artifact.Seed}, nil
	}
	if filtered {
		return generation.Image{}, generation.ErrContentRejected
	}
	return generation.Image{}, services.Wrap(services.ErrTransient, component, "generate",
		fmt.Sprintf("No usable artifact (finishReason=%s)", parsed.Artifacts[0].FinishReason), nil)
}
