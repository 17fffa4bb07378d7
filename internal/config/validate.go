package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is structurally usable. Credentials are
// checked separately by ValidateCredentials so read-only commands work
// without them.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateMarkers(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	if err := c.validateStability(); err != nil {
		return err
	}
	if err := c.validatePrompt(); err != nil {
		return err
	}
	return nil
}

// ValidateCredentials ensures every external collaborator can be reached.
func (c *Config) ValidateCredentials() error {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	required := []struct {
		key   string
		value string
		env   string
	}{
		{"reddit.client_id", c.Reddit.ClientID, "REDDIT_CLIENT_ID"},
		{"reddit.client_secret", c.Reddit.ClientSecret, "REDDIT_CLIENT_SECRET"},
		{"reddit.username", c.Reddit.Username, "REDDIT_USERNAME"},
		{"reddit.password", c.Reddit.Password, "REDDIT_PASSWORD"},
		{"stability.api_key", c.Stability.APIKey, "STABILITY_KEY"},
		{"imgur.client_id", c.Imgur.ClientID, "IMGUR_CLIENT_ID"},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s is required. Set %s env var or edit %s (create with 'diffusedbrush config init')", field.key, field.env, defaultPath)
		}
	}
	if c.Reddit.ThreadID == "" {
		return errors.New("reddit.thread_id must be set to the intake thread id")
	}
	if c.Reddit.Subreddit == "" {
		return errors.New("reddit.subreddit must be set")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("store.backend must be \"json\" or \"sqlite\", got %q", c.Store.Backend)
	}
	if c.Store.QueueFile == c.Store.LedgerFile {
		return errors.New("store.queue_file and store.ledger_file must differ")
	}
	return nil
}

func (c *Config) validateMarkers() error {
	values := map[string]string{
		"markers.accepted": c.Markers.Accepted,
		"markers.posted":   c.Markers.Posted,
		"markers.removed":  c.Markers.Removed,
	}
	seen := make(map[string]string, len(values))
	for key, value := range values {
		trimmed := strings.TrimSpace(value)
		if other, dup := seen[trimmed]; dup {
			return fmt.Errorf("%s and %s must be distinct", other, key)
		}
		seen[trimmed] = key
	}
	return nil
}

func (c *Config) validatePublish() error {
	if c.Publish.ResolveAttempts <= 0 {
		return errors.New("publish.resolve_attempts must be positive")
	}
	if c.Publish.ResolveDelaySeconds < 0 {
		return errors.New("publish.resolve_delay_seconds must be >= 0")
	}
	if c.Publish.ApproveDelaySeconds < 0 {
		return errors.New("publish.approve_delay_seconds must be >= 0")
	}
	if c.Publish.RecoveryLookback < 0 {
		return errors.New("publish.recovery_lookback must be >= 0")
	}
	return nil
}

func (c *Config) validateStability() error {
	if err := ensurePositiveMap(map[string]int{
		"stability.steps":        c.Stability.Steps,
		"stability.width":        c.Stability.Width,
		"stability.height":       c.Stability.Height,
		"stability.max_attempts": c.Stability.MaxAttempts,
	}); err != nil {
		return err
	}
	if c.Stability.CFGScale <= 0 {
		return errors.New("stability.cfg_scale must be positive")
	}
	return nil
}

func (c *Config) validatePrompt() error {
	if c.Prompt.MinKeywords < 0 {
		return errors.New("prompt.min_keywords must be >= 0")
	}
	if c.Prompt.MaxKeywords < c.Prompt.MinKeywords {
		return errors.New("prompt.max_keywords must be >= prompt.min_keywords")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
