package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeReddit()
	c.normalizeMarkers()
	c.normalizeStability()
	c.normalizeImgur()
	if err := c.normalizePrompt(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	c.normalizeSentry()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	var err error
	if c.Store.QueueFile, err = c.dataPath(c.Store.QueueFile, defaultQueueFile); err != nil {
		return fmt.Errorf("store.queue_file: %w", err)
	}
	if c.Store.LedgerFile, err = c.dataPath(c.Store.LedgerFile, defaultLedgerFile); err != nil {
		return fmt.Errorf("store.ledger_file: %w", err)
	}
	if c.Store.SQLitePath, err = c.dataPath(c.Store.SQLitePath, defaultSQLiteFile); err != nil {
		return fmt.Errorf("store.sqlite_path: %w", err)
	}
	return nil
}

// dataPath resolves relative store paths against the data directory.
func (c *Config) dataPath(value, fallback string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	if !filepath.IsAbs(value) && !strings.HasPrefix(value, "~") {
		value = filepath.Join(c.Paths.DataDir, value)
	}
	return expandPath(value)
}

func (c *Config) normalizeReddit() {
	r := &c.Reddit
	r.ClientID = envFallback(r.ClientID, "REDDIT_CLIENT_ID")
	r.ClientSecret = envFallback(r.ClientSecret, "REDDIT_CLIENT_SECRET")
	r.Username = envFallback(r.Username, "REDDIT_USERNAME")
	r.Password = envFallback(r.Password, "REDDIT_PASSWORD")
	r.FlairID = envFallback(r.FlairID, "REDDIT_FLAIR_ID")
	r.ThreadID = strings.TrimSpace(r.ThreadID)
	r.Subreddit = strings.TrimPrefix(strings.TrimSpace(r.Subreddit), "r/")
	r.AuthURL = strings.TrimSpace(r.AuthURL)
	if r.AuthURL == "" {
		r.AuthURL = defaultRedditAuthURL
	}
	r.BaseURL = strings.TrimRight(strings.TrimSpace(r.BaseURL), "/")
	if r.BaseURL == "" {
		r.BaseURL = defaultRedditBaseURL
	}
	r.UserAgent = strings.TrimSpace(r.UserAgent)
	if r.UserAgent == "" {
		r.UserAgent = defaultRedditUserAgent
		if r.Username != "" {
			r.UserAgent = fmt.Sprintf("%s (by u/%s)", defaultRedditUserAgent, r.Username)
		}
	}
	if r.RequestsPerMinute <= 0 {
		r.RequestsPerMinute = defaultRedditRPM
	}
	if r.TimeoutSeconds <= 0 {
		r.TimeoutSeconds = defaultRedditTimeout
	}
}

// Markers are matched as substrings, so surrounding whitespace is kept for
// the prefix and posted marker but blank values fall back to defaults.
func (c *Config) normalizeMarkers() {
	if strings.TrimSpace(c.Markers.SubjectPrefix) == "" {
		c.Markers.SubjectPrefix = defaultSubjectPrefix
	}
	if strings.TrimSpace(c.Markers.Accepted) == "" {
		c.Markers.Accepted = defaultAcceptedMarker
	}
	if strings.TrimSpace(c.Markers.Posted) == "" {
		c.Markers.Posted = defaultPostedMarker
	}
	if strings.TrimSpace(c.Markers.Removed) == "" {
		c.Markers.Removed = defaultRemovedMarker
	}
}

func (c *Config) normalizeStability() {
	s := &c.Stability
	s.APIKey = envFallback(s.APIKey, "STABILITY_KEY")
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if s.BaseURL == "" {
		s.BaseURL = defaultStabilityBaseURL
	}
	s.Engine = strings.TrimSpace(s.Engine)
	if s.Engine == "" {
		s.Engine = defaultStabilityEngine
	}
	if s.Samples <= 0 {
		s.Samples = 1
	}
	if s.TimeoutSeconds <= 0 {
		s.TimeoutSeconds = defaultStabilityTimeout
	}
}

func (c *Config) normalizeImgur() {
	c.Imgur.ClientID = envFallback(c.Imgur.ClientID, "IMGUR_CLIENT_ID")
	c.Imgur.BaseURL = strings.TrimRight(strings.TrimSpace(c.Imgur.BaseURL), "/")
	if c.Imgur.BaseURL == "" {
		c.Imgur.BaseURL = defaultImgurBaseURL
	}
	if c.Imgur.TimeoutSeconds <= 0 {
		c.Imgur.TimeoutSeconds = defaultImgurTimeout
	}
}

func (c *Config) normalizePrompt() error {
	keywords := make([]string, 0, len(c.Prompt.Keywords))
	seen := make(map[string]struct{}, len(c.Prompt.Keywords))
	for _, kw := range c.Prompt.Keywords {
		normalized := strings.TrimSpace(kw)
		if normalized == "" {
			continue
		}
		key := strings.ToLower(normalized)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		keywords = append(keywords, normalized)
	}
	c.Prompt.Keywords = keywords
	if strings.TrimSpace(c.Prompt.KeywordsFile) != "" {
		var err error
		if c.Prompt.KeywordsFile, err = expandPath(strings.TrimSpace(c.Prompt.KeywordsFile)); err != nil {
			return fmt.Errorf("prompt.keywords_file: %w", err)
		}
	}
	c.Prompt.QualitySuffix = strings.TrimSpace(c.Prompt.QualitySuffix)
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = envFallback(c.Notifications.NtfyTopic, "NTFY_TOPIC")
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeSentry() {
	c.Sentry.DSN = envFallback(c.Sentry.DSN, "SENTRY_DSN")
	c.Sentry.Environment = strings.TrimSpace(c.Sentry.Environment)
}

func envFallback(value, key string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(env)
	}
	return ""
}
