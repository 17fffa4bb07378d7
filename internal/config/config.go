package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Store selects the durable document backend for the queue and ledger.
type Store struct {
	Backend    string `toml:"backend"` // "json" or "sqlite"
	QueueFile  string `toml:"queue_file"`
	LedgerFile string `toml:"ledger_file"`
	SQLitePath string `toml:"sqlite_path"`
}

// Reddit contains platform credentials and the intake/publish targets.
type Reddit struct {
	ClientID          string `toml:"client_id"`
	ClientSecret      string `toml:"client_secret"`
	Username          string `toml:"username"`
	Password          string `toml:"password"`
	UserAgent         string `toml:"user_agent"`
	AuthURL           string `toml:"auth_url"`
	BaseURL           string `toml:"base_url"`
	ThreadID          string `toml:"thread_id"`
	Subreddit         string `toml:"subreddit"`
	FlairID           string `toml:"flair_id"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
}

// Markers is the reply vocabulary that forms the inter-run signaling protocol.
type Markers struct {
	SubjectPrefix string `toml:"subject_prefix"`
	Accepted      string `toml:"accepted"`
	Posted        string `toml:"posted"`
	Removed       string `toml:"removed"`
}

// Publish tunes the publication workflow.
type Publish struct {
	Approve             bool `toml:"approve"`
	ApproveDelaySeconds int  `toml:"approve_delay_seconds"`
	ResolveAttempts     int  `toml:"resolve_attempts"`
	ResolveDelaySeconds int  `toml:"resolve_delay_seconds"`
	RecoveryLookback    int  `toml:"recovery_lookback"`
}

// Stability contains configuration for the image generation API.
type Stability struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Engine         string  `toml:"engine"`
	Steps          int     `toml:"steps"`
	CFGScale       float64 `toml:"cfg_scale"`
	Width          int     `toml:"width"`
	Height         int     `toml:"height"`
	Samples        int     `toml:"samples"`
	MaxAttempts    int     `toml:"max_attempts"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Imgur contains configuration for the image host.
type Imgur struct {
	ClientID       string `toml:"client_id"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Prompt controls prompt composition.
type Prompt struct {
	Keywords      []string `toml:"keywords"`
	KeywordsFile  string   `toml:"keywords_file"`
	MinKeywords   int      `toml:"min_keywords"`
	MaxKeywords   int      `toml:"max_keywords"`
	QualitySuffix string   `toml:"quality_suffix"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Accepted       bool   `toml:"accepted"`
	Published      bool   `toml:"published"`
	Removed        bool   `toml:"removed"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Sentry contains optional error reporting configuration.
type Sentry struct {
	DSN         string `toml:"dsn"`
	Environment string `toml:"environment"`
}

// Config encapsulates all configuration values for diffusedbrush.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Store: queue/ledger document backend
//   - Reddit: platform credentials, intake thread, publish subreddit
//   - Markers: reply vocabulary recognized across runs
//   - Publish: approval, post-id resolution, and crash recovery tuning
//   - Stability: image generation engine and parameters
//   - Imgur: image hosting
//   - Prompt: keyword pool and prompt suffix
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
//   - Sentry: optional error reporting
type Config struct {
	Paths         Paths         `toml:"paths"`
	Store         Store         `toml:"store"`
	Reddit        Reddit        `toml:"reddit"`
	Markers       Markers       `toml:"markers"`
	Publish       Publish       `toml:"publish"`
	Stability     Stability     `toml:"stability"`
	Imgur         Imgur         `toml:"imgur"`
	Prompt        Prompt        `toml:"prompt"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	Sentry        Sentry        `toml:"sentry"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("diffusedbrush.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the advisory lock file that serializes invocations.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "diffusedbrush.lock")
}

// Identity returns the platform account the bot acts as. Replies and posts
// authored by this identity carry the marker protocol.
func (c *Config) Identity() string {
	return strings.TrimSpace(c.Reddit.Username)
}

// ApproveDelay returns the settle delay before approving a new post.
func (c *Config) ApproveDelay() time.Duration {
	return time.Duration(c.Publish.ApproveDelaySeconds) * time.Second
}

// ResolveDelay returns the wait between post-id resolution attempts.
func (c *Config) ResolveDelay() time.Duration {
	return time.Duration(c.Publish.ResolveDelaySeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
