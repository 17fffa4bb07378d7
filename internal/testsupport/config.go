package testsupport

import (
	"path/filepath"
	"testing"

	"diffusedbrush/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Credentials are filled with placeholders and the approval delay is zero.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Store.QueueFile = filepath.Join(base, "data", "reddit_submissions.json")
	cfgVal.Store.LedgerFile = filepath.Join(base, "data", "reddit_posts.json")
	cfgVal.Store.SQLitePath = filepath.Join(base, "data", "diffusedbrush.db")
	cfgVal.Reddit.ClientID = "test-client"
	cfgVal.Reddit.ClientSecret = "test-secret"
	cfgVal.Reddit.Username = "DiffusedBot"
	cfgVal.Reddit.Password = "test-password"
	cfgVal.Reddit.ThreadID = "intake"
	cfgVal.Reddit.Subreddit = "diffusedgallery"
	cfgVal.Stability.APIKey = "test-stability"
	cfgVal.Imgur.ClientID = "test-imgur"
	cfgVal.Publish.ApproveDelaySeconds = 0
	cfgVal.Publish.ResolveDelaySeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSQLiteStore switches the document backend to SQLite.
func WithSQLiteStore() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = "sqlite"
	}
}

// WithApproval toggles post approval.
func WithApproval(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Publish.Approve = enabled
	}
}

// WithRecoveryLookback overrides how many recent posts recovery inspects.
func WithRecoveryLookback(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Publish.RecoveryLookback = n
	}
}

// WithNtfyTopic enables notifications against the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}
