package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"diffusedbrush/internal/config"
	"diffusedbrush/internal/docstore"
	"diffusedbrush/internal/ledger"
	"diffusedbrush/internal/logging"
	"diffusedbrush/internal/queue"
)

const sentryFlushTimeout = 2 * time.Second

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
	sentryHub  *sentry.Hub

	backend *docstore.Backend
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// ensureLogger builds the run logger: console or JSON output, the daily log
// file, and Sentry forwarding when a DSN is configured. Old log files are
// pruned once per process.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		hub, err := newSentryHub(cfg)
		if err != nil {
			logging.WarnWithContext(logger, "sentry disabled", "sentry_init_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check sentry.dsn"),
				logging.String(logging.FieldImpact, "errors are only logged locally"),
			)
		}
		if hub != nil {
			c.sentryHub = hub
			logger = logging.Mirror(logger, logging.NewSentryHandler(hub))
		}
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, cfg.Paths.LogDir, logging.LogFilePattern,
			logging.LogFileName(time.Now()))
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) openStores() (*queue.Queue, *ledger.Ledger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	if c.backend == nil {
		backend, err := docstore.Open(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		c.backend = backend
	}
	return queue.New(c.backend.Queue), ledger.New(c.backend.Ledger), nil
}

// close releases the store and flushes Sentry. Commands defer it after
// opening resources.
func (c *commandContext) close() {
	if c.backend != nil {
		_ = c.backend.Close()
		c.backend = nil
	}
	if c.sentryHub != nil {
		c.sentryHub.Flush(sentryFlushTimeout)
	}
}

func newSentryHub(cfg *config.Config) (*sentry.Hub, error) {
	dsn := strings.TrimSpace(cfg.Sentry.DSN)
	if dsn == "" {
		return nil, nil
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: cfg.Sentry.Environment,
		Release:     "diffusedbrush@" + version,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry client: %w", err)
	}
	return sentry.NewHub(client, sentry.NewScope()), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
