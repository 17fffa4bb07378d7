package runner

import (
	"fmt"
	"log/slog"

	"diffusedbrush/internal/config"
	"diffusedbrush/internal/docstore"
	"diffusedbrush/internal/generation/stability"
	"diffusedbrush/internal/hosting/imgur"
	"diffusedbrush/internal/ingest"
	"diffusedbrush/internal/ledger"
	"diffusedbrush/internal/notifications"
	"diffusedbrush/internal/platform/reddit"
	"diffusedbrush/internal/prompt"
	"diffusedbrush/internal/publish"
	"diffusedbrush/internal/queue"
	"diffusedbrush/internal/reconcile"
)

// NewFromConfig wires the production components. The returned backend must
// be closed by the caller.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Runner, *docstore.Backend, error) {
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, nil, err
	}
	composer, err := prompt.NewComposerFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("prompt pool: %w", err)
	}
	backend, err := docstore.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	client := reddit.New(reddit.ConfigFrom(cfg))
	q := queue.New(backend.Queue)
	l := ledger.New(backend.Ledger)
	deps := Dependencies{
		Ingester:   ingest.NewFromConfig(cfg, client, logger),
		Queue:      q,
		Ledger:     l,
		Reconciler: reconcile.New(client, l, cfg.Markers, logger),
		Workflow: publish.New(publish.Dependencies{
			Platform:  client,
			Generator: stability.NewClient(stability.ConfigFrom(cfg)),
			Host:      imgur.NewClient(imgur.ConfigFrom(cfg)),
			Composer:  composer,
			Queue:     q,
			Ledger:    l,
		}, publish.SettingsFrom(cfg), logger),
		Notifier: notifications.NewService(cfg),
	}
	return New(cfg.LockPath(), deps, logger), backend, nil
}
