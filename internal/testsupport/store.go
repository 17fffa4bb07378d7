package testsupport

import (
	"testing"

	"diffusedbrush/internal/config"
	"diffusedbrush/internal/docstore"
	"diffusedbrush/internal/ledger"
	"diffusedbrush/internal/queue"
)

// MustOpenBackend opens the configured document backend and registers cleanup.
func MustOpenBackend(t testing.TB, cfg *config.Config) *docstore.Backend {
	t.Helper()

	backend, err := docstore.Open(cfg)
	if err != nil {
		t.Fatalf("docstore.Open: %v", err)
	}
	t.Cleanup(func() {
		backend.Close()
	})
	return backend
}

// MustOpenStores returns the queue and ledger over a fresh backend.
func MustOpenStores(t testing.TB, cfg *config.Config) (*queue.Queue, *ledger.Ledger) {
	t.Helper()

	backend := MustOpenBackend(t, cfg)
	return queue.New(backend.Queue), ledger.New(backend.Ledger)
}
