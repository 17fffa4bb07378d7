package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"diffusedbrush/internal/config"
)

// Document names used by both backends.
const (
	QueueDocument  = "submissions"
	LedgerDocument = "posts"
)

// Document is one durable, atomically replaced blob.
type Document interface {
	// Load returns the current content, or nil when the document was never written.
	Load(ctx context.Context) ([]byte, error)
	// Replace swaps the full content atomically.
	Replace(ctx context.Context, data []byte) error
	// Location describes where the document lives, for operator output.
	Location() string
}

// Backend bundles the queue and ledger documents of one configured store.
type Backend struct {
	Queue  Document
	Ledger Document
	closer io.Closer
}

// Open builds the backend selected by cfg.Store.Backend.
func Open(cfg *config.Config) (*Backend, error) {
	if cfg == nil {
		return nil, errors.New("docstore: config is nil")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	switch cfg.Store.Backend {
	case "", "json":
		return &Backend{
			Queue:  NewFileDocument(cfg.Store.QueueFile),
			Ledger: NewFileDocument(cfg.Store.LedgerFile),
		}, nil
	case "sqlite":
		db, err := OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Queue:  db.Document(QueueDocument),
			Ledger: db.Document(LedgerDocument),
			closer: db,
		}, nil
	default:
		return nil, fmt.Errorf("docstore: unsupported backend %q", cfg.Store.Backend)
	}
}

// Close releases backend resources.
func (b *Backend) Close() error {
	if b == nil || b.closer == nil {
		return nil
	}
	return b.closer.Close()
}
