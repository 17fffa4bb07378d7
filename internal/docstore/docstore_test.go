package docstore_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diffusedbrush/internal/config"
	"diffusedbrush/internal/docstore"
)

func exerciseDocument(t *testing.T, doc docstore.Document) {
	t.Helper()
	ctx := context.Background()

	data, err := doc.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data, "unwritten document loads as nil")

	require.NoError(t, doc.Replace(ctx, []byte(`[{"author":"a"}]`)))
	data, err = doc.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"author":"a"}]`, string(data))

	require.NoError(t, doc.Replace(ctx, []byte(`[]`)))
	data, err = doc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	assert.NotEmpty(t, doc.Location())
}

func TestFileDocument(t *testing.T) {
	exerciseDocument(t, docstore.NewFileDocument(filepath.Join(t.TempDir(), "queue.json")))
}

func TestSQLiteDocument(t *testing.T) {
	db, err := docstore.OpenSQLite(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	exerciseDocument(t, db.Document(docstore.QueueDocument))
}

func TestSQLiteDocumentsAreIndependentAndDurable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	db, err := docstore.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Document(docstore.QueueDocument).Replace(ctx, []byte(`["q"]`)))
	require.NoError(t, db.Document(docstore.LedgerDocument).Replace(ctx, []byte(`["l"]`)))
	require.NoError(t, db.Close())

	reopened, err := docstore.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	queue, err := reopened.Document(docstore.QueueDocument).Load(ctx)
	require.NoError(t, err)
	ledger, err := reopened.Document(docstore.LedgerDocument).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `["q"]`, string(queue))
	assert.Equal(t, `["l"]`, string(ledger))
}

func TestFileDocumentRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := docstore.NewFileDocument(filepath.Join(t.TempDir(), "queue.json"))
	err := doc.Replace(ctx, []byte("[]"))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOpenSelectsBackend(t *testing.T) {
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Paths.DataDir = dir
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Store.QueueFile = filepath.Join(dir, "q.json")
	cfg.Store.LedgerFile = filepath.Join(dir, "l.json")
	cfg.Store.SQLitePath = filepath.Join(dir, "store.db")

	backend, err := docstore.Open(&cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.Store.QueueFile, backend.Queue.Location())
	require.NoError(t, backend.Close())

	cfg.Store.Backend = "sqlite"
	backend, err = docstore.Open(&cfg)
	require.NoError(t, err)
	assert.Contains(t, backend.Ledger.Location(), docstore.LedgerDocument)
	require.NoError(t, backend.Close())

	cfg.Store.Backend = "etcd"
	_, err = docstore.Open(&cfg)
	assert.Error(t, err)
}
