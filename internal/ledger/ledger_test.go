package ledger_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diffusedbrush/internal/docstore"
	"diffusedbrush/internal/ledger"
	"diffusedbrush/internal/queue"
	"diffusedbrush/internal/services"
)

func newLedger(t *testing.T) (*ledger.Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reddit_posts.json")
	return ledger.New(docstore.NewFileDocument(path)), path
}

func entry(postID string) ledger.Entry {
	return ledger.NewEntry(
		queue.Submission{Author: "painter", Subject: "a fox", OriginLink: "https://reddit.com/c/" + postID, CreatedAt: 100},
		"https://i.imgur.com/"+postID+".png",
		postID,
	)
}

func TestAppendIsUniqueByPostID(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t)

	added, err := l.Append(ctx, entry("p1"))
	require.NoError(t, err)
	assert.True(t, added)
	added, err = l.Append(ctx, entry("p1"))
	require.NoError(t, err)
	assert.False(t, added)
	_, err = l.Append(ctx, entry("p2"))
	require.NoError(t, err)

	entries, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "p1", entries[0].PostID)
	assert.Equal(t, "https://i.imgur.com/p1.png", entries[0].ArtifactLink)
	assert.Equal(t, "painter", entries[0].Author)

	has, err := l.Has(ctx, "p2")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestAppendRequiresPostID(t *testing.T) {
	l, _ := newLedger(t)
	_, err := l.Append(context.Background(), entry(" "))
	assert.True(t, errors.Is(err, services.ErrValidation))
}

func TestRemovePostIDsRewritesOnce(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t)
	for _, id := range []string{"p1", "p2", "p3"} {
		_, err := l.Append(ctx, entry(id))
		require.NoError(t, err)
	}

	removed, err := l.RemovePostIDs(ctx, []string{"p1", "p3", "unknown"})
	require.NoError(t, err)
	require.Len(t, removed, 2)
	assert.Equal(t, "p1", removed[0].PostID)
	assert.Equal(t, "p3", removed[1].PostID)

	entries, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "p2", entries[0].PostID)

	removed, err = l.RemovePostIDs(ctx, []string{"p1"})
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestLedgerRejectsDuplicatePostIDs(t *testing.T) {
	l, path := newLedger(t)
	payload := `[{"post_id":"p1"},{"post_id":"p1"}]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	_, err := l.List(context.Background())
	assert.True(t, errors.Is(err, services.ErrInvariant), "got %v", err)
}
