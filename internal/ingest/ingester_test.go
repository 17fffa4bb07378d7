package ingest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diffusedbrush/internal/ingest"
	"diffusedbrush/internal/logging"
	"diffusedbrush/internal/services"
	"diffusedbrush/internal/testsupport"
)

func newIngester(t *testing.T) (*ingest.Ingester, *testsupport.FakePlatform) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	fake := testsupport.NewFakePlatform(cfg.Reddit.Username, cfg.Reddit.ThreadID)
	return ingest.NewFromConfig(cfg, fake, logging.NewNop()), fake
}

func TestScanExtractsSubjects(t *testing.T) {
	ing, fake := newIngester(t)
	first := fake.AddSubjectComment("alice", "SUBJECT: a red fox", 100)
	fake.AddSubjectComment("bob", "just chatting", 101)
	second := fake.AddSubjectComment("carol", "  \n SUBJECT:   café at dawn  ", 102)
	fake.AddSubjectComment("dave", "SUBJECT:    ", 103)
	fake.AddSubjectComment("erin", "subject: lowercase prefix", 104)

	subs, err := ing.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 2)

	assert.Equal(t, "alice", subs[0].Author)
	assert.Equal(t, "a red fox", subs[0].Subject)
	assert.Equal(t, first, subs[0].OriginLink)
	assert.Equal(t, int64(100), subs[0].CreatedAt)

	assert.Equal(t, "café at dawn", subs[1].Subject, "subject is NFC normalized")
	assert.Equal(t, second, subs[1].OriginLink)
}

func TestScanExcludesMarkedComments(t *testing.T) {
	ctx := context.Background()
	ing, fake := newIngester(t)
	accepted := fake.AddSubjectComment("alice", "SUBJECT: one", 1)
	posted := fake.AddSubjectComment("bob", "SUBJECT: two", 2)
	removed := fake.AddSubjectComment("carol", "SUBJECT: three", 3)
	fake.AddSubjectComment("dave", "SUBJECT: four", 4)

	require.NoError(t, fake.Reply(ctx, accepted, "SUBJECT ACCEPTED"))
	require.NoError(t, fake.Reply(ctx, posted, "IMAGE POSTED: https://redd.it/p1"))
	require.NoError(t, fake.Reply(ctx, removed, "IMAGE REMOVED: https://redd.it/p2"))

	subs, err := ing.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "four", subs[0].Subject)
}

func TestScanIgnoresMarkersFromOtherAuthors(t *testing.T) {
	ing, fake := newIngester(t)
	spoofed := fake.AddSubjectComment("alice", "SUBJECT: spoofed", 1)
	fake.AddReply(spoofed, "mallory", "SUBJECT ACCEPTED")
	acked := fake.AddSubjectComment("bob", "SUBJECT: acked", 2)
	fake.AddReply(acked, "diffusedbot", "IMAGE POSTED: https://redd.it/p9")

	subs, err := ing.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "spoofed", subs[0].Subject)
}

func TestScanDropsGoneAuthors(t *testing.T) {
	ing, fake := newIngester(t)
	fake.AddSubjectComment("alice", "SUBJECT: kept", 1)
	fake.AddSubjectComment("ghost", "SUBJECT: dropped", 2)
	fake.DeleteAccount("ghost")

	subs, err := ing.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "kept", subs[0].Subject)
}

func TestScanReadFailureIsTransient(t *testing.T) {
	ing, fake := newIngester(t)
	fake.Fail(testsupport.OpReadThread, 0, errors.New("boom"))

	_, err := ing.Scan(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrTransient)
}

func TestAcknowledgeExcludesFromNextScan(t *testing.T) {
	ctx := context.Background()
	ing, fake := newIngester(t)
	fake.AddSubjectComment("alice", "SUBJECT: one", 1)
	fake.AddSubjectComment("bob", "SUBJECT: two", 2)

	subs, err := ing.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	require.NoError(t, ing.Acknowledge(ctx, subs))

	for _, sub := range subs {
		assert.Equal(t, []string{"SUBJECT ACCEPTED"}, fake.RepliesTo(sub.OriginLink))
	}
	again, err := ing.Scan(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestAcknowledgeStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	ing, fake := newIngester(t)
	fake.AddSubjectComment("alice", "SUBJECT: one", 1)
	fake.AddSubjectComment("bob", "SUBJECT: two", 2)
	fake.AddSubjectComment("carol", "SUBJECT: three", 3)

	subs, err := ing.Scan(ctx)
	require.NoError(t, err)
	fake.Fail(testsupport.OpReply, 1, errors.New("rate limited"))

	err = ing.Acknowledge(ctx, subs)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrTransient)
	assert.Len(t, fake.Replies(), 1)
	assert.Equal(t, 2, fake.Calls(testsupport.OpReply))

	fake.Heal()
	remaining, err := ing.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, "two", remaining[0].Subject)
}

func TestScanSkipsCommentsWithCollapsedReplies(t *testing.T) {
	ctx := context.Background()
	ing, fake := newIngester(t)
	consumed := fake.AddSubjectComment("alice", "SUBJECT: a fox", 1)
	fake.AddSubjectComment("bob", "SUBJECT: a heron", 2)
	require.NoError(t, fake.Reply(ctx, consumed, "SUBJECT ACCEPTED"))
	fake.CollapseReplies(consumed)

	subs, err := ing.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1, "a comment whose replies were not all loaded is never re-ingested")
	assert.Equal(t, "a heron", subs[0].Subject)
}

func TestScanAcceptsIncompleteThreadListing(t *testing.T) {
	ing, fake := newIngester(t)
	fake.AddSubjectComment("alice", "SUBJECT: a fox", 1)
	fake.SetThreadIncomplete(true)

	subs, err := ing.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
}
