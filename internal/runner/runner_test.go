package runner_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diffusedbrush/internal/config"
	"diffusedbrush/internal/ingest"
	"diffusedbrush/internal/ledger"
	"diffusedbrush/internal/logging"
	"diffusedbrush/internal/prompt"
	"diffusedbrush/internal/publish"
	"diffusedbrush/internal/queue"
	"diffusedbrush/internal/reconcile"
	"diffusedbrush/internal/runner"
	"diffusedbrush/internal/services"
	"diffusedbrush/internal/testsupport"
)

type env struct {
	cfg       *config.Config
	runner    *runner.Runner
	platform  *testsupport.FakePlatform
	generator *testsupport.FakeGenerator
	host      *testsupport.FakeHost
	queue     *queue.Queue
	ledger    *ledger.Ledger
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	e := &env{
		cfg:       cfg,
		platform:  testsupport.NewFakePlatform(cfg.Reddit.Username, cfg.Reddit.ThreadID),
		generator: &testsupport.FakeGenerator{},
		host:      &testsupport.FakeHost{},
	}
	e.queue, e.ledger = testsupport.MustOpenStores(t, cfg)
	logger := logging.NewNop()
	noSleep := publish.WithSleeper(func(context.Context, time.Duration) error { return nil })
	deps := runner.Dependencies{
		Ingester:   ingest.NewFromConfig(cfg, e.platform, logger),
		Queue:      e.queue,
		Ledger:     e.ledger,
		Reconciler: reconcile.New(e.platform, e.ledger, cfg.Markers, logger),
		Workflow: publish.New(publish.Dependencies{
			Platform:  e.platform,
			Generator: e.generator,
			Host:      e.host,
			Composer:  prompt.NewComposer(prompt.DefaultKeywords, 2, 4, cfg.Prompt.QualitySuffix),
			Queue:     e.queue,
			Ledger:    e.ledger,
		}, publish.SettingsFrom(cfg), logger, noSleep),
	}
	e.runner = runner.New(cfg.LockPath(), deps, logger)
	return e
}

func TestRunIngestsAndPublishesOldestCandidate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.platform.AddSubjectComment("alice", "SUBJECT: subject A", 100)
	b := e.platform.AddSubjectComment("bob", "SUBJECT: subject B", 50)
	require.NoError(t, e.platform.Reply(ctx, b, "IMAGE REMOVED: https://redd.it/old"))

	summary, err := e.runner.Run(ctx, runner.Options{Ingest: true})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added)
	assert.NotEmpty(t, summary.RunID)

	items, err := e.queue.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, a, items[0].OriginLink)
	head, ok, err := e.queue.PeekOldest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, a, head.OriginLink)

	summary, err = e.runner.Run(ctx, runner.Options{Publish: true})
	require.NoError(t, err)
	require.NotNil(t, summary.Published)
	assert.Zero(t, summary.QueueLen)

	entries, err := e.ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, a, entries[0].OriginLink)
	assert.Equal(t, []string{"SUBJECT ACCEPTED", "IMAGE POSTED: https://redd.it/" + entries[0].PostID}, e.platform.RepliesTo(a))
}

func TestRunReconcilesRemovedRecord(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	origin := e.platform.AddSubjectComment("alice", "SUBJECT: fox", 1)
	require.NoError(t, e.platform.PostTopLevel(ctx, "fox", "https://i.imgur.com/fox.png"))
	postID := e.platform.Records()[0].ID
	_, err := e.ledger.Append(ctx, ledger.NewEntry(queue.Submission{Author: "alice", Subject: "fox", OriginLink: origin, CreatedAt: 1},
		"https://i.imgur.com/fox.png", postID))
	require.NoError(t, err)
	e.platform.RemovePost(postID)

	summary, err := e.runner.Run(ctx, runner.Options{Reconcile: true})
	require.NoError(t, err)
	require.Len(t, summary.Removed, 1)

	entries, err := e.ledger.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, []string{"IMAGE REMOVED: https://redd.it/" + postID}, e.platform.RepliesTo(origin))
}

func TestRunIngestIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.platform.AddSubjectComment("alice", "SUBJECT: one", 10)
	e.platform.AddSubjectComment("bob", "SUBJECT: two", 5)
	// acknowledgments keep failing, so both runs see the same snapshot
	e.platform.Fail(testsupport.OpReply, 0, errors.New("rate limited"))

	_, err := e.runner.Run(ctx, runner.Options{Ingest: true})
	require.Error(t, err)
	first, err := e.queue.List(ctx)
	require.NoError(t, err)

	_, err = e.runner.Run(ctx, runner.Options{Ingest: true})
	require.Error(t, err)
	second, err := e.queue.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, second, 2)
	assert.Equal(t, "two", second[0].Subject, "queue head is the oldest submission")

	e.platform.Heal()
	summary, err := e.runner.Run(ctx, runner.Options{Ingest: true})
	require.NoError(t, err)
	assert.Zero(t, summary.Added)
	assert.Equal(t, 2, summary.Accepted)
	assert.Len(t, e.platform.Replies(), 2)
}

func TestRunTransientFailureContinuesWithOtherPasses(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	link := e.platform.AddSubjectComment("alice", "SUBJECT: queued earlier", 1)
	_, err := e.queue.Merge(ctx, []queue.Submission{{Author: "alice", Subject: "queued earlier", OriginLink: link, CreatedAt: 1}})
	require.NoError(t, err)
	e.platform.Fail(testsupport.OpReadThread, 0, errors.New("503"))

	summary, err := e.runner.Run(ctx, runner.AllPasses())
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrTransient)
	assert.False(t, services.IsFatal(err))
	require.NotNil(t, summary.Published, "publish pass still ran")
	assert.Equal(t, []string{runner.StageIngest}, summary.Failed)
	assert.True(t, summary.PassFailed(runner.StageIngest))
	assert.False(t, summary.PassFailed(runner.StagePublish))
}

func TestRunInvariantViolationHalts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.platform.AddSubjectComment("alice", "SUBJECT: one", 1)
	require.NoError(t, os.WriteFile(e.cfg.Store.QueueFile, []byte("{not json"), 0o644))

	_, err := e.runner.Run(ctx, runner.AllPasses())
	require.Error(t, err)
	assert.True(t, services.IsFatal(err))
	assert.Zero(t, e.platform.Calls(testsupport.OpGet), "reconcile pass never ran")
	assert.Zero(t, e.generator.Calls(), "publish pass never ran")

	data, err := os.ReadFile(e.cfg.Store.QueueFile)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data), "corrupt document is left for the operator")
}

func TestRunFailsFastWhenLocked(t *testing.T) {
	e := newEnv(t)
	lock := flock.New(e.cfg.LockPath())
	ok, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer lock.Unlock()

	_, err = e.runner.Run(context.Background(), runner.AllPasses())
	assert.ErrorIs(t, err, runner.ErrAlreadyRunning)
}

func TestLoopReturnsOnCancel(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, e.runner.Loop(ctx, runner.Options{Ingest: true}, time.Hour))
	assert.Equal(t, 1, e.platform.Calls(testsupport.OpReadThread))
}
