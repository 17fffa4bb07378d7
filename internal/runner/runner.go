package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"diffusedbrush/internal/ingest"
	"diffusedbrush/internal/ledger"
	"diffusedbrush/internal/logging"
	"diffusedbrush/internal/notifications"
	"diffusedbrush/internal/platform"
	"diffusedbrush/internal/publish"
	"diffusedbrush/internal/queue"
	"diffusedbrush/internal/reconcile"
	"diffusedbrush/internal/services"
)

// Pass names, also used as the log stage.
const (
	StageIngest    = "ingest"
	StageReconcile = "reconcile"
	StagePublish   = "publish"
)

// ErrAlreadyRunning is returned when another invocation holds the lock.
var ErrAlreadyRunning = errors.New("another diffusedbrush invocation is already running")

// Options select the passes of one invocation.
type Options struct {
	Ingest    bool
	Reconcile bool
	Publish   bool
}

// AllPasses runs every pass.
func AllPasses() Options {
	return Options{Ingest: true, Reconcile: true, Publish: true}
}

// Dependencies are the components a Runner drives.
type Dependencies struct {
	Ingester   *ingest.Ingester
	Queue      *queue.Queue
	Ledger     *ledger.Ledger
	Reconciler *reconcile.Reconciler
	Workflow   *publish.Workflow
	Notifier   notifications.Service
}

// Summary reports what one invocation did.
type Summary struct {
	RunID     string
	Scanned   int
	Added     int
	Accepted  int
	Removed   []ledger.Entry
	Published *publish.Result
	QueueLen  int
	// Failed lists the passes that returned an error, in run order.
	Failed []string
}

// PassFailed reports whether the named pass returned an error.
func (s Summary) PassFailed(stage string) bool {
	for _, failed := range s.Failed {
		if failed == stage {
			return true
		}
	}
	return false
}

// Runner executes invocations.
type Runner struct {
	deps     Dependencies
	lock     *flock.Flock
	logger   *slog.Logger
	newRunID func() string
}

// New constructs a Runner that serializes on lockPath.
func New(lockPath string, deps Dependencies, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewNoop()
	}
	return &Runner{
		deps:     deps,
		lock:     flock.New(lockPath),
		logger:   logging.NewComponentLogger(logger, "runner"),
		newRunID: uuid.NewString,
	}
}

// Run performs one invocation. The returned error joins every pass failure.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	ok, err := r.lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return Summary{}, ErrAlreadyRunning
	}
	defer func() {
		if err := r.lock.Unlock(); err != nil {
			logging.WarnWithContext(r.logger, "failed to release run lock", "lock_release_failed",
				logging.String("lock", r.lock.Path()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "the next invocation may report it is already running"),
			)
		}
	}()

	summary := Summary{RunID: r.newRunID()}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)
	started := time.Now()
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.Bool("ingest", opts.Ingest),
		logging.Bool("reconcile", opts.Reconcile),
		logging.Bool("publish", opts.Publish),
	)

	var errs []error
	passes := []struct {
		stage   string
		enabled bool
		run     func(context.Context, *Summary) error
	}{
		{StageIngest, opts.Ingest, r.ingestPass},
		{StageReconcile, opts.Reconcile, r.reconcilePass},
		{StagePublish, opts.Publish, r.publishPass},
	}
	for _, pass := range passes {
		if !pass.enabled {
			continue
		}
		passCtx := services.WithStage(ctx, pass.stage)
		if err := pass.run(passCtx, &summary); err != nil {
			summary.Failed = append(summary.Failed, pass.stage)
			r.reportFailure(passCtx, pass.stage, err)
			errs = append(errs, fmt.Errorf("%s: %w", pass.stage, err))
			if services.IsFatal(err) {
				return summary, errors.Join(errs...)
			}
		}
	}

	if n, err := r.deps.Queue.Len(ctx); err == nil {
		summary.QueueLen = n
	}
	logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_finished"),
		logging.Int("added", summary.Added),
		logging.Int("removed", len(summary.Removed)),
		logging.Bool("published", summary.Published != nil),
		logging.Int("queue_len", summary.QueueLen),
		logging.Int("failed_passes", len(errs)),
		logging.Duration("duration", time.Since(started).Round(time.Millisecond)),
	)
	return summary, errors.Join(errs...)
}

// Loop repeats Run every interval until ctx is cancelled. Transient
// failures are logged and the loop continues; invariant violations and lock
// contention end it.
func (r *Runner) Loop(ctx context.Context, opts Options, every time.Duration) error {
	if every <= 0 {
		_, err := r.Run(ctx, opts)
		return err
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		_, err := r.Run(ctx, opts)
		if err != nil && (services.IsFatal(err) || errors.Is(err, ErrAlreadyRunning)) {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Runner) ingestPass(ctx context.Context, summary *Summary) error {
	candidates, err := r.deps.Ingester.Scan(ctx)
	if err != nil {
		return err
	}
	summary.Scanned = len(candidates)
	if len(candidates) == 0 {
		return nil
	}
	result, err := r.deps.Queue.Merge(ctx, candidates)
	if err != nil {
		return err
	}
	summary.Added = len(result.Added)
	summary.Accepted = len(result.Accepted)
	if err := r.deps.Ingester.Acknowledge(ctx, result.Accepted); err != nil {
		return err
	}
	if len(result.Added) > 0 {
		subjects := make([]string, 0, len(result.Added))
		for _, sub := range result.Added {
			subjects = append(subjects, sub.Subject)
		}
		r.notify(ctx, "accepted", r.deps.Notifier.NotifyAccepted(ctx, subjects))
	}
	return nil
}

func (r *Runner) reconcilePass(ctx context.Context, summary *Summary) error {
	removed, err := r.deps.Reconciler.Reconcile(ctx)
	if err != nil {
		return err
	}
	summary.Removed = removed
	if len(removed) > 0 {
		subjects := make([]string, 0, len(removed))
		for _, entry := range removed {
			subjects = append(subjects, entry.Subject)
		}
		r.notify(ctx, "removed", r.deps.Notifier.NotifyRemoved(ctx, subjects))
	}
	return nil
}

func (r *Runner) publishPass(ctx context.Context, summary *Summary) error {
	head, ok, err := r.deps.Queue.PeekOldest(ctx)
	if err != nil {
		return err
	}
	if !ok {
		logging.WithContext(ctx, r.logger).Info("queue empty; nothing to publish",
			logging.String(logging.FieldEventType, "publish_idle"))
		return nil
	}
	result, err := r.deps.Workflow.Publish(ctx, head)
	if err != nil {
		return err
	}
	summary.Published = &result
	r.notify(ctx, "published", r.deps.Notifier.NotifyPublished(ctx, head.Subject, platform.PostLink(result.Entry.PostID)))
	return nil
}

func (r *Runner) reportFailure(ctx context.Context, stage string, err error) {
	logger := logging.WithContext(ctx, r.logger)
	if services.IsFatal(err) {
		logging.ErrorWithContext(logger, "pass hit an invariant violation; halting", "run_halted",
			logging.Error(err),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String(logging.FieldErrorHint, "inspect the queue and ledger documents before the next run"),
		)
	} else {
		logging.WarnWithContext(logger, "pass aborted", "pass_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String(logging.FieldErrorHint, "transient failures are retried on the next invocation"),
			logging.String(logging.FieldImpact, "no state was changed by the failed step"),
		)
	}
	r.notify(ctx, "error", r.deps.Notifier.NotifyError(ctx, err, stage))
}

func (r *Runner) notify(ctx context.Context, kind string, err error) {
	if err == nil {
		return
	}
	logging.WarnWithContext(logging.WithContext(ctx, r.logger), "notification failed", "notification_failed",
		logging.String("notification", kind),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		logging.String(logging.FieldImpact, "operator was not notified"),
	)
}
