package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"diffusedbrush/internal/config"
	"diffusedbrush/internal/generation"
	"diffusedbrush/internal/hosting"
	"diffusedbrush/internal/ledger"
	"diffusedbrush/internal/logging"
	"diffusedbrush/internal/platform"
	"diffusedbrush/internal/prompt"
	"diffusedbrush/internal/queue"
	"diffusedbrush/internal/services"
)

const (
	component = "publish"

	// resolveWindow is how many of the newest records are searched for the
	// post that was just submitted.
	resolveWindow = 5
)

// Settings tune one publication.
type Settings struct {
	Params           generation.Params
	Markers          config.Markers
	MaxAttempts      int
	ResolveAttempts  int
	ResolveDelay     time.Duration
	Approve          bool
	ApproveDelay     time.Duration
	RecoveryLookback int
}

// SettingsFrom extracts workflow settings from the application config.
func SettingsFrom(cfg *config.Config) Settings {
	return Settings{
		Params:           generation.ParamsFrom(cfg),
		Markers:          cfg.Markers,
		MaxAttempts:      cfg.Stability.MaxAttempts,
		ResolveAttempts:  cfg.Publish.ResolveAttempts,
		ResolveDelay:     cfg.ResolveDelay(),
		Approve:          cfg.Publish.Approve,
		ApproveDelay:     cfg.ApproveDelay(),
		RecoveryLookback: cfg.Publish.RecoveryLookback,
	}
}

// Dependencies are the collaborators of a Workflow.
type Dependencies struct {
	Platform  platform.Platform
	Generator generation.Generator
	Host      hosting.Host
	Composer  *prompt.Composer
	Queue     *queue.Queue
	Ledger    *ledger.Ledger
}

// Result describes a completed publication.
type Result struct {
	Entry     ledger.Entry
	Prompt    string
	Recovered bool
}

// Workflow publishes queue heads.
type Workflow struct {
	deps     Dependencies
	settings Settings
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *slog.Logger
}

// Option customizes a Workflow.
type Option func(*Workflow)

// WithSleeper replaces the wait used between resolve attempts and before approval.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(w *Workflow) {
		if sleep != nil {
			w.sleep = sleep
		}
	}
}

// New constructs a Workflow.
func New(deps Dependencies, settings Settings, logger *slog.Logger, opts ...Option) *Workflow {
	if logger == nil {
		logger = logging.NewNop()
	}
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = 1
	}
	if settings.ResolveAttempts <= 0 {
		settings.ResolveAttempts = 1
	}
	w := &Workflow{
		deps:     deps,
		settings: settings,
		sleep:    sleepContext,
		logger:   logging.NewComponentLogger(logger, component),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type published struct {
	postID string
	link   string
}

// Publish runs the full publication of sub, which must be the queue head.
func (w *Workflow) Publish(ctx context.Context, sub queue.Submission) (Result, error) {
	ctx = services.WithSubmission(ctx, sub.OriginLink)
	logger := logging.WithContext(ctx, w.logger)

	if err := w.checkHead(ctx, sub); err != nil {
		return Result{}, err
	}

	rec, found, err := w.recover(ctx, sub)
	if err != nil {
		return Result{}, err
	}
	if found {
		logger.Info("resuming previously published record",
			logging.String(logging.FieldEventType, "publish_recovered"),
			logging.String("post_id", rec.postID),
			logging.String("artifact_link", rec.link),
		)
		entry, err := w.commit(ctx, logger, sub, rec)
		if err != nil {
			return Result{}, err
		}
		return Result{Entry: entry, Recovered: true}, nil
	}

	composed := w.deps.Composer.Compose(sub.Subject)
	logger.Info("prompt composed",
		logging.String(logging.FieldEventType, "publish_prompt"),
		logging.String("prompt", composed.Text),
		logging.Int("keywords", len(composed.Keywords)),
	)

	image, err := generation.GenerateWithRetry(ctx, w.deps.Generator, composed.Text, w.settings.Params, w.settings.MaxAttempts, logger)
	if err != nil {
		return Result{}, err
	}

	link, err := w.deps.Host.Upload(ctx, image.Data, composed.Text)
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, component, "host", "Image upload failed", err)
	}
	logger.Info("image hosted",
		logging.String(logging.FieldEventType, "publish_hosted"),
		logging.String("artifact_link", link),
	)

	if err := w.deps.Platform.PostTopLevel(ctx, sub.Subject, link); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, component, "post", "Failed to submit record", err)
	}

	postID, err := w.resolvePostID(ctx, link)
	if err != nil {
		return Result{}, err
	}
	rec = published{postID: postID, link: link}

	annotation := Annotation(sub, composed.Keywords, w.settings.Params)
	if err := w.deps.Platform.Reply(ctx, postID, annotation); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, component, "annotate",
			"Failed to annotate record "+postID, err)
	}
	w.approve(ctx, logger, postID)

	entry, err := w.commit(ctx, logger, sub, rec)
	if err != nil {
		return Result{}, err
	}
	return Result{Entry: entry, Prompt: composed.Text}, nil
}

func (w *Workflow) checkHead(ctx context.Context, sub queue.Submission) error {
	head, ok, err := w.deps.Queue.PeekOldest(ctx)
	if err != nil {
		return err
	}
	if !ok || head.OriginLink != sub.OriginLink {
		return services.Wrap(services.ErrInvariant, component, "publish",
			fmt.Sprintf("Submission %s is not the queue head", sub.OriginLink), nil)
	}
	return nil
}

// recover looks for a record published for sub by an earlier run that
// stopped before committing it.
func (w *Workflow) recover(ctx context.Context, sub queue.Submission) (published, bool, error) {
	if w.settings.RecoveryLookback <= 0 {
		return published{}, false, nil
	}
	records, err := w.deps.Platform.MostRecentByIdentity(ctx, w.settings.RecoveryLookback)
	if err != nil {
		return published{}, false, services.Wrap(services.ErrTransient, component, "recover", "Failed to list recent records", err)
	}
	identity := w.deps.Platform.Identity()
	for _, record := range records {
		if strings.TrimSpace(record.Title) != sub.Subject {
			continue
		}
		thread, err := w.deps.Platform.ReadThread(ctx, record.ID)
		if err != nil {
			if services.IsNotFound(err) {
				continue
			}
			return published{}, false, services.Wrap(services.ErrTransient, component, "recover",
				"Failed to read record "+record.ID, err)
		}
		for _, comment := range thread.Comments {
			if platform.SameIdentity(comment.Author, identity) && strings.Contains(comment.Body, sub.OriginLink) {
				return published{postID: record.ID, link: record.URL}, true, nil
			}
		}
	}
	return published{}, false, nil
}

func (w *Workflow) resolvePostID(ctx context.Context, link string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= w.settings.ResolveAttempts; attempt++ {
		if attempt > 1 {
			if err := w.sleep(ctx, w.settings.ResolveDelay); err != nil {
				return "", err
			}
		}
		records, err := w.deps.Platform.MostRecentByIdentity(ctx, resolveWindow)
		if err != nil {
			lastErr = err
			continue
		}
		for _, record := range records {
			if strings.TrimSpace(record.URL) == link {
				return record.ID, nil
			}
		}
		lastErr = fmt.Errorf("no recent record links %s", link)
	}
	return "", services.Wrap(services.ErrTransient, component, "resolve",
		fmt.Sprintf("Could not resolve the new record after %d attempts", w.settings.ResolveAttempts), lastErr)
}

func (w *Workflow) approve(ctx context.Context, logger *slog.Logger, postID string) {
	if !w.settings.Approve {
		return
	}
	if err := w.sleep(ctx, w.settings.ApproveDelay); err != nil {
		logging.WarnWithContext(logger, "approval skipped", "publish_approve_skipped",
			logging.String("post_id", postID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the run was cancelled while waiting to approve"),
			logging.String(logging.FieldImpact, "record stays unapproved until a moderator approves it"),
		)
		return
	}
	if err := w.deps.Platform.Approve(ctx, postID); err != nil {
		logging.WarnWithContext(logger, "approval failed", "publish_approve_failed",
			logging.String("post_id", postID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the bot account moderates the subreddit"),
			logging.String(logging.FieldImpact, "record stays unapproved until a moderator approves it"),
		)
	}
}

// commit records the publication locally and tells the submitter. The ledger
// append precedes the pop so an interrupted commit is finished by recovery
// on the next run.
func (w *Workflow) commit(ctx context.Context, logger *slog.Logger, sub queue.Submission, rec published) (ledger.Entry, error) {
	entry := ledger.NewEntry(sub, rec.link, rec.postID)
	if _, err := w.deps.Ledger.Append(ctx, entry); err != nil {
		return ledger.Entry{}, err
	}
	if _, err := w.deps.Queue.PopHead(ctx, sub.OriginLink); err != nil {
		return ledger.Entry{}, err
	}
	logger.Info("publication committed",
		logging.String(logging.FieldEventType, "publish_committed"),
		logging.String("post_id", entry.PostID),
		logging.String("artifact_link", entry.ArtifactLink),
	)

	postLink := platform.PostLink(rec.postID)
	if err := w.deps.Platform.Reply(ctx, sub.OriginLink, completionReply(w.settings.Markers.Posted, postLink)); err != nil {
		logging.WarnWithContext(logger, "completion reply failed", "publish_notify_failed",
			logging.String("post_link", postLink),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the submitter comment may be locked or deleted"),
			logging.String(logging.FieldImpact, "submitter is not told about the post; the accepted marker still prevents re-ingestion"),
		)
	}
	return entry, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
