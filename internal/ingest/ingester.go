package ingest

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"diffusedbrush/internal/config"
	"diffusedbrush/internal/logging"
	"diffusedbrush/internal/platform"
	"diffusedbrush/internal/queue"
	"diffusedbrush/internal/services"
)

const component = "ingest"

// Ingester reads the intake thread.
type Ingester struct {
	platform platform.Platform
	threadID string
	markers  config.Markers
	logger   *slog.Logger
}

// New constructs an Ingester for threadID.
func New(p platform.Platform, threadID string, markers config.Markers, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Ingester{
		platform: p,
		threadID: strings.TrimSpace(threadID),
		markers:  markers,
		logger:   logging.NewComponentLogger(logger, component),
	}
}

// NewFromConfig constructs an Ingester for the configured intake thread.
func NewFromConfig(cfg *config.Config, p platform.Platform, logger *slog.Logger) *Ingester {
	return New(p, cfg.Reddit.ThreadID, cfg.Markers, logger)
}

// Scan returns the unacknowledged subject comments in thread order. Nothing
// is mutated.
func (i *Ingester) Scan(ctx context.Context) ([]queue.Submission, error) {
	thread, err := i.platform.ReadThread(ctx, i.threadID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "scan", "Failed to read intake thread "+i.threadID, err)
	}
	identity := i.platform.Identity()

	if thread.Incomplete {
		logging.WarnWithContext(i.logger, "intake thread only partly loaded", "ingest_thread_incomplete",
			logging.String("thread_id", i.threadID),
			logging.Int("comments", len(thread.Comments)),
			logging.String(logging.FieldErrorHint, "the thread has more comments than one read expands"),
			logging.String(logging.FieldImpact, "unloaded subjects are picked up on a later run"),
		)
	}

	var (
		candidates []queue.Submission
		handled    int
		skipped    int
		incomplete int
	)
	for _, comment := range thread.Comments {
		body, ok := i.stripPrefix(comment.Body)
		if !ok {
			continue
		}
		if i.acknowledged(comment, identity) {
			handled++
			continue
		}
		// A marker may sit among the replies that were not loaded.
		if comment.Incomplete {
			incomplete++
			continue
		}
		if platform.IsGone(comment.Author) {
			skipped++
			continue
		}
		subject := strings.TrimSpace(norm.NFC.String(body))
		if subject == "" || strings.TrimSpace(comment.Permalink) == "" {
			skipped++
			continue
		}
		candidates = append(candidates, queue.Submission{
			Author:     comment.Author,
			Subject:    subject,
			OriginLink: comment.Permalink,
			CreatedAt:  comment.CreatedAt,
		})
	}

	i.logger.Info("intake thread scanned",
		logging.String(logging.FieldEventType, "ingest_scanned"),
		logging.String("thread_id", i.threadID),
		logging.Int("comments", len(thread.Comments)),
		logging.Int("candidates", len(candidates)),
		logging.Int("already_handled", handled),
		logging.Int("skipped", skipped),
		logging.Int("incomplete", incomplete),
	)
	return candidates, nil
}

// Acknowledge replies with the accepted marker under each submission's origin
// comment. It stops at the first failure; the remaining submissions are still
// unacknowledged on the platform and get another reply next run.
func (i *Ingester) Acknowledge(ctx context.Context, subs []queue.Submission) error {
	for idx, sub := range subs {
		if err := i.platform.Reply(ctx, sub.OriginLink, i.markers.Accepted); err != nil {
			logging.WarnWithContext(i.logger, "acknowledgment reply failed", "ingest_ack_failed",
				logging.String("origin_link", sub.OriginLink),
				logging.Int("acknowledged", idx),
				logging.Int("remaining", len(subs)-idx),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "the platform rejected or timed out the reply"),
				logging.String(logging.FieldImpact, "remaining submissions are acknowledged next run"),
			)
			return services.Wrap(services.ErrTransient, component, "acknowledge", "Failed to acknowledge "+sub.OriginLink, err)
		}
		i.logger.Info("submission acknowledged",
			logging.String(logging.FieldEventType, "ingest_acknowledged"),
			logging.String("origin_link", sub.OriginLink),
			logging.String("author", sub.Author),
		)
	}
	return nil
}

func (i *Ingester) stripPrefix(body string) (string, bool) {
	trimmed := strings.TrimLeft(body, " \t\r\n")
	if !strings.HasPrefix(trimmed, i.markers.SubjectPrefix) {
		return "", false
	}
	return strings.TrimPrefix(trimmed, i.markers.SubjectPrefix), true
}

// acknowledged reports whether the bot already replied to comment with any
// of the lifecycle markers.
func (i *Ingester) acknowledged(comment platform.Comment, identity string) bool {
	for _, reply := range comment.Replies {
		if !platform.SameIdentity(reply.Author, identity) {
			continue
		}
		for _, marker := range []string{i.markers.Accepted, i.markers.Posted, i.markers.Removed} {
			if m := strings.TrimSpace(marker); m != "" && strings.Contains(reply.Body, m) {
				return true
			}
		}
	}
	return false
}
