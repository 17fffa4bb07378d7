package reconcile

import (
	"context"
	"log/slog"

	"diffusedbrush/internal/config"
	"diffusedbrush/internal/ledger"
	"diffusedbrush/internal/logging"
	"diffusedbrush/internal/platform"
	"diffusedbrush/internal/services"
)

const component = "reconcile"

// Reconciler compares the ledger against the platform.
type Reconciler struct {
	platform platform.Platform
	ledger   *ledger.Ledger
	markers  config.Markers
	logger   *slog.Logger
}

// New constructs a Reconciler.
func New(p platform.Platform, l *ledger.Ledger, markers config.Markers, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reconciler{
		platform: p,
		ledger:   l,
		markers:  markers,
		logger:   logging.NewComponentLogger(logger, component),
	}
}

// Reconcile removes every entry whose record is gone and returns them. Any
// lookup failure other than not-found aborts before the ledger is touched.
func (r *Reconciler) Reconcile(ctx context.Context) ([]ledger.Entry, error) {
	entries, err := r.ledger.List(ctx)
	if err != nil {
		return nil, err
	}

	var gone []string
	for _, entry := range entries {
		alive, err := r.exists(ctx, entry.PostID)
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, component, "check",
				"Failed to look up record "+entry.PostID, err)
		}
		if !alive {
			gone = append(gone, entry.PostID)
		}
	}

	removed, err := r.ledger.RemovePostIDs(ctx, gone)
	if err != nil {
		return nil, err
	}
	r.logger.Info("ledger reconciled",
		logging.String(logging.FieldEventType, "reconcile_completed"),
		logging.Int("checked", len(entries)),
		logging.Int("removed", len(removed)),
	)

	for _, entry := range removed {
		r.notifySubmitter(ctx, entry)
	}
	return removed, nil
}

// exists reports whether the record still has an author. Not-found means
// gone, not failure.
func (r *Reconciler) exists(ctx context.Context, target string) (bool, error) {
	item, err := r.platform.GetByID(ctx, target)
	if err != nil {
		if services.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return !platform.IsGone(item.Author), nil
}

func (r *Reconciler) notifySubmitter(ctx context.Context, entry ledger.Entry) {
	logger := logging.WithContext(services.WithSubmission(ctx, entry.OriginLink), r.logger)
	postLink := platform.PostLink(entry.PostID)

	alive, err := r.exists(ctx, entry.OriginLink)
	if err != nil {
		logging.WarnWithContext(logger, "submitter lookup failed", "reconcile_notify_failed",
			logging.String("post_id", entry.PostID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "platform lookup of the origin comment failed"),
			logging.String(logging.FieldImpact, "submitter is not told about the removal"),
		)
		return
	}
	if !alive {
		logger.Info("submitter gone; removal not announced",
			logging.String(logging.FieldEventType, "reconcile_submitter_gone"),
			logging.String("post_id", entry.PostID),
		)
		return
	}
	if err := r.platform.Reply(ctx, entry.OriginLink, r.markers.Removed+postLink); err != nil {
		logging.WarnWithContext(logger, "removal reply failed", "reconcile_notify_failed",
			logging.String("post_id", entry.PostID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the origin comment may be locked"),
			logging.String(logging.FieldImpact, "submitter is not told about the removal"),
		)
		return
	}
	logger.Info("removal announced",
		logging.String(logging.FieldEventType, "reconcile_notified"),
		logging.String("post_id", entry.PostID),
		logging.String("post_link", postLink),
	)
}
