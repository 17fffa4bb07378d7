package services

import "context"

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	stageKey      contextKey = "stage"
	submissionKey contextKey = "submission"
)

// WithRunID annotates context with the invocation correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the invocation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pass name (ingest, reconcile, publish).
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithSubmission annotates context with the origin link of the submission
// currently being processed.
func WithSubmission(ctx context.Context, originLink string) context.Context {
	if originLink == "" {
		return ctx
	}
	return context.WithValue(ctx, submissionKey, originLink)
}

// SubmissionFromContext returns the submission origin link if present.
func SubmissionFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(submissionKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
