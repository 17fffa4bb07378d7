package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"diffusedbrush/internal/ledger"
	"diffusedbrush/internal/publish"
	"diffusedbrush/internal/runner"
)

func TestPrintSummaryMarksFailedIngest(t *testing.T) {
	summary := runner.Summary{
		RunID:     "run-1",
		Published: &publish.Result{Entry: ledger.Entry{Subject: "a fox", PostID: "t3_abc"}},
		QueueLen:  2,
		Failed:    []string{runner.StageIngest},
	}
	runErr := fmt.Errorf("%s: %w", runner.StageIngest, errors.New("503"))

	var out bytes.Buffer
	printSummary(&out, runner.AllPasses(), summary, runErr)

	requireContains(t, out.String(), "Ingest: 0 candidate(s), 0 new, 0 acknowledged (failed)")
	requireContains(t, out.String(), "Reconcile: 0 removed\n")
	requireContains(t, out.String(), "Publish: a fox -> https://redd.it/abc\n")
	requireContains(t, out.String(), "Errors: ingest: 503")
}

func TestPrintSummaryWithoutFailures(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, runner.Options{Ingest: true}, runner.Summary{RunID: "run-2", Scanned: 3, Added: 1, Accepted: 1}, nil)

	requireContains(t, out.String(), "Ingest: 3 candidate(s), 1 new, 1 acknowledged\n")
	if strings.Contains(out.String(), "(failed)") || strings.Contains(out.String(), "Errors:") {
		t.Fatalf("unexpected failure in %q", out.String())
	}
}
