// Package logging assembles structured slog loggers and formatting helpers used
// across diffusedbrush.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pass code automatically tags
// log lines with the run id, the active pass, and the submission being
// processed. A no-op logger is provided for tests and wiring code that cannot
// fail.
package logging
