// Package preflight provides readiness checks for the filesystem paths and
// external services that diffusedbrush depends on.
//
// The CLI "diffusedbrush status" command runs RunAll and renders the results.
// Service checks are skipped when their credentials are not configured.
package preflight
