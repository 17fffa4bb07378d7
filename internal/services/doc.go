// Package services defines shared utilities consumed by the pipeline passes
// and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, pass names, and submission links for
//     logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     transient (abort the pass), content rejections (bounded in-run retry),
//     not-found (a normal branch), or invariant violations (halt the process).
//
// Use these helpers when wiring new pass logic so error handling and
// observability stay uniform across the pipeline.
package services
