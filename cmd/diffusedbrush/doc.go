// Package main hosts the diffusedbrush CLI entrypoint and command graph.
//
// The Cobra-based command tree runs bot invocations (ingest, reconcile,
// publish), inspects and edits the durable queue and ledger, and scaffolds
// configuration. It centralizes configuration resolution, logger and Sentry
// setup so subcommands can focus on output instead of wiring.
package main
