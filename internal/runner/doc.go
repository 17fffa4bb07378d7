// Package runner drives one invocation of the bot: ingest, optional
// reconciliation, and publication of the queue head.
//
// Invocations are serialized with an advisory file lock so two overlapping
// runs cannot both read and rewrite the queue. Each pass aborts on its first
// error. Transient errors let the remaining passes run; an invariant
// violation halts the invocation immediately.
package runner
