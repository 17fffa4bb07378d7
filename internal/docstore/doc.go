// Package docstore persists the bot's two durable documents, the submission
// queue and the post ledger.
//
// Each document is an opaque JSON array that callers load whole and replace
// whole. Replace is atomic: a concurrent or later reader observes either the
// previous or the new content, never a mix. Two backends exist: plain JSON
// files replaced via rename, and a single SQLite database.
package docstore
