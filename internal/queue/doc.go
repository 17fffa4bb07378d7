// Package queue holds the pending submissions ordered oldest first.
//
// The queue is a JSON array persisted through a docstore.Document. Every
// mutation loads the whole array, edits it in memory, and replaces it
// atomically, so the stored document is always sorted by created_at (ties
// broken by origin_link) and unique by origin_link. Hand-edited documents are
// re-sorted on load; a duplicate origin_link or unparsable content is
// reported as services.ErrInvariant rather than repaired.
package queue
