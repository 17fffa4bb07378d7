// Package ingest turns subject comments on the intake thread into queue
// candidates and acknowledges them once queued.
//
// A comment is a candidate while no direct reply by the bot identity carries
// the accepted, posted, or removed marker. The markers are the only state
// shared between runs on the platform side, so Acknowledge must follow a
// successful queue merge.
package ingest
