// Package publish turns the queue head into a published, annotated record.
//
// The workflow orders its side effects so that any failure before the queue
// pop leaves the queue and ledger untouched. A record that was published but
// never committed locally is found again through its annotation, which
// always carries the submission's origin link.
package publish
