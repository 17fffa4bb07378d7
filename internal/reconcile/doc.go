// Package reconcile purges ledger entries whose published record no longer
// exists and tells the submitter about the removal.
//
// A record is gone when its author reads as deleted or a by-id lookup finds
// nothing. Any other lookup failure aborts the pass before the ledger is
// touched.
package reconcile
