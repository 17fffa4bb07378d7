// Package ledger records every published image so removed posts can be
// detected later. Entries are unique by post_id and kept in append order.
package ledger
