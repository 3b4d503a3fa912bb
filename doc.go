// Package sqlbridge executes a single SQL statement against a
// relational database identified by a jdbc-style connection URL and
// returns every produced result set, flattened, plus any
// server-emitted warnings.
//
// The matching driver family is resolved from the URL prefix and
// activated at most once per process through a drivers.Registry.
// Statements that return several result sets and update counts
// (stored procedures, batches) are drained to completion; rows from
// all result sets land in one ordered slice.
package sqlbridge
