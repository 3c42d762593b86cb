// Package database provides SQLite-based run history for pagegate.
//
// This package implements the RunDB, which stores:
//   - one row per filter run with its final statistics report
//   - every admission decision of the run, including the emitted links
//
// The database is an audit log. Nothing in it is ever loaded back into a
// running gate: visited URLs and fingerprints live only as long as the
// process, and a new run always starts from empty state.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
//  1. No external dependencies - the database is a single file
//  2. CGO-free implementation allows easy cross-compilation
//  3. WAL mode lets the history command read while a run is writing
package database
