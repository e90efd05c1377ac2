// Package database keeps the history of classification runs in SQLite.
//
// Each run stores the thresholds it used, a digest of the corpus it read and
// every (page, reason) pair it flagged. Two runs can then be compared to see
// which pages a threshold change or a rescan added or cleared.
//
// The driver is modernc.org/sqlite, so the binary stays cgo-free.
package database
