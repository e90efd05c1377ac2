// Package model defines the core data structures used throughout skewscan.
//
// This package contains the following main types:
//   - Page and Corpus: the OCR text of scanned dictionary pages
//   - SkewReason: the closed set of reasons a page can be flagged for
//   - Thresholds: the tunable limits and allowlist used by the heuristics
//   - ClassificationResult: the per-reason partition of flagged page ids
//   - Run and Report: one classification run, as persisted and as rendered
//
// Models are kept free of I/O so that the analyzer, reporters and storage
// layers can share them without import cycles.
package model
