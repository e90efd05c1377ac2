// Package parser turns an OCR text corpus into dictionary entries.
//
// Each page is a header line followed by two columns of text separated by
// "|". The parser folds the columns into a single column, works out which
// letters headwords on the page may start with, and cuts the text into
// entries at every dash that is followed by such a letter.
//
// Entries whose first word does not look like a headword are continuations
// of the entry before them, usually from the previous page, and are merged
// into it. Page-specific fixes for the scans live in meta.go.
package parser
