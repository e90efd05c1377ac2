// Package corpus reads a directory of OCR text files into a model.Corpus.
//
// Each regular "*.txt" file directly under the directory becomes one page.
// The file name is the page id and the file content, split into lines, is
// the page body. Sub-directories are not descended into.
//
// Loading never fails because of the corpus itself: a missing directory
// yields an empty corpus and a warning, and unreadable files are skipped.
// Only context cancellation is reported as an error.
package corpus
