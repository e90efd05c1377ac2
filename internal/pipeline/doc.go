// Package pipeline runs skewscan's stages in sequence and fans work out in
// batches.
//
// A Pipeline executes Steps (crawl, OCR, load, classify, persist) against a
// single *model.Run. A BatchProcessor splits a slice of work items into
// fixed-size batches and processes each batch with bounded concurrency; the
// OCR converter and the image downloader are built on it.
package pipeline
