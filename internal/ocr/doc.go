// Package ocr turns the downloaded page scans into the text corpus.
//
// An Engine recognizes one image. TesseractEngine shells out to the
// tesseract binary through a Runner, so tests can substitute canned output.
// Building with the gosseract tag adds GosseractEngine, which links
// libtesseract directly.
//
// A Converter walks an image directory and writes one <name>.txt per image,
// processing fixed-size batches through a bounded worker pool.
package ocr
