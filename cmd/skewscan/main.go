// Package main provides the entry point for the skewscan CLI.
//
// skewscan finds skewed page scans in the OCR output of the Kalkar Old
// Danish dictionary. It can also download the page scans and run OCR over
// them, so a whole corpus can be rebuilt and checked with one command.
//
// Usage:
//
//	skewscan classify txt
//	skewscan run
//
// See --help for all available options.
package main

// main is the entry point for skewscan.
func main() {
	Execute()
}
