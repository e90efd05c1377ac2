// Package crawler acquires the scanned Kalkar dictionary pages.
//
// The dictionary site lists every headword on one HTML page per letter, each
// headword linking to a GIF scan of its page. A Scraper visits the letter
// pages in a fixed order, collects the (headword, image URL) pairs with a
// Parser and downloads the scans into a flat directory named
// <index>-<headword>.gif, which is the layout the OCR stage expects.
//
// # Politeness
//
// Letter pages are fetched one at a time with a delay in between. Downloads
// run concurrently with a bounded limit.
//
// # Usage
//
//	s, err := crawler.NewScraper(http.DefaultClient, crawler.WithDelay(time.Second))
//	links, err := s.Collect(ctx)
//	res, err := s.Download(ctx, links, "images")
package crawler
