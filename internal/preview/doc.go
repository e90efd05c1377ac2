// Package preview helps a human review flagged pages. Opener hands files to
// the desktop's default viewer and Inspect reports what a page scan is:
// format, size and the EXIF orientation a rotated rescan may carry.
package preview
