// Package config holds skewscan's runtime configuration: heuristic
// thresholds, report options, crawl and OCR settings, and where run history
// is stored. Values start from NewConfig, are overlaid by the optional
// ".skewscan" YAML file and finally by command-line flags.
package config
