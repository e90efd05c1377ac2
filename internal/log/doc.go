// Package log builds the slog loggers used by skewscan.
//
// Loggers write text or JSON to a terminal stream and, optionally, to a
// rotating log file as well. Long string attributes are trimmed before they
// reach any sink: OCR output and HTML bodies can be many kilobytes and are
// only ever useful in logs as a prefix.
//
// # Usage
//
//	logger, closer, err := log.NewLogger(os.Stderr, log.Options{
//	    Verbose: true,
//	    File:    "/var/log/skewscan/skewscan.log",
//	})
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//	slog.SetDefault(logger)
package log
