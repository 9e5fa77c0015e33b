// Package logging provides structured logging configuration for fieldmap.
//
// This package wraps log/slog so that the CLI, the mapping API and the mock
// service log the same way. Levels and formats come from the logLevel and
// logFormat config keys.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.ParseLevel("debug"),
//	    Format: logging.FormatJSON,
//	})
//	logger.Info("mapping saved", "entity", "contact", "rules", 5)
//
// A second destination, such as a log file, is added with Tee:
//
//	logger = logging.Tee(logger, slog.NewJSONHandler(f, nil))
//
// # Integration
//
// Components accept a *slog.Logger through an option or setter. If no logger
// is provided they use logging.Nop().
package logging
