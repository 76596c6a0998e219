// Package logger provides a structured logging interface for the crawler.
//
// It wraps the zerolog library with:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output on stderr, so stdout stays free for crawl output
// - Optional JSON file output
// - A global logger instance for easy access
//
// Basic Usage:
//
//	err := logger.Initialize(&config.LoggingConfig{Level: "info"})
//
//	logger.Info("Crawl started")
//	logger.WithField("screen_name", "jack").Info("Fetching timeline")
//	logger.WithError(err).Error("Crawl failed")
//
// Tests can swap in NewTestLogger or NewNopLogger.
package logger
