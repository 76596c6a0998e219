package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs HTTP request information
func LogRequest(log Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	switch {
	case statusCode >= 500:
		log.ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		log.WarnWithFields("HTTP request client error", fields)
	default:
		log.DebugWithFields("HTTP request completed", fields)
	}
}

// LogRateLimit logs a cooldown caused by the quota guard or a rate-limit failure
func LogRateLimit(log Logger, endpoint, reason string, cooldown time.Duration) {
	log.WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"reason":   reason,
		"cooldown": cooldown,
		"action":   "rate_limited",
	}).Warn("Rate limit reached, cooling down")
}

// LogPage logs a fetched page
func LogPage(log Logger, mode, param string, page, items, total int) {
	log.DebugWithFields("Page fetched", map[string]interface{}{
		"mode":  mode,
		"param": param,
		"page":  page,
		"items": items,
		"total": total,
	})
}

// LogCollection logs the end of one collection target
func LogCollection(log Logger, mode, param string, pages, items int, elapsed time.Duration) {
	log.InfoWithFields("Collection finished", map[string]interface{}{
		"mode":     mode,
		"param":    param,
		"pages":    pages,
		"items":    items,
		"duration": elapsed,
	})
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
