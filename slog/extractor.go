// Package slog provides logging decorators for scholarmail services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/scholarmail"
)

var _ scholarmail.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging.
type LoggingExtractor struct {
	next   scholarmail.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next scholarmail.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the call.
func (e *LoggingExtractor) Extract(ctx context.Context, req scholarmail.ExtractRequest) (candidates []scholarmail.Candidate, err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelError
		}
		e.logger.Log(ctx, level, "extract",
			"model", req.Config.Model,
			"bytes", len(req.HTML),
			"count", len(candidates),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(ctx, req)
}
