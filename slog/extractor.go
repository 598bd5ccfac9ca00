package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/yzsnstotz/tlvc"
)

// Ensure LoggingExtractor implements tlvc.MessageExtractor.
var _ tlvc.MessageExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a MessageExtractor with logging. Degraded
// extractions are logged as warnings.
type LoggingExtractor struct {
	next   tlvc.MessageExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next tlvc.MessageExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs match statistics.
func (e *LoggingExtractor) Extract(html string, profile *tlvc.Profile, loc *time.Location) (ext *tlvc.Extraction, err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		attrs := []any{"bytes", len(html)}
		if ext != nil {
			attrs = append(attrs,
				"containers", ext.Stats.ContainerMatches,
				"messages", len(ext.Messages),
				"dropped", ext.Stats.Dropped,
			)
			if ext.Stats.Degraded {
				level = slog.LevelWarn
				attrs = append(attrs, "degraded", true)
			}
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		e.logger.Log(context.Background(), level, "extract messages", attrs...)
	}(time.Now())
	return e.next.Extract(html, profile, loc)
}
