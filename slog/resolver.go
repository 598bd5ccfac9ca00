// Package slog provides logging decorators for the pipeline's I/O
// dependencies.
package slog

import (
	"log/slog"
	"time"

	"github.com/yzsnstotz/tlvc"
)

// Ensure LoggingResolver implements tlvc.InputResolver.
var _ tlvc.InputResolver = (*LoggingResolver)(nil)

// LoggingResolver wraps an InputResolver with logging.
type LoggingResolver struct {
	next   tlvc.InputResolver
	logger *slog.Logger
}

// NewLoggingResolver creates a new LoggingResolver.
func NewLoggingResolver(next tlvc.InputResolver, logger *slog.Logger) *LoggingResolver {
	return &LoggingResolver{next: next, logger: logger}
}

// Resolve delegates to the wrapped resolver and logs the chosen document.
func (r *LoggingResolver) Resolve(path string) (in *tlvc.ResolvedInput, err error) {
	defer func(begin time.Time) {
		attrs := []any{"input", path}
		if in != nil {
			attrs = append(attrs, "kind", in.Kind, "html", in.HTMLPath)
		}
		r.logger.Info("resolve input", append(attrs, "duration", time.Since(begin), "err", err)...)
	}(time.Now())
	return r.next.Resolve(path)
}
