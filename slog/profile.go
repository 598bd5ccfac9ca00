package slog

import (
	"log/slog"
	"time"

	"github.com/yzsnstotz/tlvc"
)

// Ensure LoggingProfileLoader implements tlvc.ProfileLoader.
var _ tlvc.ProfileLoader = (*LoggingProfileLoader)(nil)

// LoggingProfileLoader wraps a ProfileLoader with logging.
type LoggingProfileLoader struct {
	next   tlvc.ProfileLoader
	logger *slog.Logger
}

// NewLoggingProfileLoader creates a new LoggingProfileLoader.
func NewLoggingProfileLoader(next tlvc.ProfileLoader, logger *slog.Logger) *LoggingProfileLoader {
	return &LoggingProfileLoader{next: next, logger: logger}
}

// LoadProfile delegates to the wrapped loader and logs the profile identity.
func (l *LoggingProfileLoader) LoadProfile(path string) (p *tlvc.Profile, err error) {
	defer func(begin time.Time) {
		attrs := []any{"path", path}
		if p != nil {
			attrs = append(attrs, "name", p.Name(path), "version", p.Version())
		}
		l.logger.Info("load profile", append(attrs, "duration", time.Since(begin), "err", err)...)
	}(time.Now())
	return l.next.LoadProfile(path)
}
