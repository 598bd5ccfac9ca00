package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/yzsnstotz/tlvc"
)

// Ensure LoggingArtifactStore implements tlvc.ArtifactStore.
var _ tlvc.ArtifactStore = (*LoggingArtifactStore)(nil)

// LoggingArtifactStore wraps an ArtifactStore with logging.
type LoggingArtifactStore struct {
	next   tlvc.ArtifactStore
	logger *slog.Logger
}

// NewLoggingArtifactStore creates a new LoggingArtifactStore.
func NewLoggingArtifactStore(next tlvc.ArtifactStore, logger *slog.Logger) *LoggingArtifactStore {
	return &LoggingArtifactStore{next: next, logger: logger}
}

// Save delegates to the wrapped store.
func (s *LoggingArtifactStore) Save(ctx context.Context, artifact *tlvc.Artifact) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("save artifact",
			"name", artifact.Name,
			"bytes", len(artifact.Data),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Save(ctx, artifact)
}

// Commit delegates to the wrapped store.
func (s *LoggingArtifactStore) Commit() (err error) {
	defer func(begin time.Time) {
		s.logger.Info("commit artifacts", "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.Commit()
}

// Abort delegates to the wrapped store.
func (s *LoggingArtifactStore) Abort() (err error) {
	defer func() {
		s.logger.Warn("abort artifacts", "err", err)
	}()
	return s.next.Abort()
}
