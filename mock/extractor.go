package mock

import (
	"time"

	"github.com/yzsnstotz/tlvc"
)

var _ tlvc.MessageExtractor = (*MessageExtractor)(nil)

// MessageExtractor is a mock implementation of tlvc.MessageExtractor.
type MessageExtractor struct {
	ExtractFn func(html string, profile *tlvc.Profile, loc *time.Location) (*tlvc.Extraction, error)
}

func (e *MessageExtractor) Extract(html string, profile *tlvc.Profile, loc *time.Location) (*tlvc.Extraction, error) {
	return e.ExtractFn(html, profile, loc)
}

var _ tlvc.FormatDetector = (*FormatDetector)(nil)

// FormatDetector is a mock implementation of tlvc.FormatDetector.
type FormatDetector struct {
	DetectFn func(html string) tlvc.ExportFormat
}

func (d *FormatDetector) Detect(html string) tlvc.ExportFormat {
	return d.DetectFn(html)
}
