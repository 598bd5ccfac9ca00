// Package preprocess wires the transcript pipeline:
// resolve, extract, redact, segment, score, lint.
package preprocess

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/yzsnstotz/tlvc"
)

// Preprocessor runs the pipeline over one exported transcript. It holds no
// state between calls and is safe for concurrent use when its dependencies
// are.
type Preprocessor struct {
	Resolver  tlvc.InputResolver
	Profiles  tlvc.ProfileLoader
	Extractor tlvc.MessageExtractor
	Detector  tlvc.FormatDetector
}

// Options configures one run.
type Options struct {
	Input       string
	EpisodeID   string
	K           int
	Timezone    string
	ProfilePath string

	// RecordSource adds meta.source to the transcript.
	RecordSource bool
}

func (o Options) location() (*time.Location, error) {
	if strings.TrimSpace(o.Timezone) == "" {
		return nil, tlvc.Errorf(tlvc.EINVALID, "timezone required")
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return nil, tlvc.Errorf(tlvc.EINVALID, "unknown timezone %q", o.Timezone)
	}
	return loc, nil
}

func (o Options) validate() (*time.Location, error) {
	if o.K < 1 {
		return nil, tlvc.Errorf(tlvc.EINVALID, "k must be >= 1, got %d", o.K)
	}
	if strings.TrimSpace(o.EpisodeID) == "" {
		return nil, tlvc.Errorf(tlvc.EINVALID, "episode id required")
	}
	return o.location()
}

// Run executes the full pipeline. Fatal problems (missing input, no HTML
// document, invalid profile or options) return an error and no result; data
// quality problems are reported in the lint report.
func (p *Preprocessor) Run(opts Options) (*tlvc.Result, error) {
	loc, err := opts.validate()
	if err != nil {
		return nil, err
	}

	in, profile, doc, err := p.load(opts)
	if err != nil {
		return nil, err
	}

	ext, err := p.Extractor.Extract(doc, profile, loc)
	if err != nil {
		return nil, fmt.Errorf("extract messages: %w", err)
	}

	messages, redaction, residuals := tlvc.RedactMessages(tlvc.BuildMessages(ext.Messages))
	seg := tlvc.SegmentMessages(messages)
	top, err := tlvc.ScoreSegments(seg.Segments, messages, opts.K)
	if err != nil {
		return nil, err
	}

	report := tlvc.Lint(tlvc.LintInput{
		Messages:  messages,
		TopK:      top,
		Residuals: residuals,
		Fallback:  seg.Fallback,
		Degraded:  ext.Stats.Degraded,
	})

	meta := tlvc.TranscriptMeta{
		EpisodeID:     opts.EpisodeID,
		Timezone:      opts.Timezone,
		SchemaVersion: tlvc.SchemaVersion,
		InputKind:     in.Kind,
		ExportRoot:    in.ExportRoot,
		HTMLPath:      in.HTMLPath,
	}
	if opts.RecordSource {
		meta.Source = &tlvc.Source{
			InputPath: in.InputPath,
			HTMLFile:  in.HTMLPath,
			AssetsDir: in.Assets.First(),
		}
	}

	return &tlvc.Result{
		Transcript: &tlvc.Transcript{
			Meta:      meta,
			Redaction: redaction,
			Messages:  messages,
		},
		TopK: &tlvc.SegmentsTopK{
			Meta: tlvc.SegmentsMeta{
				EpisodeID:  opts.EpisodeID,
				K:          opts.K,
				Timezone:   opts.Timezone,
				Mode:       seg.Mode(),
				InputKind:  in.Kind,
				ExportRoot: in.ExportRoot,
				HTMLPath:   in.HTMLPath,
			},
			Segments: top,
		},
		Lint:     report,
		ExitCode: report.ExitCode,
	}, nil
}

// load resolves the input, loads the profile and reads the HTML document.
func (p *Preprocessor) load(opts Options) (*tlvc.ResolvedInput, *tlvc.Profile, string, error) {
	in, err := p.Resolver.Resolve(opts.Input)
	if err != nil {
		return nil, nil, "", err
	}

	profile, err := p.Profiles.LoadProfile(opts.ProfilePath)
	if err != nil {
		return nil, nil, "", err
	}

	data, err := os.ReadFile(in.HTMLPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, "", tlvc.Errorf(tlvc.ENOTFOUND, "html document not found: %s", in.HTMLPath)
	} else if err != nil {
		return nil, nil, "", fmt.Errorf("read html: %w", err)
	}
	return in, profile, string(data), nil
}
