package tlvc

import (
	"fmt"
	"strings"
)

// Lint codes.
const (
	LintSegmentsEmpty        = "SEGMENTS_EMPTY"
	LintSensitiveRemain      = "SENSITIVE_REMAIN"
	LintTop1LenOutOfRange    = "TOP1_LEN_OUT_OF_RANGE"
	LintTop1NoErrorTrigger   = "TOP1_NO_ERROR_TRIGGER"
	LintTop1LowRoleDiversity = "TOP1_LOW_ROLE_DIVERSITY"
	LintTSParseMissing       = "TS_PARSE_MISSING"
	LintTSParseFailed        = "TS_PARSE_FAILED"
	LintFallbackSegmentation = "FALLBACK_SEGMENTATION"
	LintExtractionDegraded   = "EXTRACTION_DEGRADED"
)

// Exit codes carried by a LintReport.
const (
	ExitOK       = 0
	ExitLintFail = 2
)

// MaxLintExamples caps the examples attached to a single lint entry.
const MaxLintExamples = 10

// LintEntry is one finding.
type LintEntry struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Examples []string `json:"examples,omitempty"`
}

// LintSummary counts the findings per severity.
type LintSummary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// LintReport is the quality gate result. Any error makes the run fail.
type LintReport struct {
	OK       bool        `json:"ok"`
	ExitCode int         `json:"exitCode"`
	Summary  LintSummary `json:"summary"`
	Errors   []LintEntry `json:"errors"`
	Warnings []LintEntry `json:"warnings"`
	Infos    []LintEntry `json:"infos"`
}

// LintInput is what the validator inspects.
type LintInput struct {
	Messages  []Message
	TopK      []ScoredSegment
	Residuals []Residual
	Fallback  bool
	Degraded  bool
}

// Lint classifies the ranked output against the quality rules. It never
// fails; problems are reported as entries.
func Lint(in LintInput) *LintReport {
	r := &LintReport{Errors: []LintEntry{}, Warnings: []LintEntry{}, Infos: []LintEntry{}}

	if len(in.TopK) == 0 {
		r.Errors = append(r.Errors, LintEntry{
			Code:    LintSegmentsEmpty,
			Message: "No segments were produced",
		})
	}

	if len(in.Residuals) > 0 {
		examples := make([]string, 0, MaxLintExamples)
		for _, res := range in.Residuals[:min(len(in.Residuals), MaxLintExamples)] {
			examples = append(examples, truncate(res.Snippet, ResidualSnippetLimit))
		}
		r.Errors = append(r.Errors, LintEntry{
			Code:     LintSensitiveRemain,
			Message:  fmt.Sprintf("Sensitive pattern residual detected (%d example(s))", len(in.Residuals)),
			Examples: examples,
		})
	}

	if len(in.TopK) > 0 {
		top := in.TopK[0]
		if n := top.Len(); n < SegmentMinLen || n > SegmentMaxLen {
			r.Errors = append(r.Errors, LintEntry{
				Code:    LintTop1LenOutOfRange,
				Message: fmt.Sprintf("Top1 segment has %d messages (required %d-%d)", n, SegmentMinLen, SegmentMaxLen),
			})
		}
		if !in.Fallback && !topHasErrorTrigger(&top, in.Messages) {
			r.Errors = append(r.Errors, LintEntry{
				Code:    LintTop1NoErrorTrigger,
				Message: "Top1 segment does not hit any error trigger",
			})
		}
		if n := top.RoleCounts.Distinct(); n < 2 {
			r.Warnings = append(r.Warnings, LintEntry{
				Code:    LintTop1LowRoleDiversity,
				Message: fmt.Sprintf("Top1 has only %d distinct role(s)", n),
			})
		}
	}

	var missing, failed []string
	var missingN, failedN int
	for _, m := range in.Messages {
		raw := strings.TrimSpace(m.RawTimestampText)
		switch {
		case raw == "":
			missingN++
			if len(missing) < MaxLintExamples {
				missing = append(missing, m.ID)
			}
		case m.Timestamp == "":
			failedN++
			if len(failed) < MaxLintExamples {
				failed = append(failed, truncate(raw, ResidualSnippetLimit))
			}
		}
	}
	if missingN > 0 {
		r.Warnings = append(r.Warnings, LintEntry{
			Code:     LintTSParseMissing,
			Message:  fmt.Sprintf("%d message(s) have no raw timestamp", missingN),
			Examples: missing,
		})
	}
	if failedN > 0 {
		r.Warnings = append(r.Warnings, LintEntry{
			Code:     LintTSParseFailed,
			Message:  fmt.Sprintf("%d message(s) have a raw timestamp that failed to parse", failedN),
			Examples: failed,
		})
	}

	if in.Fallback {
		r.Infos = append(r.Infos, LintEntry{
			Code:    LintFallbackSegmentation,
			Message: "No error trigger fired; segments are fixed slices of the transcript",
		})
	}
	if in.Degraded {
		r.Infos = append(r.Infos, LintEntry{
			Code:    LintExtractionDegraded,
			Message: "No message container matched; the document text was kept as a single message",
		})
	}

	r.Summary = LintSummary{Errors: len(r.Errors), Warnings: len(r.Warnings), Infos: len(r.Infos)}
	r.OK = len(r.Errors) == 0
	if !r.OK {
		r.ExitCode = ExitLintFail
	}
	return r
}

// topHasErrorTrigger re-scans the text of the top segment rather than
// trusting its recorded hits.
func topHasErrorTrigger(top *ScoredSegment, messages []Message) bool {
	for _, m := range segmentMessages(&top.Segment, messages, indexMessages(messages)) {
		if HasErrorTrigger(m.Text) {
			return true
		}
	}
	return false
}
