package tlvc

import "context"

// SchemaVersion is stamped on every sanitized transcript.
const SchemaVersion = "proto-0.1"

// Artifact file names, written under ArtifactDir.
const (
	ArtifactDir            = "step2_preprocess"
	TranscriptArtifactName = "sanitized.transcript.json"
	SegmentsArtifactName   = "segments.topk.json"
	LintArtifactName       = "lint_report.step2.json"
)

// Source records the original input paths when the caller asks for them.
type Source struct {
	InputPath string `json:"inputPath"`
	HTMLFile  string `json:"htmlFile"`
	AssetsDir string `json:"assetsDir"`
}

// TranscriptMeta describes the run that produced a transcript.
type TranscriptMeta struct {
	EpisodeID     string    `json:"episodeId"`
	Timezone      string    `json:"timezone"`
	SchemaVersion string    `json:"schemaVersion"`
	InputKind     InputKind `json:"inputKind"`
	ExportRoot    string    `json:"exportRoot"`
	HTMLPath      string    `json:"htmlPath"`
	Source        *Source   `json:"source,omitempty"`
}

// Transcript is the sanitized transcript document.
type Transcript struct {
	Meta      TranscriptMeta `json:"meta"`
	Redaction Redaction      `json:"redaction"`
	Messages  []Message      `json:"messages"`
}

// SegmentsMeta describes the run that produced the top-K segments.
type SegmentsMeta struct {
	EpisodeID  string      `json:"episodeId"`
	K          int         `json:"k"`
	Timezone   string      `json:"timezone"`
	Mode       SegmentMode `json:"mode"`
	InputKind  InputKind   `json:"inputKind"`
	ExportRoot string      `json:"exportRoot"`
	HTMLPath   string      `json:"htmlPath"`
}

// SegmentsTopK is the ranked segments document.
type SegmentsTopK struct {
	Meta     SegmentsMeta    `json:"meta"`
	Segments []ScoredSegment `json:"segments"`
}

// Result is everything one preprocessing run produces.
type Result struct {
	Transcript *Transcript
	TopK       *SegmentsTopK
	Lint       *LintReport
	ExitCode   int
}

// Artifact is one serialized output document.
type Artifact struct {
	Name string
	Data []byte
}

// ArtifactStore persists artifacts with all-or-nothing semantics: nothing
// is visible until Commit, and Abort discards everything saved so far.
type ArtifactStore interface {
	Save(ctx context.Context, artifact *Artifact) error
	Commit() error
	Abort() error
}
