package orderedmap

import "github.com/yzsnstotz/tlvc"

var messageKeys = []string{"id", "timestamp", "rawTimestampText", "sender", "text", "replyTo", "attachments"}

var lintEntryKeys = []string{"code", "message", "examples"}

// TranscriptOrder is the key order of the sanitized transcript.
func TranscriptOrder() KeyOrder {
	var ruleIDs []string
	for _, p := range tlvc.RedactPatterns() {
		ruleIDs = append(ruleIDs, p.ID)
	}
	return KeyOrder{
		"":                         {"meta", "redaction", "messages"},
		"meta":                     {"episodeId", "timezone", "schemaVersion", "inputKind", "exportRoot", "htmlPath", "source"},
		"meta.source":              {"inputPath", "htmlFile", "assetsDir"},
		"redaction":                {"totalHits", "hitsByRule"},
		"redaction.hitsByRule":     ruleIDs,
		"messages[]":               messageKeys,
		"messages[].attachments[]": {"kind", "path"},
	}
}

// SegmentsOrder is the key order of the top-K segments document.
func SegmentsOrder() KeyOrder {
	return KeyOrder{
		"":     {"meta", "segments"},
		"meta": {"episodeId", "k", "timezone", "mode", "inputKind", "exportRoot", "htmlPath"},
		"segments[]": {
			"id", "score", "startIndex", "endIndex", "startTimestamp", "endTimestamp",
			"messageIds", "triggerHits", "reasons", "roleCounts",
		},
		"segments[].triggerHits[]": {"triggerId", "category", "messageIndex"},
		"segments[].reasons[]":     {"ruleId", "points", "detail"},
		"segments[].roleCounts":    {"ao000", "ao001", "ao002", "leo", "system", "unknown"},
	}
}

// LintOrder is the key order of the lint report.
func LintOrder() KeyOrder {
	return KeyOrder{
		"":           {"ok", "exitCode", "summary", "errors", "warnings", "infos"},
		"summary":    {"errors", "warnings", "infos"},
		"errors[]":   lintEntryKeys,
		"warnings[]": lintEntryKeys,
		"infos[]":    lintEntryKeys,
	}
}

// EncodeTranscript serializes a sanitized transcript.
func EncodeTranscript(t *tlvc.Transcript) ([]byte, error) {
	return Marshal(t, TranscriptOrder())
}

// EncodeSegments serializes the top-K segments document.
func EncodeSegments(s *tlvc.SegmentsTopK) ([]byte, error) {
	return Marshal(s, SegmentsOrder())
}

// EncodeLintReport serializes a lint report.
func EncodeLintReport(r *tlvc.LintReport) ([]byte, error) {
	return Marshal(r, LintOrder())
}

// Artifacts serializes the three documents of a run, in write order.
func Artifacts(r *tlvc.Result) ([]*tlvc.Artifact, error) {
	transcript, err := EncodeTranscript(r.Transcript)
	if err != nil {
		return nil, err
	}
	segments, err := EncodeSegments(r.TopK)
	if err != nil {
		return nil, err
	}
	lint, err := EncodeLintReport(r.Lint)
	if err != nil {
		return nil, err
	}
	return []*tlvc.Artifact{
		{Name: tlvc.TranscriptArtifactName, Data: transcript},
		{Name: tlvc.SegmentsArtifactName, Data: segments},
		{Name: tlvc.LintArtifactName, Data: lint},
	}, nil
}
