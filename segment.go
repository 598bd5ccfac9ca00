package tlvc

import "fmt"

// Segment window bounds, in messages.
const (
	SegmentPre    = 6
	SegmentPost   = 12
	SegmentMinLen = 10
	SegmentMaxLen = 60
)

// Segment is a contiguous run of messages selected as a highlight candidate.
type Segment struct {
	ID             string       `json:"id"`
	StartIndex     int          `json:"startIndex"`
	EndIndex       int          `json:"endIndex"`
	StartTimestamp string       `json:"startTimestamp"`
	EndTimestamp   string       `json:"endTimestamp"`
	MessageIDs     []string     `json:"messageIds"`
	TriggerHits    []TriggerHit `json:"triggerHits"`
}

// Len returns the number of messages in the segment.
func (s *Segment) Len() int {
	return len(s.MessageIDs)
}

// SegmentMode tells how segments were produced.
type SegmentMode string

// Segmentation modes.
const (
	ModeError    SegmentMode = "error"
	ModeFallback SegmentMode = "fallback"
)

// Segmentation is the output of SegmentMessages.
type Segmentation struct {
	Segments []Segment
	// Fallback is set when no error trigger fired and the segments are plain
	// slices of the transcript.
	Fallback bool
}

// Mode returns the segmentation mode.
func (s *Segmentation) Mode() SegmentMode {
	if s.Fallback {
		return ModeFallback
	}
	return ModeError
}

type span struct{ start, end int }

func (s span) len() int { return s.end - s.start + 1 }

// SegmentMessages builds segments around error-trigger hits. Each hit opens
// the window [i-SegmentPre, i+SegmentPost]; windows that overlap or touch are
// merged, short ranges grow alternately backward then forward up to
// SegmentMinLen, and long ranges are cut to the SegmentMaxLen sub-window with
// the most error hits. With no error hits at all the transcript is sliced
// into fallback windows instead. An empty transcript yields no segments.
func SegmentMessages(messages []Message) *Segmentation {
	total := len(messages)
	if total == 0 {
		return &Segmentation{Segments: []Segment{}}
	}

	hits := make([][]string, total)
	var windows []span
	for i, m := range messages {
		hits[i] = MatchErrorTriggers(m.Text)
		if len(hits[i]) == 0 {
			continue
		}
		windows = append(windows, span{max(0, i-SegmentPre), min(total-1, i+SegmentPost)})
	}

	if len(windows) == 0 {
		spans := fallbackSpans(total)
		segments := make([]Segment, 0, len(spans))
		for _, sp := range spans {
			segments = append(segments, newSegment(len(segments)+1, sp, messages, hits))
		}
		return &Segmentation{Segments: segments, Fallback: true}
	}

	segments := make([]Segment, 0, len(windows))
	for _, sp := range mergeSpans(windows) {
		sp = expandToMin(sp, total)
		sp = trimToMax(sp, hits)
		segments = append(segments, newSegment(len(segments)+1, sp, messages, hits))
	}
	return &Segmentation{Segments: segments}
}

// mergeSpans expects spans in ascending start order, which holds because
// windows are opened in message order with constant offsets.
func mergeSpans(spans []span) []span {
	merged := []span{spans[0]}
	for _, cur := range spans[1:] {
		last := &merged[len(merged)-1]
		if cur.start <= last.end+1 {
			last.end = max(last.end, cur.end)
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

func expandToMin(sp span, total int) span {
	for sp.len() < SegmentMinLen && (sp.start > 0 || sp.end < total-1) {
		if sp.start > 0 {
			sp.start--
		}
		if sp.len() >= SegmentMinLen {
			break
		}
		if sp.end < total-1 {
			sp.end++
		}
	}
	return sp
}

// trimToMax scans every SegmentMaxLen sub-window and keeps the one with the
// most error-hit messages; ties go to the earliest start.
func trimToMax(sp span, hits [][]string) span {
	if sp.len() <= SegmentMaxLen {
		return sp
	}
	best, bestCount := sp.start, 0
	for s := sp.start; s+SegmentMaxLen-1 <= sp.end; s++ {
		count := 0
		for i := s; i < s+SegmentMaxLen; i++ {
			if len(hits[i]) > 0 {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = s, count
		}
	}
	return span{best, best + SegmentMaxLen - 1}
}

// fallbackSpans cuts [0,total) into ceil(total/SegmentMaxLen) consecutive
// slices whose sizes differ by at most one.
func fallbackSpans(total int) []span {
	n := (total + SegmentMaxLen - 1) / SegmentMaxLen
	size, extra := total/n, total%n
	spans := make([]span, 0, n)
	start := 0
	for i := range n {
		l := size
		if i < extra {
			l++
		}
		spans = append(spans, span{start, start + l - 1})
		start += l
	}
	return spans
}

func newSegment(n int, sp span, messages []Message, hits [][]string) Segment {
	seg := Segment{
		ID:             SegmentID(n),
		StartIndex:     sp.start,
		EndIndex:       sp.end,
		StartTimestamp: messages[sp.start].Timestamp,
		EndTimestamp:   messages[sp.end].Timestamp,
		MessageIDs:     make([]string, 0, sp.len()),
		TriggerHits:    []TriggerHit{},
	}
	for i := sp.start; i <= sp.end; i++ {
		seg.MessageIDs = append(seg.MessageIDs, messages[i].ID)
		for _, id := range hits[i] {
			seg.TriggerHits = append(seg.TriggerHits, TriggerHit{TriggerID: id, Category: CategoryError, MessageIndex: i})
		}
	}
	return seg
}

// SegmentID formats the id of the n-th discovered segment (1-based).
func SegmentID(n int) string {
	return fmt.Sprintf("s%03d", n)
}
