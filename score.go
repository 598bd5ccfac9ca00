package tlvc

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"
)

// Reason is one heuristic's contribution to a segment score.
type Reason struct {
	RuleID string `json:"ruleId"`
	Points int    `json:"points"`
	Detail string `json:"detail"`
}

// RoleCounts counts the messages of each sender in a segment. Every sender
// value is always present.
type RoleCounts struct {
	AO000   int `json:"ao000"`
	AO001   int `json:"ao001"`
	AO002   int `json:"ao002"`
	Leo     int `json:"leo"`
	System  int `json:"system"`
	Unknown int `json:"unknown"`
}

// Add counts one message from s.
func (c *RoleCounts) Add(s Sender) {
	switch s {
	case SenderAO000:
		c.AO000++
	case SenderAO001:
		c.AO001++
	case SenderAO002:
		c.AO002++
	case SenderLeo:
		c.Leo++
	case SenderSystem:
		c.System++
	default:
		c.Unknown++
	}
}

// Distinct returns the number of senders with a non-zero count.
func (c RoleCounts) Distinct() int {
	n := 0
	for _, v := range []int{c.AO000, c.AO001, c.AO002, c.Leo, c.System, c.Unknown} {
		if v > 0 {
			n++
		}
	}
	return n
}

// ScoredSegment is a Segment with its explained score.
type ScoredSegment struct {
	Segment
	Score      int        `json:"score"`
	Reasons    []Reason   `json:"reasons"`
	RoleCounts RoleCounts `json:"roleCounts"`
}

// Heuristic computes one scoring rule over a segment and its messages.
type Heuristic struct {
	ID      string
	Compute func(seg *Segment, messages []Message) (points int, detail string)
}

var conclusionRe = regexp.MustCompile(`(?i)\b(so|therefore|thus|in conclusion|summary|done|fixed|resolved)\b`)

// Order is fixed: it is the order of Reasons in the output.
var heuristics = []Heuristic{
	{"conflict.error", scoreConflict},
	{"roles.tri", scoreTriRoles},
	{"roles.diversity.min2", scoreDiversity},
	{"compress.short", scoreCompress},
	{"conclusion.phrase", scoreConclusion},
}

// Heuristics returns the scoring heuristics in output order.
func Heuristics() []Heuristic {
	return heuristics
}

func scoreConflict(seg *Segment, _ []Message) (int, string) {
	var ids []string
	n := 0
	for _, h := range seg.TriggerHits {
		if h.Category != CategoryError {
			continue
		}
		n++
		if !slices.Contains(ids, h.TriggerID) {
			ids = append(ids, h.TriggerID)
		}
	}
	if n == 0 {
		return 0, "No error triggers"
	}
	return min(50, 15*n), "Error triggers: " + strings.Join(ids, ", ")
}

func scoreTriRoles(_ *Segment, messages []Message) (int, string) {
	seen := map[Sender]bool{}
	for _, m := range messages {
		if m.Sender.Primary() {
			seen[m.Sender] = true
		}
	}
	n := len(seen)
	points := n * 10
	switch {
	case n >= 3:
		points = 35
	case n == 2:
		points = 20
	}
	return points, fmt.Sprintf("Tri-roles: %d", n)
}

func scoreDiversity(_ *Segment, messages []Message) (int, string) {
	seen := map[Sender]bool{}
	for _, m := range messages {
		seen[m.Sender] = true
	}
	if len(seen) >= 2 {
		return 15, fmt.Sprintf("Distinct roles: %d", len(seen))
	}
	return 0, fmt.Sprintf("Distinct roles: %d", len(seen))
}

func scoreCompress(_ *Segment, messages []Message) (int, string) {
	var avg float64
	if len(messages) > 0 {
		total := 0
		for _, m := range messages {
			total += utf8.RuneCountInString(m.Text)
		}
		avg = float64(total) / float64(len(messages))
	}
	points := 0
	switch {
	case avg <= 80:
		points = 15
	case avg <= 150:
		points = 8
	}
	return points, fmt.Sprintf("Avg msg length: %d", int(math.Round(avg)))
}

func scoreConclusion(_ *Segment, messages []Message) (int, string) {
	texts := make([]string, len(messages))
	for i, m := range messages {
		texts[i] = m.Text
	}
	if conclusionRe.MatchString(strings.Join(texts, " ")) {
		return 10, "Conclusion phrase hit"
	}
	return 0, "No conclusion phrase"
}

// ScoreSegment evaluates every heuristic over seg in order.
func ScoreSegment(seg Segment, messages []Message) ScoredSegment {
	return scoreSegment(seg, messages, indexMessages(messages))
}

func scoreSegment(seg Segment, messages []Message, byID map[string]int) ScoredSegment {
	window := segmentMessages(&seg, messages, byID)
	scored := ScoredSegment{Segment: seg, Reasons: make([]Reason, 0, len(heuristics))}
	for _, h := range heuristics {
		points, detail := h.Compute(&seg, window)
		scored.Reasons = append(scored.Reasons, Reason{RuleID: h.ID, Points: points, Detail: detail})
		scored.Score += points
	}
	for _, m := range window {
		scored.RoleCounts.Add(m.Sender)
	}
	return scored
}

// ScoreSegments scores every segment, orders them by score descending then
// id ascending, and keeps the first k. Returns EINVALID if k < 1.
func ScoreSegments(segments []Segment, messages []Message, k int) ([]ScoredSegment, error) {
	if k < 1 {
		return nil, Errorf(EINVALID, "top-k must be at least 1, got %d", k)
	}
	byID := indexMessages(messages)
	scored := make([]ScoredSegment, 0, len(segments))
	for _, seg := range segments {
		scored = append(scored, scoreSegment(seg, messages, byID))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func indexMessages(messages []Message) map[string]int {
	byID := make(map[string]int, len(messages))
	for i, m := range messages {
		byID[m.ID] = i
	}
	return byID
}

// segmentMessages returns the messages covered by seg, looked up by id so a
// segment never reads past the transcript.
func segmentMessages(seg *Segment, messages []Message, byID map[string]int) []Message {
	out := make([]Message, 0, len(seg.MessageIDs))
	for _, id := range seg.MessageIDs {
		if i, ok := byID[id]; ok {
			out = append(out, messages[i])
		}
	}
	return out
}
