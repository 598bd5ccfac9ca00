package tlvc

import "regexp"

// RedactionMask replaces every sensitive match.
const RedactionMask = "***"

// ResidualSnippetLimit caps the length of a residual snippet, in runes.
const ResidualSnippetLimit = 80

// RedactPattern is a named sensitive-data pattern.
type RedactPattern struct {
	ID      string
	Pattern *regexp.Regexp
}

// Order is fixed: it decides hit attribution and the order of hitsByRule.
var redactPatterns = []RedactPattern{
	{"auth.bearer", regexp.MustCompile(`(?i)Authorization\s*:\s*Bearer\s+\S+`)},
	{"auth.api_key", regexp.MustCompile(`(?i)X-API-Key\s*:\s*\S+`)},
	{"token.generic", regexp.MustCompile(`(?i)(?:token|key)\s*[=:]\s*["']?[\w-]{20,}["']?`)},
	{"path.unix", regexp.MustCompile(`/Users/[^\s"')\]]+`)},
	{"path.home", regexp.MustCompile(`~/[^\s"')\]]+`)},
	{"network.ip", regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
	{"contact.email", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{"contact.phone", regexp.MustCompile(`\b(?:\+\d{1,3}[-.\s]?)?\(?\d{2,4}\)?[-.\s]?\d{2,4}[-.\s]?\d{2,4}\b`)},
}

// RedactPatterns returns the sensitive-data patterns in their fixed order.
func RedactPatterns() []RedactPattern {
	return redactPatterns
}

// RedactText masks every pattern match in text and returns the sanitized
// text with per-rule hit counts. Rules without hits are absent from the map.
func RedactText(text string) (string, map[string]int) {
	hits := make(map[string]int)
	for _, p := range redactPatterns {
		n := len(p.Pattern.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		text = p.Pattern.ReplaceAllLiteralString(text, RedactionMask)
		hits[p.ID] += n
	}
	return text, hits
}

// Residual is a sensitive match found in text that was already redacted.
type Residual struct {
	RuleID    string `json:"ruleId"`
	MessageID string `json:"messageId"`
	Snippet   string `json:"snippet"`
}

// ScanResiduals runs every pattern over text without replacing anything.
func ScanResiduals(messageID, text string) []Residual {
	var out []Residual
	for _, p := range redactPatterns {
		for _, m := range p.Pattern.FindAllString(text, -1) {
			out = append(out, Residual{RuleID: p.ID, MessageID: messageID, Snippet: truncate(m, ResidualSnippetLimit)})
		}
	}
	return out
}

// Redaction summarizes the hits of one redaction pass.
type Redaction struct {
	TotalHits  int            `json:"totalHits"`
	HitsByRule map[string]int `json:"hitsByRule"`
}

// RedactMessages returns sanitized copies of messages, the hit summary, and
// the residual matches found by re-scanning the sanitized text. The input
// slice is not modified.
func RedactMessages(messages []Message) ([]Message, Redaction, []Residual) {
	redaction := Redaction{HitsByRule: map[string]int{}}
	sanitized := make([]Message, len(messages))
	for i, m := range messages {
		text, hits := RedactText(m.Text)
		for id, n := range hits {
			redaction.HitsByRule[id] += n
			redaction.TotalHits += n
		}
		m.Text = text
		sanitized[i] = m
	}

	var residuals []Residual
	for _, m := range sanitized {
		residuals = append(residuals, ScanResiduals(m.ID, m.Text)...)
	}
	return sanitized, redaction, residuals
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
