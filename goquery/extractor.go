package goquery

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/yzsnstotz/tlvc"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Ensure Extractor implements tlvc.MessageExtractor at compile time.
var _ tlvc.MessageExtractor = (*Extractor)(nil)

// Extractor applies extraction profiles to HTML documents using goquery.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

var (
	newlineRunRe  = regexp.MustCompile(`\s*\n\s*`)
	inlineSpaceRe = regexp.MustCompile(`[^\S\n]+`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// Extract returns the messages of the document in document order.
// Containers without any timestamp text are dropped. When no container
// matches, the whole body text becomes a single unknown-sender message.
func (e *Extractor) Extract(htmlText string, profile *tlvc.Profile, loc *time.Location) (*tlvc.Extraction, error) {
	if loc == nil {
		loc = time.UTC
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, tlvc.Errorf(tlvc.EINVALID, "failed to parse HTML: %v", err)
	}

	containers := doc.Find(profile.Message.ContainerSelector)
	for _, sel := range profile.Message.IgnoreSelectors {
		containers = containers.Not(sel)
	}

	ext := &tlvc.Extraction{
		Messages: []tlvc.ExtractedMessage{},
		Stats: tlvc.ExtractionStats{
			ContainerMatches: containers.Length(),
			RuleHits: tlvc.FieldRuleHits{
				Sender:    make([]int, len(profile.Sender.Rules)),
				Timestamp: make([]int, len(profile.Timestamp.Rules)),
				Text:      make([]int, len(profile.Text.Rules)),
			},
		},
	}
	if profile.ReplyTo != nil {
		ext.Stats.RuleHits.ReplyTo = make([]int, len(profile.ReplyTo.Rules))
	}

	if containers.Length() == 0 {
		ext.Stats.Degraded = true
		if text := documentText(doc); text != "" {
			ext.Messages = append(ext.Messages, tlvc.ExtractedMessage{
				Sender:      tlvc.SenderUnknown,
				Text:        text,
				Attachments: []tlvc.Attachment{},
			})
		}
		return ext, nil
	}

	dates := newDateIndex(doc, profile.DateSelector())
	continuation := profile.ContinuationClass()
	var lastKnown, lastRaw string

	containers.Each(func(_ int, c *goquery.Selection) {
		m := tlvc.ExtractedMessage{SourceID: c.AttrOr("id", "")}

		sender, idx := extractField(c, profile.Sender.Rules)
		countHit(ext.Stats.RuleHits.Sender, idx)
		m.RawSender = sender
		if sender == "" && c.HasClass(continuation) {
			m.RawSender = lastKnown
			if m.RawSender == "" {
				m.RawSender = lastRaw
			}
		}
		m.Sender = tlvc.ParseSender(m.RawSender)
		if sender != "" {
			lastRaw = sender
			if m.Sender.Known() {
				lastKnown = sender
			}
		}

		raw, idx := extractField(c, profile.Timestamp.Rules)
		countHit(ext.Stats.RuleHits.Timestamp, idx)
		if raw == "" {
			raw = fallbackTimestamp(c, profile.TimeSelector(), dates, loc)
		}
		if raw == "" {
			ext.Stats.Dropped++
			return
		}
		m.RawTimestampText = raw
		m.Timestamp, _ = tlvc.ParseTimestamp(raw, loc)

		m.Text, idx = extractField(c, profile.Text.Rules)
		countHit(ext.Stats.RuleHits.Text, idx)

		if profile.ReplyTo != nil {
			m.ReplyTo, idx = extractField(c, profile.ReplyTo.Rules)
			countHit(ext.Stats.RuleHits.ReplyTo, idx)
		}

		m.Attachments = attachments(c)
		if m.Text == "" && len(m.Attachments) > 0 {
			m.Text = tlvc.AttachmentPlaceholder
		}
		ext.Messages = append(ext.Messages, m)
	})

	return ext, nil
}

// extractField tries rules in order and returns the first non-empty value
// with the index of the rule that produced it, or -1.
func extractField(c *goquery.Selection, rules []tlvc.Rule) (string, int) {
	for i, r := range rules {
		if v := extractRule(c, r); v != "" {
			return v, i
		}
	}
	return "", -1
}

func extractRule(c *goquery.Selection, r tlvc.Rule) string {
	el := c.Find(r.Selector).First()
	if el.Length() == 0 {
		return ""
	}

	var v string
	if r.Value.IsAttribute() {
		v = el.AttrOr(r.Value.Name, "")
	} else {
		v = nodeText(el.Nodes, r.Value.PreserveNewlines)
		if r.Value.PreserveNewlines {
			v = newlineRunRe.ReplaceAllString(v, "\n")
		}
	}

	if r.Normalize != nil {
		if r.Normalize.CollapseWhitespace {
			if r.Value.PreserveNewlines {
				v = inlineSpaceRe.ReplaceAllString(v, " ")
			} else {
				v = spaceRe.ReplaceAllString(v, " ")
			}
			v = strings.TrimSpace(v)
		}
		if r.Normalize.Trim {
			v = strings.TrimSpace(v)
		}
	}
	if strings.TrimSpace(v) == "" {
		return ""
	}
	return v
}

func countHit(hits []int, idx int) {
	if idx >= 0 && idx < len(hits) {
		hits[idx]++
	}
}

// nodeText concatenates the text under nodes. A <br> becomes a newline when
// preserveNewlines is set and a space otherwise.
func nodeText(nodes []*html.Node, preserveNewlines bool) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Br:
				if preserveNewlines {
					b.WriteByte('\n')
				} else {
					b.WriteByte(' ')
				}
			case atom.Script, atom.Style:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return b.String()
}

// documentText returns the de-tagged body text with whitespace collapsed.
// Element boundaries count as whitespace so adjacent blocks do not fuse.
func documentText(doc *goquery.Document) string {
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
			b.WriteByte(' ')
			defer b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range root.Nodes {
		walk(n)
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(b.String(), " "))
}

// attachments collects local file references below c in document order,
// deduplicated by normalized path.
func attachments(c *goquery.Selection) []tlvc.Attachment {
	out := []tlvc.Attachment{}
	seen := make(map[string]bool)
	c.Find("a[href], img[src]").Each(func(_ int, el *goquery.Selection) {
		ref, ok := el.Attr("href")
		if !ok {
			ref = el.AttrOr("src", "")
		}
		p := tlvc.NormalizeAttachmentPath(ref)
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, tlvc.Attachment{Kind: tlvc.ClassifyAttachment(p), Path: p})
	})
	return out
}

// dateIndex locates the nearest date separator preceding a node in
// document order.
// Positions are ascending because Find returns nodes in document order.
type dateIndex struct {
	order map[*html.Node]int
	pos   []int
	texts []string
}

func newDateIndex(doc *goquery.Document, selector string) *dateIndex {
	idx := &dateIndex{order: make(map[*html.Node]int)}
	n := 0
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		idx.order[node] = n
		n++
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}

	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(spaceRe.ReplaceAllString(nodeText(s.Nodes, false), " "))
		if text == "" {
			return
		}
		idx.pos = append(idx.pos, idx.order[s.Nodes[0]])
		idx.texts = append(idx.texts, text)
	})
	return idx
}

// before returns the text of the last separator preceding node, or "".
func (d *dateIndex) before(node *html.Node) string {
	p, ok := d.order[node]
	if !ok {
		return ""
	}
	i := sort.SearchInts(d.pos, p)
	if i == 0 {
		return ""
	}
	return d.texts[i-1]
}

// fallbackTimestamp rebuilds raw timestamp text from the rendered time of c
// and the nearest preceding date separator. Time text without a usable date
// is returned as-is so it is reported as unparsed rather than dropped.
func fallbackTimestamp(c *goquery.Selection, timeSelector string, dates *dateIndex, loc *time.Location) string {
	timeText := strings.TrimSpace(nodeText(c.Find(timeSelector).First().Nodes, false))
	if timeText == "" {
		return ""
	}
	date := dates.before(c.Nodes[0])
	if date == "" {
		return timeText
	}
	if raw, ok := tlvc.ReconstructTimestamp(date, timeText, loc); ok {
		return raw
	}
	return date + " " + timeText
}
