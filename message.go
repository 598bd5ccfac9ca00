package tlvc

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Sender is the closed set of conversation roles. Anything that cannot be
// attributed maps to SenderUnknown.
type Sender string

// Known senders.
const (
	SenderAO000   Sender = "ao000"
	SenderAO001   Sender = "ao001"
	SenderAO002   Sender = "ao002"
	SenderLeo     Sender = "leo"
	SenderSystem  Sender = "system"
	SenderUnknown Sender = "unknown"
)

// Senders lists every sender value in its fixed output order.
var Senders = []Sender{SenderAO000, SenderAO001, SenderAO002, SenderLeo, SenderSystem, SenderUnknown}

// Known reports whether the sender was attributed.
func (s Sender) Known() bool {
	return s != SenderUnknown && s != ""
}

// Primary reports whether the sender is one of the three agent roles.
func (s Sender) Primary() bool {
	return s == SenderAO000 || s == SenderAO001 || s == SenderAO002
}

var (
	leoSenderRe    = regexp.MustCompile(`(?i)\bleo\b|\byzliu\b`)
	yzSenderRe     = regexp.MustCompile(`(?i)^yz\b|yz\s*@`)
	systemSenderRe = regexp.MustCompile(`(?i)\bsystem\b`)
)

// ParseSender maps raw sender text to a Sender. The checks run in a fixed
// order and the first hit wins.
func ParseSender(raw string) Sender {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "ao000"):
		return SenderAO000
	case strings.Contains(lower, "ao001"):
		return SenderAO001
	case strings.Contains(lower, "ao002"):
		return SenderAO002
	case leoSenderRe.MatchString(s), yzSenderRe.MatchString(s):
		return SenderLeo
	case systemSenderRe.MatchString(s):
		return SenderSystem
	}
	return SenderUnknown
}

// AttachmentKind classifies an attachment by its path.
type AttachmentKind string

// Attachment kinds.
const (
	AttachmentPhoto   AttachmentKind = "photo"
	AttachmentVideo   AttachmentKind = "video"
	AttachmentFile    AttachmentKind = "file"
	AttachmentSticker AttachmentKind = "sticker"
	AttachmentVoice   AttachmentKind = "voice"
	AttachmentUnknown AttachmentKind = "unknown"
)

// AttachmentPlaceholder replaces the text of a message that only carries attachments.
const AttachmentPlaceholder = "[attachment]"

// Attachment is a local file referenced by a message.
type Attachment struct {
	Kind AttachmentKind `json:"kind"`
	Path string         `json:"path"`
}

// Order matters: prefixes are evaluated top to bottom.
var attachmentPrefixes = []struct {
	pattern *regexp.Regexp
	kind    AttachmentKind
}{
	{regexp.MustCompile(`(?i)^(?:\./)?photos/`), AttachmentPhoto},
	{regexp.MustCompile(`(?i)^(?:\./)?(?:video_files|videos?)/`), AttachmentVideo},
	{regexp.MustCompile(`(?i)^(?:\./)?files/`), AttachmentFile},
	{regexp.MustCompile(`(?i)^(?:\./)?stickers/`), AttachmentSticker},
	{regexp.MustCompile(`(?i)^(?:\./)?voice_messages/`), AttachmentVoice},
}

// ClassifyAttachment returns the kind of the first matching path prefix.
func ClassifyAttachment(path string) AttachmentKind {
	normalized := strings.ReplaceAll(path, `\`, "/")
	for _, p := range attachmentPrefixes {
		if p.pattern.MatchString(normalized) {
			return p.kind
		}
	}
	return AttachmentUnknown
}

// NormalizeAttachmentPath converts backslashes and drops a leading "./".
// Returns "" for references that are not local files (remote URLs and
// in-page anchors).
func NormalizeAttachmentPath(raw string) string {
	p := strings.TrimPrefix(strings.ReplaceAll(raw, `\`, "/"), "./")
	if p == "" || strings.HasPrefix(p, "http") || strings.HasPrefix(p, "#") {
		return ""
	}
	return p
}

// Message is one sanitized transcript entry.
type Message struct {
	ID               string       `json:"id"`
	Timestamp        string       `json:"timestamp"`
	RawTimestampText string       `json:"rawTimestampText"`
	Sender           Sender       `json:"sender"`
	Text             string       `json:"text"`
	ReplyTo          *string      `json:"replyTo"`
	Attachments      []Attachment `json:"attachments"`
}

// ExtractedMessage is a message as read from the document, before ids are
// assigned and before redaction.
type ExtractedMessage struct {
	// SourceID is the container's id attribute, used to resolve replies.
	SourceID         string
	RawSender        string
	Sender           Sender
	RawTimestampText string
	Timestamp        string
	Text             string
	ReplyTo          string
	Attachments      []Attachment
}

// FieldRuleHits counts, per field, how many containers each rule index won.
type FieldRuleHits struct {
	Sender    []int `json:"sender"`
	Timestamp []int `json:"timestamp"`
	Text      []int `json:"text"`
	ReplyTo   []int `json:"replyTo,omitempty"`
}

// ExtractionStats describes how the profile matched the document.
type ExtractionStats struct {
	ContainerMatches int           `json:"containerMatches"`
	Dropped          int           `json:"dropped"`
	Degraded         bool          `json:"degraded"`
	RuleHits         FieldRuleHits `json:"ruleHits"`
}

// Extraction is the output of a MessageExtractor.
type Extraction struct {
	Messages []ExtractedMessage
	Stats    ExtractionStats
}

// MessageExtractor applies an extraction profile to an HTML document.
type MessageExtractor interface {
	// Extract returns the messages found in html in document order. Parse
	// anomalies never produce an error; an error is returned only when the
	// document cannot be read at all.
	Extract(html string, profile *Profile, loc *time.Location) (*Extraction, error)
}

// MessageID formats the sequential id of the n-th message (1-based).
func MessageID(n int) string {
	return fmt.Sprintf("m%06d", n)
}

// BuildMessages assigns sequential ids in document order and resolves
// reply references that point at another extracted container.
func BuildMessages(extracted []ExtractedMessage) []Message {
	bySource := make(map[string]string, len(extracted))
	for i, e := range extracted {
		if e.SourceID != "" {
			if _, ok := bySource[e.SourceID]; !ok {
				bySource[e.SourceID] = MessageID(i + 1)
			}
		}
	}

	messages := make([]Message, 0, len(extracted))
	for i, e := range extracted {
		attachments := e.Attachments
		if attachments == nil {
			attachments = []Attachment{}
		}
		m := Message{
			ID:               MessageID(i + 1),
			Timestamp:        e.Timestamp,
			RawTimestampText: e.RawTimestampText,
			Sender:           e.Sender,
			Text:             e.Text,
			Attachments:      attachments,
		}
		if m.Sender == "" {
			m.Sender = SenderUnknown
		}
		if e.ReplyTo != "" {
			ref := e.ReplyTo
			if id, ok := bySource[replySourceID(ref)]; ok {
				ref = id
			}
			m.ReplyTo = &ref
		}
		messages = append(messages, m)
	}
	return messages
}

// replySourceID strips the in-page anchor decoration from a reply reference,
// e.g. "#go_to_message123" becomes "message123".
func replySourceID(ref string) string {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	return strings.TrimPrefix(ref, "go_to_")
}
