package tlvc

import (
	"fmt"
	"regexp"
	"strings"
)

// Defaults applied when a profile leaves the optional settings unset.
const (
	DefaultContinuationClass = "joined"
	DefaultTimeSelector      = "div.pull_right.date"
	DefaultDateSelector      = "div.message.service div.body.details"
)

// ValueType selects what a rule reads from the matched node.
type ValueType string

// Rule value types. "attr" is accepted as an alias of "attribute".
const (
	ValueText      ValueType = "text"
	ValueAttribute ValueType = "attribute"
	ValueAttr      ValueType = "attr"
)

// Profile is the declarative rule set that maps HTML nodes to message fields.
type Profile struct {
	Meta      *ProfileMeta      `json:"meta,omitempty" yaml:"meta,omitempty"`
	Message   *MessageConfig    `json:"message" yaml:"message" jsonschema:"required"`
	Sender    *FieldRuleSet     `json:"sender" yaml:"sender" jsonschema:"required"`
	Timestamp *TimestampRuleSet `json:"timestamp" yaml:"timestamp" jsonschema:"required"`
	Text      *FieldRuleSet     `json:"text" yaml:"text" jsonschema:"required"`
	ReplyTo   *FieldRuleSet     `json:"reply_to,omitempty" yaml:"reply_to,omitempty"`
}

// ProfileMeta is informational metadata carried by saved profiles.
type ProfileMeta struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Version   int    `json:"version,omitempty" yaml:"version,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// MessageConfig locates message nodes in the document.
type MessageConfig struct {
	ContainerSelector string   `json:"containerSelector" yaml:"containerSelector" jsonschema:"required,minLength=1"`
	IgnoreSelectors   []string `json:"ignoreSelectors,omitempty" yaml:"ignoreSelectors,omitempty"`

	// ContinuationClass marks a container whose sender is omitted because it
	// continues the previous sender's run. Defaults to DefaultContinuationClass.
	ContinuationClass string `json:"continuationClass,omitempty" yaml:"continuationClass,omitempty"`
}

// FieldRuleSet is an ordered list of rules; the first non-empty value wins.
type FieldRuleSet struct {
	Rules []Rule `json:"rules" yaml:"rules" jsonschema:"required,minItems=1"`
}

// TimestampRuleSet is a FieldRuleSet with the settings for the second
// extraction phase (rendered time text plus the preceding date separator).
type TimestampRuleSet struct {
	Rules    []Rule             `json:"rules" yaml:"rules" jsonschema:"required,minItems=1"`
	Fallback *TimestampFallback `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// TimestampFallback names the nodes used to rebuild a timestamp when no rule matched.
type TimestampFallback struct {
	TimeSelector string `json:"timeSelector,omitempty" yaml:"timeSelector,omitempty"`
	DateSelector string `json:"dateSelector,omitempty" yaml:"dateSelector,omitempty"`
}

// Rule reads one value from the first descendant matching Selector.
type Rule struct {
	Selector  string     `json:"selector" yaml:"selector" jsonschema:"required,minLength=1"`
	Value     RuleValue  `json:"value" yaml:"value" jsonschema:"required"`
	Normalize *Normalize `json:"normalize,omitempty" yaml:"normalize,omitempty"`
}

// RuleValue describes what to read from the matched node.
type RuleValue struct {
	Type             ValueType `json:"type" yaml:"type" jsonschema:"required,enum=text,enum=attribute,enum=attr"`
	Name             string    `json:"name,omitempty" yaml:"name,omitempty"`
	PreserveNewlines bool      `json:"preserveNewlines,omitempty" yaml:"preserveNewlines,omitempty"`
}

// Normalize holds optional post-processing flags for an extracted value.
type Normalize struct {
	Trim               bool `json:"trim,omitempty" yaml:"trim,omitempty"`
	CollapseWhitespace bool `json:"collapseWhitespace,omitempty" yaml:"collapseWhitespace,omitempty"`
}

// IsAttribute reports whether the rule reads an attribute.
func (v RuleValue) IsAttribute() bool {
	return v.Type == ValueAttribute || v.Type == ValueAttr
}

// Validate returns an EINVALID error if the profile is missing a required
// section or contains a rule that can never be evaluated.
func (p *Profile) Validate() error {
	if p.Message == nil {
		return Errorf(EINVALID, "invalid profile: missing message section")
	}
	if strings.TrimSpace(p.Message.ContainerSelector) == "" {
		return Errorf(EINVALID, "invalid profile: message.containerSelector is required")
	}
	if p.Sender == nil {
		return Errorf(EINVALID, "invalid profile: missing sender section")
	}
	if p.Timestamp == nil {
		return Errorf(EINVALID, "invalid profile: missing timestamp section")
	}
	if p.Text == nil {
		return Errorf(EINVALID, "invalid profile: missing text section")
	}
	for _, f := range p.fields() {
		if err := validateRules(f.name, f.rules); err != nil {
			return err
		}
	}
	return nil
}

func validateRules(field string, rules []Rule) error {
	if len(rules) == 0 {
		return Errorf(EINVALID, "invalid profile: %s.rules must have at least one rule", field)
	}
	for i, r := range rules {
		if strings.TrimSpace(r.Selector) == "" {
			return Errorf(EINVALID, "invalid profile: %s.rules[%d].selector is required", field, i)
		}
		switch r.Value.Type {
		case ValueText:
		case ValueAttribute, ValueAttr:
			if r.Value.Name == "" {
				return Errorf(EINVALID, "invalid profile: %s.rules[%d].value.name is required for attribute rules", field, i)
			}
		default:
			return Errorf(EINVALID, "invalid profile: %s.rules[%d].value.type %q is not supported", field, i, r.Value.Type)
		}
	}
	return nil
}

type profileField struct {
	name  string
	rules []Rule
}

// fields lists the rule sets present on the profile in evaluation order.
func (p *Profile) fields() []profileField {
	var out []profileField
	if p.Sender != nil {
		out = append(out, profileField{"sender", p.Sender.Rules})
	}
	if p.Timestamp != nil {
		out = append(out, profileField{"timestamp", p.Timestamp.Rules})
	}
	if p.Text != nil {
		out = append(out, profileField{"text", p.Text.Rules})
	}
	if p.ReplyTo != nil {
		out = append(out, profileField{"reply_to", p.ReplyTo.Rules})
	}
	return out
}

// ContinuationClass returns the class that marks sender-less continuation messages.
func (p *Profile) ContinuationClass() string {
	if p.Message != nil && p.Message.ContinuationClass != "" {
		return p.Message.ContinuationClass
	}
	return DefaultContinuationClass
}

// TimeSelector returns the selector of the rendered time text.
func (p *Profile) TimeSelector() string {
	if p.Timestamp != nil && p.Timestamp.Fallback != nil && p.Timestamp.Fallback.TimeSelector != "" {
		return p.Timestamp.Fallback.TimeSelector
	}
	return DefaultTimeSelector
}

// DateSelector returns the selector of date separator nodes.
func (p *Profile) DateSelector() string {
	if p.Timestamp != nil && p.Timestamp.Fallback != nil && p.Timestamp.Fallback.DateSelector != "" {
		return p.Timestamp.Fallback.DateSelector
	}
	return DefaultDateSelector
}

// Name returns the profile's display name, or fallback when unset.
func (p *Profile) Name(fallback string) string {
	if p.Meta != nil && p.Meta.Name != "" {
		return p.Meta.Name
	}
	return fallback
}

// Version returns the profile's version, 1 when unset.
func (p *Profile) Version() int {
	if p.Meta != nil && p.Meta.Version > 0 {
		return p.Meta.Version
	}
	return 1
}

// ProfileCheck holds the result of a strict profile review.
type ProfileCheck struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK reports whether the review found no errors.
func (c *ProfileCheck) OK() bool {
	return len(c.Errors) == 0
}

var tooWideSelectors = map[string]bool{"div": true, "body": true, "*": true, "span": true}

var containsSelectorRe = regexp.MustCompile(`\[[^\]]*\*=`)

// CheckProfile applies Validate plus selector hygiene checks: selectors that
// match nearly every node are errors, [attr*=...] selectors are warnings.
func CheckProfile(p *Profile) *ProfileCheck {
	c := &ProfileCheck{Errors: []string{}, Warnings: []string{}}
	if err := p.Validate(); err != nil {
		c.Errors = append(c.Errors, ErrorMessage(err))
		return c
	}

	if tooWideSelectors[strings.ToLower(strings.TrimSpace(p.Message.ContainerSelector))] {
		c.Errors = append(c.Errors, "message.containerSelector is too wide")
	}
	for _, f := range p.fields() {
		for i, r := range f.rules {
			if tooWideSelectors[strings.ToLower(strings.TrimSpace(r.Selector))] {
				c.Errors = append(c.Errors, fmt.Sprintf("%s.rules[%d].selector: selector too wide (%q)", f.name, i, r.Selector))
			}
			if containsSelectorRe.MatchString(r.Selector) {
				c.Warnings = append(c.Warnings, fmt.Sprintf("%s.rules[%d].selector: contains-type selector may match too much", f.name, i))
			}
		}
	}
	return c
}

// ProfileLoader loads extraction profiles.
type ProfileLoader interface {
	// LoadProfile reads and validates the profile at path.
	// Returns ENOTFOUND if the file does not exist and EINVALID if the
	// profile is malformed.
	LoadProfile(path string) (*Profile, error)
}

// ProfileSelector is one CSS selector used by a profile, with its location.
type ProfileSelector struct {
	Path     string
	Selector string
}

// Selectors lists every selector the profile uses, including the timestamp
// fallback selectors and their defaults.
func (p *Profile) Selectors() []ProfileSelector {
	var out []ProfileSelector
	if p.Message != nil {
		out = append(out, ProfileSelector{"message.containerSelector", p.Message.ContainerSelector})
		for i, sel := range p.Message.IgnoreSelectors {
			out = append(out, ProfileSelector{fmt.Sprintf("message.ignoreSelectors[%d]", i), sel})
		}
	}
	for _, f := range p.fields() {
		for i, r := range f.rules {
			out = append(out, ProfileSelector{fmt.Sprintf("%s.rules[%d].selector", f.name, i), r.Selector})
		}
	}
	out = append(out,
		ProfileSelector{"timestamp.fallback.timeSelector", p.TimeSelector()},
		ProfileSelector{"timestamp.fallback.dateSelector", p.DateSelector()},
	)
	return out
}
