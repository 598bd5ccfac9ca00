package tlvc

import (
	"regexp"
	"slices"
)

// TriggerCategory groups trigger patterns. Only error triggers anchor
// segmentation; the other categories feed diagnostics.
type TriggerCategory string

// Trigger categories.
const (
	CategoryError      TriggerCategory = "error"
	CategoryPermission TriggerCategory = "permission"
	CategoryAction     TriggerCategory = "action"
)

// Trigger is a named pattern. The compiled regexp is immutable and safe to
// share between goroutines.
type Trigger struct {
	ID       string
	Category TriggerCategory
	Pattern  *regexp.Regexp
}

var errorTriggers = []Trigger{
	{"error.cors", CategoryError, regexp.MustCompile(`(?i)CORS|cross-origin`)},
	{"error.401", CategoryError, regexp.MustCompile(`(?i)401|Unauthorized`)},
	{"error.403", CategoryError, regexp.MustCompile(`(?i)403|Forbidden`)},
	{"error.404", CategoryError, regexp.MustCompile(`(?i)404|Not Found`)},
	{"error.timeout", CategoryError, regexp.MustCompile(`(?i)timeout|timed out`)},
	{"error.invalid_config", CategoryError, regexp.MustCompile(`(?i)Invalid config|invalid configuration`)},
}

var permissionTriggers = []Trigger{
	{"perm.allow", CategoryPermission, regexp.MustCompile(`(?i)\ballow\b`)},
	{"perm.approve", CategoryPermission, regexp.MustCompile(`(?i)\bapprove\b`)},
	{"perm.grant", CategoryPermission, regexp.MustCompile(`(?i)\bgrant\b`)},
	{"perm.permission", CategoryPermission, regexp.MustCompile(`(?i)\bpermission\b`)},
}

var actionTriggers = []Trigger{
	{"action.curl", CategoryAction, regexp.MustCompile(`(?i)\bcurl\b`)},
	{"action.openclaw", CategoryAction, regexp.MustCompile(`(?i)\bopenclaw\b`)},
	{"action.env", CategoryAction, regexp.MustCompile(`(?i)\benv\b.*\bexport\b|\bexport\b.*\benv\b`)},
	{"action.header", CategoryAction, regexp.MustCompile(`(?i)\bheader\b|-H\s+`)},
	{"action.ssh", CategoryAction, regexp.MustCompile(`(?i)\bssh\b`)},
	{"action.gateway", CategoryAction, regexp.MustCompile(`(?i)gateway\s+status`)},
	{"action.doctor", CategoryAction, regexp.MustCompile(`(?i)\bdoctor\b`)},
}

var allTriggers = slices.Concat(errorTriggers, permissionTriggers, actionTriggers)

// ErrorTriggers returns the error-category triggers in their fixed order.
func ErrorTriggers() []Trigger {
	return errorTriggers
}

// Triggers returns every trigger: errors, then permissions, then actions.
func Triggers() []Trigger {
	return allTriggers
}

// TriggerHit records one trigger matching one message.
type TriggerHit struct {
	TriggerID    string          `json:"triggerId"`
	Category     TriggerCategory `json:"category"`
	MessageIndex int             `json:"messageIndex"`
}

// MatchTriggers returns every trigger whose pattern matches text, in trigger order.
func MatchTriggers(text string) []Trigger {
	return match(allTriggers, text)
}

// MatchErrorTriggers returns the ids of the error triggers matching text.
func MatchErrorTriggers(text string) []string {
	var ids []string
	for _, t := range match(errorTriggers, text) {
		ids = append(ids, t.ID)
	}
	return ids
}

// HasErrorTrigger reports whether any error trigger matches text.
func HasErrorTrigger(text string) bool {
	for _, t := range errorTriggers {
		if t.Pattern.MatchString(text) {
			return true
		}
	}
	return false
}

func match(triggers []Trigger, text string) []Trigger {
	var out []Trigger
	for _, t := range triggers {
		if t.Pattern.MatchString(text) {
			out = append(out, t)
		}
	}
	return out
}
