package tlvc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the normalized output form: UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var (
	// DD.MM.YYYY HH:MM[:SS] [UTC±HH[:MM]]
	telegramTimestampRe = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})\s+(\d{1,2}):(\d{2})(?::(\d{2}))?(?:\s*UTC\s*([+-])(\d{1,2})(?::?(\d{2}))?)?$`)
	isoLikeRe           = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T|\s)`)
	clockRe             = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
)

var (
	isoZonedLayouts = []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04Z07:00",
		"2006-01-02T15:04:05Z0700",
	}
	isoLocalLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}
	dateLayouts = []string{
		"2 January 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"02.01.2006",
		"2.1.2006",
		"2006-01-02",
	}
)

// ParseTimestamp converts raw timestamp text into TimestampLayout. Values
// without an explicit offset are interpreted in loc. Reports false when the
// text is empty, malformed, or carries out-of-range fields.
func ParseTimestamp(raw string, loc *time.Location) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if loc == nil {
		loc = time.UTC
	}

	var t time.Time
	var ok bool
	if isoLikeRe.MatchString(s) {
		t, ok = parseISO(s, loc)
	} else {
		t, ok = parseTelegram(s, loc)
	}
	if !ok {
		return "", false
	}
	return t.UTC().Format(TimestampLayout), true
}

func parseISO(s string, loc *time.Location) (time.Time, bool) {
	s = s[:10] + "T" + s[11:]
	if strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "Z"
	}
	for _, layout := range isoZonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range isoLocalLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseTelegram(s string, loc *time.Location) (time.Time, bool) {
	m := telegramTimestampRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	sec := 0
	if m[6] != "" {
		sec, _ = strconv.Atoi(m[6])
	}

	zone := loc
	if m[7] != "" {
		offH, _ := strconv.Atoi(m[8])
		offM := 0
		if m[9] != "" {
			offM, _ = strconv.Atoi(m[9])
		}
		if offH > 14 || offM > 59 {
			return time.Time{}, false
		}
		offset := offH*3600 + offM*60
		if m[7] == "-" {
			offset = -offset
		}
		zone = time.FixedZone("", offset)
	}

	if hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, zone)
	// time.Date normalizes overflow (31.02 becomes 03.03); reject it.
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

// ReconstructTimestamp combines the rendered time of a message with the text
// of the nearest preceding date separator into the DD.MM.YYYY HH:MM:SS
// UTC±HH:MM form accepted by ParseTimestamp. The offset is the one loc has at
// that wall time. Reports false when either part cannot be read.
func ReconstructTimestamp(dateText, timeText string, loc *time.Location) (string, bool) {
	if loc == nil {
		loc = time.UTC
	}
	date, ok := parseDate(dateText)
	if !ok {
		return "", false
	}
	m := clockRe.FindStringSubmatch(strings.TrimSpace(timeText))
	if m == nil {
		return "", false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	sec := 0
	if m[3] != "" {
		sec, _ = strconv.Atoi(m[3])
	}
	if hour > 23 || minute > 59 || sec > 59 {
		return "", false
	}

	t := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, sec, 0, loc)
	return fmt.Sprintf("%02d.%02d.%04d %02d:%02d:%02d UTC%s",
		t.Day(), int(t.Month()), t.Year(), t.Hour(), t.Minute(), t.Second(), t.Format("-07:00")), true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
