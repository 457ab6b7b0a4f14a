package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	isoDateRe      = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	slashDateRe    = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4}|\d{2})$`)
	clockTimeRe    = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
	meridiemTimeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?\s*([AaPp])\.?\s*[Mm]\.?$`)

	attachedRe = regexp.MustCompile(`<attached:\s*([^>]+?)\s*>`)
	bracketRe  = regexp.MustCompile(`(?i)\[([^\[\]]+\.(?:jpe?g|png|gif|webp|heic|bmp|mp4|mov|avi|mkv|3gp|webm|mp3|m4a|aac|ogg|opus|wav|pdf|docx?|xlsx?|pptx?|txt|csv|zip|vcf))\]`)
)

const (
	datetimeLayout = "2006-01-02T15:04:05"
	mediaSeparator = ", "
)

// CanonicalDate converts M/D/YY[YY] and M-D-YY[YY] to YYYY-MM-DD and
// zero-pads ISO dates. Anything else, including a month outside 1-12 or a
// day outside 1-31, is returned unchanged.
func CanonicalDate(raw string) string {
	s := strings.TrimSpace(raw)
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		if !monthDayInRange(m[2], m[3]) {
			return raw
		}
		return fmt.Sprintf("%s-%s-%s", m[1], pad2(m[2]), pad2(m[3]))
	}
	if m := slashDateRe.FindStringSubmatch(s); m != nil {
		if !monthDayInRange(m[1], m[2]) {
			return raw
		}
		year := m[3]
		if len(year) == 2 {
			yy, _ := strconv.Atoi(year)
			if yy >= 50 {
				year = "19" + year
			} else {
				year = "20" + year
			}
		}
		return fmt.Sprintf("%s-%s-%s", year, pad2(m[1]), pad2(m[2]))
	}
	return raw
}

// CanonicalTime converts 12-hour times to HH:MM:SS and zero-pads 24-hour
// HH:MM[:SS] values. Anything else is returned unchanged.
func CanonicalTime(raw string) string {
	s := strings.TrimSpace(raw)
	if m := clockTimeRe.FindStringSubmatch(s); m != nil {
		if m[3] == "" {
			return pad2(m[1]) + ":" + m[2]
		}
		return pad2(m[1]) + ":" + m[2] + ":" + m[3]
	}
	if m := meridiemTimeRe.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if hour < 1 || hour > 12 {
			return raw
		}
		pm := strings.EqualFold(m[4], "p")
		switch {
		case hour == 12 && !pm:
			hour = 0
		case hour != 12 && pm:
			hour += 12
		}
		sec := m[3]
		if sec == "" {
			sec = "00"
		}
		return fmt.Sprintf("%02d:%s:%s", hour, m[2], sec)
	}
	return raw
}

func monthDayInRange(month, day string) bool {
	mm, _ := strconv.Atoi(month)
	dd, _ := strconv.Atoi(day)
	return mm >= 1 && mm <= 12 && dd >= 1 && dd <= 31
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// combine parses a canonical date and time into a calendar value.
func combine(date, clock string) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, false
	}
	var t time.Time
	switch len(clock) {
	case len("15:04"):
		t, err = time.Parse("15:04", clock)
	case len("15:04:05"):
		t, err = time.Parse("15:04:05", clock)
	default:
		return time.Time{}, false
	}
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), true
}

// ExtractMedia collects "<attached: name>" markers and bracketed file names
// with a known media or document extension. Both patterns are applied.
func ExtractMedia(message string) []string {
	var files []string
	for _, m := range attachedRe.FindAllStringSubmatch(message, -1) {
		files = append(files, m[1])
	}
	for _, m := range bracketRe.FindAllStringSubmatch(message, -1) {
		files = append(files, m[1])
	}
	return files
}

// Enrich canonicalizes the timestamp fields and fills in the derived fields.
func Enrich(r *Record) {
	r.Date = CanonicalDate(r.Date)
	r.Time = CanonicalTime(r.Time)

	r.Datetime, r.DayOfWeek, r.Hour = "", "", ""
	if ts, ok := combine(r.Date, r.Time); ok {
		r.Datetime = ts.Format(datetimeLayout)
		r.DayOfWeek = ts.Weekday().String()
		r.Hour = fmt.Sprintf("%02d:00", ts.Hour())
	}

	r.MessageLength = utf8.RuneCountInString(r.Message)
	r.WordCount = len(strings.Fields(r.Message))

	media := ExtractMedia(r.Message)
	r.MediaCount = len(media)
	r.MediaFiles = strings.Join(media, mediaSeparator)
}
