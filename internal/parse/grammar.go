package parse

import (
	"regexp"
	"strings"
)

const (
	datePattern = `\d{1,4}[./-]\d{1,2}[./-]\d{1,4}`
	timePattern = `\d{1,2}:\d{2}(?::\d{2})?(?:\s?[AaPp]\.?\s?[Mm]\.?)?`
)

// boundary is the timestamp prefix of a line that opens a new message.
type boundary struct {
	Date string
	Time string
	Rest string // "sender: body" or a bare system text
}

type grammar struct {
	name    string
	re      *regexp.Regexp
	dateIdx int
	timeIdx int
	restIdx int
}

func (g grammar) match(line string) (boundary, bool) {
	m := g.re.FindStringSubmatch(line)
	if m == nil {
		return boundary{}, false
	}
	return boundary{Date: m[g.dateIdx], Time: m[g.timeIdx], Rest: m[g.restIdx]}, true
}

// grammars are evaluated in order; the first match wins.
var grammars = []grammar{
	{
		// [22:00:20, 07/07/2023] Alice: Hello
		name:    "bracket-time-date",
		re:      regexp.MustCompile(`^\[(` + timePattern + `),?\s*(` + datePattern + `)\]\s*(.*)$`),
		timeIdx: 1, dateIdx: 2, restIdx: 3,
	},
	{
		// [2023-07-07, 10:00:20 PM] Alice: Hello
		name:    "bracket-date-time",
		re:      regexp.MustCompile(`^\[(` + datePattern + `),?\s*(` + timePattern + `)\]\s*(.*)$`),
		dateIdx: 1, timeIdx: 2, restIdx: 3,
	},
	{
		// 7/7/23, 10:00 PM - Alice: Hello
		name:    "dash-date-time",
		re:      regexp.MustCompile(`^(` + datePattern + `),?\s+(` + timePattern + `)\s+[-–]\s*(.*)$`),
		dateIdx: 1, timeIdx: 2, restIdx: 3,
	},
}

// matchBoundary returns the first grammar match for line, if any.
func matchBoundary(line string) (boundary, bool) {
	for _, g := range grammars {
		if b, ok := g.match(line); ok {
			return b, true
		}
	}
	return boundary{}, false
}

// splitSender cuts "sender: body" at the first colon. Without a colon the
// whole remainder is the body of a system line.
func splitSender(rest string) (sender, body string) {
	idx := strings.Index(rest, ":")
	if idx < 0 {
		return "", rest
	}
	return rest[:idx], strings.TrimPrefix(rest[idx+1:], " ")
}
