package parse

import (
	"strings"
	"unicode"
)

// invisibleMarks are dropped from every line: BOM, zero-width characters and
// the bidirectional controls chat exporters sprinkle around names and times.
var invisibleMarks = strings.NewReplacer(
	"\ufeff", "",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\u200e", "",
	"\u200f", "",
	"\u202a", "",
	"\u202b", "",
	"\u202c", "",
	"\u202d", "",
	"\u202e", "",
	"\u2066", "",
	"\u2067", "",
	"\u2068", "",
	"\u2069", "",
	"\u061c", "",
	"\u202f", " ", // narrow no-break space, used before AM/PM
)

// NormalizeLine cleans one line. Leading whitespace is kept because
// continuation indentation is message content.
func NormalizeLine(line string) string {
	line = invisibleMarks.Replace(line)
	return strings.TrimRightFunc(line, unicode.IsSpace)
}

// SplitLines unifies CRLF and lone CR terminators and splits on LF.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
