package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/search"
	"github.com/mattn/go-runewidth"
)

const (
	colorReset   = "\033[0m"
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

// senderPalette is assigned to senders in order of first appearance.
var senderPalette = []string{
	"\033[1;34m", // bold blue
	"\033[1;32m", // bold green
	"\033[1;36m", // bold cyan
	"\033[1;35m", // bold magenta
	"\033[1;33m", // bold yellow
}

type Options struct {
	Hit     int    // index of the highlighted record, -1 for none
	Context int    // records before/after hit to show; 0 = 10, <0 = all
	Width   int    // wrap width (0 = no wrap)
	Keyword string // highlighted case-insensitively
	Title   string
}

// highlightKeyword wraps case-insensitive matches of keyword in bold red ANSI codes.
func highlightKeyword(text, keyword string) string {
	kw := []rune(keyword)
	if len(kw) == 0 {
		return text
	}

	runes := []rune(text)
	var b strings.Builder
	i := 0
	for {
		idx := search.IndexFold(runes[i:], kw)
		if idx < 0 {
			break
		}
		pos := i + idx
		b.WriteString(string(runes[i:pos]))
		b.WriteString(colorBoldRed)
		b.WriteString(string(runes[pos : pos+len(kw)]))
		b.WriteString(colorReset)
		i = pos + len(kw)
	}
	b.WriteString(string(runes[i:]))
	return b.String()
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// senderColors maps each sender to a palette entry by first appearance.
func senderColors(records []parse.Record) map[string]string {
	colors := make(map[string]string)
	for _, r := range records {
		if r.Sender == "" {
			continue
		}
		if _, ok := colors[r.Sender]; !ok {
			colors[r.Sender] = senderPalette[len(colors)%len(senderPalette)]
		}
	}
	return colors
}

func stamp(r parse.Record) string {
	switch {
	case r.Date != "" && r.Time != "":
		return r.Date + " " + r.Time
	case r.Date != "":
		return r.Date
	default:
		return r.Time
	}
}

// Transcript renders records as a terminal conversation and returns the
// content plus the 0-based line of the hit record header (-1 if no hit).
func Transcript(records []parse.Record, opts Options) (string, int) {
	if opts.Context == 0 {
		opts.Context = 10
	}
	if len(records) == 0 {
		return "(no messages)", -1
	}

	start, end := 0, len(records)
	if opts.Hit >= 0 && opts.Hit < len(records) && opts.Context > 0 {
		start = opts.Hit - opts.Context
		if start < 0 {
			start = 0
		}
		end = opts.Hit + opts.Context + 1
		if end > len(records) {
			end = len(records)
		}
	}

	colors := senderColors(records)

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	separator := colorDim + strings.Repeat("-", 50) + colorReset

	// helper to track line count; wraps long lines if Width is set
	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	title := opts.Title
	if title == "" {
		title = "chat"
	}
	writeLine(fmt.Sprintf("%s--- %s (%d messages) ---%s", colorDim, title, len(records), colorReset))

	if start > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages before) ...%s", colorDim, start, colorReset))
	}

	for i := start; i < end; i++ {
		r := records[i]
		isHit := i == opts.Hit

		if i > start {
			writeLine(separator)
		}
		if isHit {
			hitLine = lineCount
		}

		label := r.Sender
		color, ok := colors[r.Sender]
		if !ok {
			label = "SYSTEM"
			color = colorDim
		}

		if isHit {
			writeLine(fmt.Sprintf("%s>> %s > %s <<%s", colorHit, label, stamp(r), colorReset))
		} else {
			writeLine(fmt.Sprintf("%s%s >%s %s%s%s", color, label, colorReset, colorDim, stamp(r), colorReset))
		}

		text := highlightKeyword(r.Message, opts.Keyword)
		for _, tl := range strings.Split(indentLines(text, "  "), "\n") {
			writeLine(tl)
		}
		if r.MediaFiles != "" {
			writeLine(fmt.Sprintf("  %s[media: %s]%s", colorDim, r.MediaFiles, colorReset))
		}
		writeLine("")
	}

	if after := len(records) - end; after > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages after) ...%s", colorDim, after, colorReset))
	}

	return b.String(), hitLine
}
