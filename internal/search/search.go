package search

import (
	"strings"
	"unicode"

	"github.com/Zuo-Peng/chatx/internal/parse"
)

// AllSenders disables the sender filter.
const AllSenders = "all"

type Options struct {
	Sender   string // "" or "all" = every sender, otherwise exact match
	DateFrom string // "" = no lower bound, inclusive YYYY-MM-DD
	DateTo   string // "" = no upper bound, inclusive YYYY-MM-DD
	Keyword  string // case-insensitive substring of message or sender
}

// Active reports whether any criterion is set.
func (o Options) Active() bool {
	return o.senderActive() || o.DateFrom != "" || o.DateTo != "" || o.Keyword != ""
}

func (o Options) senderActive() bool {
	return o.Sender != "" && o.Sender != AllSenders
}

// Match reports whether r satisfies every criterion in o.
func (o Options) Match(r parse.Record) bool {
	if o.senderActive() && r.Sender != o.Sender {
		return false
	}
	// canonical dates are zero-padded, so string order is date order
	if o.DateFrom != "" && r.Date < o.DateFrom {
		return false
	}
	if o.DateTo != "" && r.Date > o.DateTo {
		return false
	}
	if o.Keyword != "" {
		kw := strings.ToLower(o.Keyword)
		if !strings.Contains(strings.ToLower(r.Message), kw) &&
			!strings.Contains(strings.ToLower(r.Sender), kw) {
			return false
		}
	}
	return true
}

// Filter returns the records matching opts in their original order.
// The input slice is never modified.
func Filter(records []parse.Record, opts Options) []parse.Record {
	out := make([]parse.Record, 0, len(records))
	for _, r := range records {
		if opts.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Result is one filtered record with its position in the full set.
type Result struct {
	Index   int
	Record  parse.Record
	Snippet string
}

// Search filters records and attaches a snippet around the keyword.
// limit <= 0 means no limit.
func Search(records []parse.Record, opts Options, limit int) []Result {
	var results []Result
	for i, r := range records {
		if !opts.Match(r) {
			continue
		}
		results = append(results, Result{
			Index:   i,
			Record:  r,
			Snippet: makeSnippet(r.Message, opts.Keyword, 30),
		})
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results
}

// IndexFold returns the rune offset of the first case-insensitive match
// of sub in s, or -1. Runes are compared after unicode.ToLower, the same
// mapping strings.ToLower applies, so it agrees with Match.
func IndexFold(s, sub []rune) int {
	if len(sub) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(sub) <= len(s); i++ {
		for j, r := range sub {
			if unicode.ToLower(s[i+j]) != unicode.ToLower(r) {
				continue outer
			}
		}
		return i
	}
	return -1
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	runes := []rune(strings.ReplaceAll(text, "\n", " "))
	qRunes := []rune(query)
	pos := -1
	if len(qRunes) > 0 {
		pos = IndexFold(runes, qRunes)
	}
	if pos < 0 {
		if len(runes) > contextChars*2 {
			return string(runes[:contextChars*2]) + "..."
		}
		return string(runes)
	}

	start := max(pos-contextChars, 0)
	end := min(pos+len(qRunes)+contextChars, len(runes))
	prefix, suffix := "", ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	// wrap the matched part with markers
	return prefix + string(runes[start:pos]) +
		">>>" + string(runes[pos:pos+len(qRunes)]) + "<<<" +
		string(runes[pos+len(qRunes):end]) + suffix
}
