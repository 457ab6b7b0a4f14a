package parse

import "strings"

// Segment folds the lines of one input into message records.
//
// A line matching a timestamp grammar opens a record; any other non-blank
// line is appended to the current record's message. Continuation lines seen
// before the first boundary become orphan records with empty metadata.
// boundaries reports how many lines matched a grammar.
func Segment(origin string, lines []string) (records []Record, boundaries int) {
	for i, raw := range lines {
		line := NormalizeLine(raw)
		if strings.TrimSpace(line) == "" {
			continue
		}

		if b, ok := matchBoundary(line); ok {
			sender, body := splitSender(b.Rest)
			records = append(records, Record{
				Date:       b.Date,
				Time:       b.Time,
				Sender:     sender,
				Message:    body,
				SourceFile: origin,
				LineNumber: i + 1,
			})
			boundaries++
			continue
		}

		if len(records) == 0 {
			records = append(records, Record{
				Message:    line,
				SourceFile: origin,
				LineNumber: i + 1,
			})
			continue
		}

		last := &records[len(records)-1]
		last.Message += "\n" + line
	}
	return records, boundaries
}
