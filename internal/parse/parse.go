package parse

import "fmt"

// ParseText turns one decoded chat export into enriched records, each
// tagged with origin as its SourceFile.
// It returns ErrUnsupportedFormat when no line carried a timestamp.
func ParseText(origin, text string) ([]Record, error) {
	records, boundaries := Segment(origin, SplitLines(text))
	if boundaries == 0 {
		return nil, ErrUnsupportedFormat
	}
	for i := range records {
		Enrich(&records[i])
	}
	return records, nil
}

// ParseSources parses every source in order and concatenates the records.
// Failing sources are reported per file; the call only fails when no
// source produced a record.
func ParseSources(sources []Source) (*ParseResult, error) {
	result := &ParseResult{}

	for _, src := range sources {
		if src.Err != nil {
			result.Errors = append(result.Errors, FileError{File: src.Name, Error: src.Err.Error()})
			continue
		}

		records, err := ParseText(src.Origin(), src.Text)
		if err != nil {
			result.Errors = append(result.Errors, FileError{File: src.Name, Error: err.Error()})
			continue
		}
		result.Records = append(result.Records, records...)
		result.FilesProcessed++
	}

	if len(result.Records) == 0 {
		if len(sources) == 0 {
			return result, fmt.Errorf("no input files: %w", ErrUnsupportedFormat)
		}
		return result, ErrUnsupportedFormat
	}
	return result, nil
}
