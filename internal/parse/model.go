package parse

import "errors"

// ErrUnsupportedFormat is returned when no input yielded a single message.
var ErrUnsupportedFormat = errors.New("unsupported format: no chat messages recognized")

// Record is one reconstructed chat message.
type Record struct {
	Date      string `json:"date" yaml:"date"`
	Time      string `json:"time" yaml:"time"`
	Sender    string `json:"sender" yaml:"sender"`
	Message   string `json:"message" yaml:"message"`
	Datetime  string `json:"datetime" yaml:"datetime"`
	DayOfWeek string `json:"dayOfWeek" yaml:"dayOfWeek"`
	Hour      string `json:"hour" yaml:"hour"`

	MessageLength int    `json:"messageLength" yaml:"messageLength"`
	WordCount     int    `json:"wordCount" yaml:"wordCount"`
	MediaCount    int    `json:"mediaCount" yaml:"mediaCount"`
	MediaFiles    string `json:"mediaFiles" yaml:"mediaFiles"`

	SourceFile string `json:"-" yaml:"-"` // Source.Origin of the input the record came from
	LineNumber int    `json:"-" yaml:"-"` // 1-based line of the boundary (or orphan) line
}

// Source is one decoded input handed over by the ingestion layer.
// Err is set when the input could not be read, extracted or decoded.
type Source struct {
	Name string // display name, reported in FileError
	Path string // full input path; archive entries are "<archive>!<entry>"
	Text string
	Err  error
}

// Origin identifies where the source's text lives, falling back to Name.
func (s Source) Origin() string {
	if s.Path != "" {
		return s.Path
	}
	return s.Name
}

// FileError names an input that produced no records.
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

type ParseResult struct {
	Records        []Record
	FilesProcessed int
	Errors         []FileError
}
