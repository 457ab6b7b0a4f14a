package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
	FormatXLSX Format = "xlsx"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a request token to a Format. Unknown tokens fall back to CSV.
func ParseFormat(token string) Format {
	switch f := Format(strings.ToLower(strings.TrimSpace(token))); f {
	case FormatCSV, FormatJSON, FormatHTML, FormatXLSX, FormatYAML:
		return f
	case "xls", "excel":
		return FormatXLSX
	case "yml":
		return FormatYAML
	default:
		return FormatCSV
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/csv; charset=utf-8"
	}
}

func (f Format) Extension() string {
	if f == "" {
		return string(FormatCSV)
	}
	return string(f)
}

// Columns lists every projectable field in record order.
var Columns = []string{
	"date", "time", "sender", "message", "datetime", "dayOfWeek", "hour",
	"messageLength", "wordCount", "mediaCount", "mediaFiles",
}

// ParseColumns splits a comma separated projection, dropping blanks.
// An empty projection selects every column.
func ParseColumns(raw string) []string {
	var cols []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return Columns
	}
	return cols
}

// Field returns the value of the named column. Unknown names yield "".
func Field(r parse.Record, column string) string {
	switch column {
	case "date":
		return r.Date
	case "time":
		return r.Time
	case "sender":
		return r.Sender
	case "message":
		return r.Message
	case "datetime":
		return r.Datetime
	case "dayOfWeek":
		return r.DayOfWeek
	case "hour":
		return r.Hour
	case "messageLength":
		return strconv.Itoa(r.MessageLength)
	case "wordCount":
		return strconv.Itoa(r.WordCount)
	case "mediaCount":
		return strconv.Itoa(r.MediaCount)
	case "mediaFiles":
		return r.MediaFiles
	default:
		return ""
	}
}

type Options struct {
	Format    Format
	Columns   []string // nil = every column
	Delimiter rune     // 0 = ','
	BaseName  string   // suggested file name without extension
}

// Payload is a rendered export ready for delivery.
type Payload struct {
	Body        []byte
	ContentType string
	FileName    string
}

// Render serializes records in the requested format.
func Render(records []parse.Record, opts Options) (*Payload, error) {
	format := ParseFormat(string(opts.Format))
	columns := opts.Columns
	if len(columns) == 0 {
		columns = Columns
	}

	var (
		body []byte
		err  error
	)
	switch format {
	case FormatJSON:
		body, err = renderJSON(records)
	case FormatHTML:
		body = renderHTML(records, columns)
	case FormatXLSX:
		body, err = renderXLSX(records, columns)
	case FormatYAML:
		body, err = yaml.Marshal(records)
	default:
		delim := opts.Delimiter
		if delim == 0 {
			delim = ','
		}
		body = renderDelimited(records, columns, delim)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}

	base := strings.TrimSpace(opts.BaseName)
	if base == "" {
		base = "chat"
	}
	return &Payload{
		Body:        body,
		ContentType: format.ContentType(),
		FileName:    base + "." + format.Extension(),
	}, nil
}

// renderDelimited quotes every value and doubles embedded quotes.
func renderDelimited(records []parse.Record, columns []string, delim rune) []byte {
	var b bytes.Buffer
	writeRow := func(values []string) {
		for i, v := range values {
			if i > 0 {
				b.WriteRune(delim)
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(v, `"`, `""`))
			b.WriteByte('"')
		}
		b.WriteByte('\n')
	}

	writeRow(columns)
	row := make([]string, len(columns))
	for _, r := range records {
		for i, c := range columns {
			row[i] = Field(r, c)
		}
		writeRow(row)
	}
	return b.Bytes()
}

func renderJSON(records []parse.Record) ([]byte, error) {
	if records == nil {
		records = []parse.Record{}
	}
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func renderHTML(records []parse.Record, columns []string) []byte {
	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Chat export</title></head>\n<body>\n<table>\n<thead>\n<tr>")
	for _, c := range columns {
		b.WriteString("<th>")
		b.WriteString(htmlEscaper.Replace(c))
		b.WriteString("</th>")
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, r := range records {
		b.WriteString("<tr>")
		for _, c := range columns {
			b.WriteString("<td>")
			b.WriteString(htmlEscaper.Replace(Field(r, c)))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n</body>\n</html>\n")
	return b.Bytes()
}

const sheetName = "Chat"

func renderXLSX(records []parse.Record, columns []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	for n, r := range records {
		row := make([]interface{}, len(columns))
		for i, c := range columns {
			row[i] = cellValue(r, c)
		}
		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cellValue keeps counters numeric in spreadsheets.
func cellValue(r parse.Record, column string) interface{} {
	switch column {
	case "messageLength":
		return r.MessageLength
	case "wordCount":
		return r.WordCount
	case "mediaCount":
		return r.MediaCount
	default:
		return Field(r, column)
	}
}
