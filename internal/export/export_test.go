package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

func sampleRecords() []parse.Record {
	return []parse.Record{
		{
			Date: "2023-07-07", Time: "22:00:20", Sender: "Alice",
			Message: "Hello\n  – love you", Datetime: "2023-07-07T22:00:20",
			DayOfWeek: "Friday", Hour: "22:00", MessageLength: 18, WordCount: 4,
		},
		{
			Date: "2023-07-08", Time: "08:15:00", Sender: `Bob "the builder"`,
			Message: `a, b; "quoted" <b>bold</b> & more`, MediaCount: 1, MediaFiles: "x.jpg",
		},
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatXLSX, ParseFormat("excel"))
	assert.Equal(t, FormatYAML, ParseFormat("yml"))
	assert.Equal(t, FormatCSV, ParseFormat("pdf"))
	assert.Equal(t, FormatCSV, ParseFormat(""))
}

func TestParseColumns(t *testing.T) {
	assert.Equal(t, Columns, ParseColumns(""))
	assert.Equal(t, Columns, ParseColumns(" , "))
	assert.Equal(t, []string{"sender", "message"}, ParseColumns("sender, message,"))
}

func TestRenderCSVQuotesEverything(t *testing.T) {
	p, err := Render(sampleRecords(), Options{Format: FormatCSV, Columns: []string{"sender", "wordCount", "bogus"}, BaseName: "WhatsApp Chat"})
	require.NoError(t, err)

	assert.Equal(t, "text/csv; charset=utf-8", p.ContentType)
	assert.Equal(t, "WhatsApp Chat.csv", p.FileName)
	want := `"sender","wordCount","bogus"` + "\n" +
		`"Alice","4",""` + "\n" +
		`"Bob ""the builder""","0",""` + "\n"
	assert.Equal(t, want, string(p.Body))
}

func TestRenderCSVRoundTrip(t *testing.T) {
	records := sampleRecords()
	for _, delim := range []rune{',', ';', '\t', '|'} {
		p, err := Render(records, Options{Format: FormatCSV, Delimiter: delim})
		require.NoError(t, err)

		r := csv.NewReader(bytes.NewReader(p.Body))
		r.Comma = delim
		rows, err := r.ReadAll()
		require.NoError(t, err, "delimiter %q", delim)
		require.Len(t, rows, len(records)+1)
		assert.Equal(t, Columns, rows[0])
		for i, rec := range records {
			for j, col := range Columns {
				assert.Equal(t, Field(rec, col), rows[i+1][j], "delimiter %q row %d col %s", delim, i, col)
			}
		}
	}
}

func TestRenderUnknownFormatFallsBackToCSV(t *testing.T) {
	p, err := Render(sampleRecords(), Options{Format: "docx"})
	require.NoError(t, err)
	assert.Equal(t, "chat.csv", p.FileName)
	assert.True(t, strings.HasPrefix(string(p.Body), `"date","time"`))
}

func TestRenderJSONIsLossless(t *testing.T) {
	records := sampleRecords()
	p, err := Render(records, Options{Format: FormatJSON, Columns: []string{"sender"}})
	require.NoError(t, err)
	assert.Equal(t, "application/json", p.ContentType)
	assert.Contains(t, string(p.Body), "\n  {\n")
	assert.Contains(t, string(p.Body), "<b>bold</b>")

	var back []parse.Record
	require.NoError(t, json.Unmarshal(p.Body, &back))
	for i := range back {
		back[i].SourceFile = records[i].SourceFile
		back[i].LineNumber = records[i].LineNumber
	}
	assert.Equal(t, records, back)

	p, err = Render(nil, Options{Format: FormatJSON})
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(p.Body))
}

func TestRenderHTMLEscapes(t *testing.T) {
	p, err := Render(sampleRecords(), Options{Format: FormatHTML, Columns: []string{"sender", "message"}, BaseName: "chat"})
	require.NoError(t, err)
	body := string(p.Body)

	assert.Equal(t, "chat.html", p.FileName)
	assert.Contains(t, body, "<th>sender</th><th>message</th>")
	assert.Contains(t, body, "&lt;b&gt;bold&lt;/b&gt; &amp; more")
	assert.NotContains(t, body, "<b>bold</b>")
	assert.Equal(t, 2, strings.Count(body, "<tr><td>"))
}

func TestRenderXLSX(t *testing.T) {
	p, err := Render(sampleRecords(), Options{Format: FormatXLSX, Columns: []string{"sender", "wordCount"}})
	require.NoError(t, err)
	assert.Equal(t, "chat.xlsx", p.FileName)

	f, err := excelize.OpenReader(bytes.NewReader(p.Body))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"sender", "wordCount"},
		{"Alice", "4"},
		{`Bob "the builder"`, "0"},
	}, rows)
}

func TestRenderYAML(t *testing.T) {
	records := sampleRecords()
	p, err := Render(records, Options{Format: FormatYAML})
	require.NoError(t, err)
	assert.Equal(t, "chat.yaml", p.FileName)

	var back []parse.Record
	require.NoError(t, yaml.Unmarshal(p.Body, &back))
	require.Len(t, back, 2)
	assert.Equal(t, records[0].Message, back[0].Message)
	assert.Equal(t, records[1].Sender, back[1].Sender)
}
