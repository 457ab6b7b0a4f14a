package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2023-07-07", "2023-07-07"},
		{"2023-7-7", "2023-07-07"},
		{"7/7/23", "2023-07-07"},
		{"07/07/2023", "2023-07-07"},
		{"12-31-99", "1999-12-31"},
		{"1/2/50", "1950-01-02"},
		{"1/2/49", "2049-01-02"},
		{"07.07.23", "07.07.23"},
		{"13/45/2023", "13/45/2023"},
		{"0/7/23", "0/7/23"},
		{"7/32/23", "7/32/23"},
		{"2023-13-01", "2023-13-01"},
		{"2/30/2023", "2023-02-30"},
		{"yesterday", "yesterday"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := CanonicalDate(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, CanonicalDate(got), "not idempotent")
		})
	}
}

func TestCanonicalTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"22:00", "22:00"},
		{"9:05", "09:05"},
		{"22:00:20", "22:00:20"},
		{"10:00:20 PM", "22:00:20"},
		{"8:15 am", "08:15:00"},
		{"12:00 AM", "00:00:00"},
		{"12:30 PM", "12:30:00"},
		{"12:30 p.m.", "12:30:00"},
		{"1:05 P.M.", "13:05:00"},
		{"11:59pm", "23:59:00"},
		{"13:00 PM", "13:00 PM"},
		{"noon", "noon"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := CanonicalTime(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, CanonicalTime(got), "not idempotent")
		})
	}
}

func TestEnrichInvalidCalendarValues(t *testing.T) {
	r := Record{Date: "2/30/2023", Time: "10:00 PM", Message: "x"}
	Enrich(&r)
	assert.Equal(t, "2023-02-30", r.Date, "day fits 1-31 so the layout is rewritten")
	assert.Equal(t, "22:00:00", r.Time)
	assert.Empty(t, r.Datetime)
	assert.Empty(t, r.DayOfWeek)
	assert.Empty(t, r.Hour)
}

func TestEnrichEmptyMessage(t *testing.T) {
	for _, msg := range []string{"", "   ", "\n\t"} {
		r := Record{Message: msg}
		Enrich(&r)
		assert.Zero(t, r.WordCount)
	}
	r := Record{}
	Enrich(&r)
	assert.Zero(t, r.MessageLength)
}

func TestEnrichCountsRunes(t *testing.T) {
	r := Record{Message: "héllo 👋"}
	Enrich(&r)
	assert.Equal(t, 7, r.MessageLength)
	assert.Equal(t, 2, r.WordCount)
}

func TestExtractMedia(t *testing.T) {
	msg := "<attached: 00000012-PHOTO-2023-07-07-22-00-20.jpg>\nsee [Report.PDF] and [not media] plus [clip.mp4]"
	files := ExtractMedia(msg)
	assert.Equal(t, []string{
		"00000012-PHOTO-2023-07-07-22-00-20.jpg",
		"Report.PDF",
		"clip.mp4",
	}, files)

	r := Record{Message: msg}
	Enrich(&r)
	assert.Equal(t, 3, r.MediaCount)
	assert.Equal(t, "00000012-PHOTO-2023-07-07-22-00-20.jpg, Report.PDF, clip.mp4", r.MediaFiles)
	assert.Equal(t, msg, r.Message)
}

func TestExtractMediaBothPatterns(t *testing.T) {
	files := ExtractMedia("<attached: [scan.pdf]>")
	assert.Equal(t, []string{"[scan.pdf]", "scan.pdf"}, files)
}

func TestNormalizeLine(t *testing.T) {
	in := "\ufeff  \u200eHello\u202fworld \u200f \t"
	got := NormalizeLine(in)
	assert.Equal(t, "  Hello world", got)
	assert.Equal(t, got, NormalizeLine(got))
}
