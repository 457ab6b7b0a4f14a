package render

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/chatx/internal/stats"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

var (
	styleHeading = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	styleLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(18)

	styleValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleBar = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

const maxBarWidth = 30

// Summary renders statistics as a boxed terminal report. Histograms keep
// their first-seen key order.
func Summary(title string, s stats.Summary) string {
	var rows []string
	rows = append(rows, styleHeading.Render(title))

	field := func(label, value string) {
		rows = append(rows, styleLabel.Render(label)+styleValue.Render(value))
	}
	field("Messages", humanize.Comma(int64(s.TotalMessages)))
	field("Senders", humanize.Comma(int64(s.UniqueSenders)))
	field("Words", humanize.Comma(int64(s.TotalWords)))
	field("Characters", humanize.Comma(int64(s.TotalCharacters)))
	field("Avg length", humanize.Comma(int64(s.AvgMessageLength)))
	field("Media", humanize.Comma(int64(s.TotalMedia)))
	if s.DateRange.Start != "" {
		field("Date range", s.DateRange.Start+" .. "+s.DateRange.End)
	}
	field("Most active", orDash(s.MostActiveSender))
	field("Busiest day", orDash(s.MostActiveDay))
	field("Busiest hour", orDash(s.MostActiveHour))

	for _, h := range []struct {
		title  string
		counts *stats.Counts
	}{
		{"By sender", s.MessagesBySender},
		{"By weekday", s.MessagesByDay},
		{"By hour", s.MessagesByHour},
	} {
		if h.counts.Len() == 0 {
			continue
		}
		rows = append(rows, "", styleHeading.Render(h.title))
		rows = append(rows, histogram(h.counts)...)
	}

	return styleBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func histogram(c *stats.Counts) []string {
	peak := c.Get(c.Max())
	labelW := 0
	for _, k := range c.Keys() {
		if w := runewidth.StringWidth(k); w > labelW {
			labelW = w
		}
	}
	if labelW > 20 {
		labelW = 20
	}

	var lines []string
	for _, k := range c.Keys() {
		n := c.Get(k)
		bar := 0
		if peak > 0 {
			bar = n * maxBarWidth / peak
		}
		if bar == 0 && n > 0 {
			bar = 1
		}
		label := runewidth.FillRight(runewidth.Truncate(k, labelW, ""), labelW)
		lines = append(lines, fmt.Sprintf("%s %s %s", label, styleBar.Render(strings.Repeat("#", bar)), humanize.Comma(int64(n))))
	}
	return lines
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
