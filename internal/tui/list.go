package tui

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/chatx/internal/search"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// linesPerItem is the number of terminal lines each result occupies.
const linesPerItem = 2

// renderList renders the left panel: filtered messages with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No messages")
		return empty
	}

	var lines []string
	for i, r := range m.results {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		rows := m.formatResultLine(r, width, i == m.cursor)
		lines = append(lines, rows...)
	}

	// Pad remaining lines
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatResultLine formats a single message as two lines:
//
//	line 1: [>] sender  MM-DD HH:MM
//	line 2:    snippet (dimmed)
func (m model) formatResultLine(r search.Result, width int, selected bool) []string {
	sender := r.Record.Sender
	var who string
	if sender == "" {
		who = styleSystem.Render("system")
	} else {
		if runewidth.StringWidth(sender) > width/2 {
			sender = runewidth.Truncate(sender, width/2, "...")
		}
		who = lipgloss.NewStyle().Foreground(m.senderColor(r.Record.Sender)).Render(sender)
	}

	// "2023-07-07" -> "07-07", "22:00:20" -> "22:00"
	date := r.Record.Date
	if len(date) >= 10 {
		date = date[5:10]
	}
	clock := r.Record.Time
	if len(clock) >= 5 {
		clock = clock[:5]
	}

	line1 := fmt.Sprintf("%s %s %s", who, date, clock)
	if selected {
		line1 = styleCursor.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	// Line 2: snippet (dimmed, indented)
	snippet := strings.ReplaceAll(r.Snippet, "\t", " ")
	snippet = strings.ReplaceAll(snippet, ">>>", "")
	snippet = strings.ReplaceAll(snippet, "<<<", "")
	snippetMax := width - 4 // indent
	if snippetMax < 0 {
		snippetMax = 0
	}
	if runewidth.StringWidth(snippet) > snippetMax {
		snippet = runewidth.Truncate(snippet, snippetMax, "")
	}
	line2 := "    " + styleSnippet.Render(snippet)

	return []string{line1, line2}
}

func (m model) senderColor(sender string) lipgloss.Color {
	if i, ok := m.senderIndex[sender]; ok {
		return senderColors[i%len(senderColors)]
	}
	return colorMuted
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
