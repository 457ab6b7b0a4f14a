package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("12")  // bright blue
	colorMuted  = lipgloss.Color("240") // gray
	colorCursor = lipgloss.Color("11")  // bright yellow
	colorFrame  = lipgloss.Color("238") // dark gray
	colorOK     = lipgloss.Color("10")  // bright green
	colorFail   = lipgloss.Color("9")   // bright red

	// senderColors cycle by first appearance, like the transcript view.
	senderColors = []lipgloss.Color{"12", "10", "14", "13", "11"}

	styleKeyword = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	styleCursor = lipgloss.NewStyle().Foreground(colorCursor).Bold(true)

	styleSystem = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)

	styleSnippet = lipgloss.NewStyle().Foreground(colorMuted)

	styleListFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorFrame)

	styleTranscriptFrame = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent)

	styleStatus = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	styleChatTitle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	styleCopied = lipgloss.NewStyle().Foreground(colorOK).Bold(true)

	styleCopyFailed = lipgloss.NewStyle().Foreground(colorFail).Bold(true)
)
