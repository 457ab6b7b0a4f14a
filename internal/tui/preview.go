package tui

import (
	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/render"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	index   int
	content string
	hitLine int
}

// loadPreviewCmd returns a tea.Cmd that renders the transcript around a record.
func loadPreviewCmd(records []parse.Record, index int, title, keyword string, width int) tea.Cmd {
	return func() tea.Msg {
		content, hitLine := render.Transcript(records, render.Options{
			Hit:     index,
			Context: previewContext,
			Width:   width,
			Keyword: keyword,
			Title:   title,
		})
		return previewRenderedMsg{
			index:   index,
			content: content,
			hitLine: hitLine,
		}
	}
}

// previewContext bounds the transcript so huge chats stay responsive.
const previewContext = 200

// newViewport sizes the transcript pane. The frame is drawn by View.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelDelta = 3
	return vp
}
