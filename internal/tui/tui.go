package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/search"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const debounceDelay = 200 * time.Millisecond

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// resultsMsg carries the outcome of one filter pass. sender and query
// identify the criteria it was computed for.
type resultsMsg struct {
	sender  string
	query   string
	results []search.Result
}

type debounceTickMsg struct {
	query string
}

type copiedMsg struct {
	sender string
	err    error
}

type model struct {
	records []parse.Record
	title   string
	filter  search.Options

	// senders in order of first appearance; senderIndex maps back into it
	senders     []string
	senderIndex map[string]int

	query      string
	results    []search.Result
	cursor     int
	listOffset int

	keyword    textinput.Model
	transcript viewport.Model
	shownIdx   int // record index in the transcript pane, -1 for none

	flash     string
	flashFail bool

	width, height int
	ready         bool
	quitting      bool
}

func initialModel(records []parse.Record, title string, filter search.Options) model {
	ti := textinput.New()
	ti.Placeholder = "keyword in message or sender"
	ti.Prompt = "/ "
	ti.PromptStyle = styleKeyword
	ti.TextStyle = styleKeyword
	ti.CharLimit = 256
	ti.SetValue(filter.Keyword)
	ti.Focus()

	if filter.Sender == search.AllSenders {
		filter.Sender = ""
	}

	m := model{
		records:     records,
		title:       title,
		filter:      filter,
		senderIndex: make(map[string]int),
		query:       filter.Keyword,
		keyword:     ti,
		transcript:  viewport.New(0, 0),
		shownIdx:    -1,
	}
	for _, r := range records {
		if _, seen := m.senderIndex[r.Sender]; seen || r.Sender == "" {
			continue
		}
		m.senderIndex[r.Sender] = len(m.senders)
		m.senders = append(m.senders, r.Sender)
	}
	return m
}

// Run opens the browser and blocks until the user quits. Typing narrows
// the list by keyword on top of the other criteria in filter.
func Run(records []parse.Record, title string, filter search.Options) error {
	p := tea.NewProgram(initialModel(records, title, filter), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.doSearch(m.query))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		lay := m.layout()
		m.transcript = newViewport(lay.transcriptW, lay.panelH)
		m.shownIdx = -1
		return m, m.loadCurrentPreview()

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case debounceTickMsg:
		if msg.query != m.query {
			return m, nil
		}
		return m, m.doSearch(msg.query)

	case resultsMsg:
		if msg.query != m.query || msg.sender != m.filter.Sender {
			return m, nil
		}
		m.results = msg.results
		m.cursor, m.listOffset = 0, 0
		if len(m.results) == 0 {
			m.transcript.SetContent("")
			m.shownIdx = -1
			return m, nil
		}
		return m, m.loadCurrentPreview()

	case previewRenderedMsg:
		if r, ok := m.selected(); !ok || r.Index != msg.index || msg.index == m.shownIdx {
			return m, nil
		}
		m.transcript.SetContent(msg.content)
		if msg.hitLine > 0 {
			m.transcript.SetYOffset(msg.hitLine)
		} else {
			m.transcript.GotoTop()
		}
		m.shownIdx = msg.index
		return m, nil

	case copiedMsg:
		m.flashFail = msg.err != nil
		if msg.err != nil {
			m.flash = "copy failed: " + msg.err.Error()
		} else {
			m.flash = "copied message from " + msg.sender
		}
		return m, nil
	}

	return m, nil
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	half := m.layout().panelH / 2

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Copy):
		if r, ok := m.selected(); ok {
			return m, copyCmd(r.Record)
		}
		return m, nil
	case key.Matches(msg, keys.Up):
		return m.moveCursor(m.cursor - 1)
	case key.Matches(msg, keys.Down):
		return m.moveCursor(m.cursor + 1)
	case key.Matches(msg, keys.First):
		return m.moveCursor(0)
	case key.Matches(msg, keys.Last):
		return m.moveCursor(len(m.results) - 1)
	case key.Matches(msg, keys.NextSender):
		return m.cycleSender(1)
	case key.Matches(msg, keys.PrevSender):
		return m.cycleSender(-1)
	case key.Matches(msg, keys.HalfUp):
		m.transcript.LineUp(half)
		return m, nil
	case key.Matches(msg, keys.HalfDown):
		m.transcript.LineDown(half)
		return m, nil
	case key.Matches(msg, keys.PageUp):
		m.transcript.LineUp(2 * half)
		return m, nil
	case key.Matches(msg, keys.PageDown):
		m.transcript.LineDown(2 * half)
		return m, nil
	}

	var cmd tea.Cmd
	m.keyword, cmd = m.keyword.Update(msg)
	if q := m.keyword.Value(); q != m.query {
		m.query = q
		m.flash = ""
		return m, tea.Batch(cmd, m.scheduleDebouncedSearch(q))
	}
	return m, cmd
}

func (m model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.ready || len(m.results) == 0 {
		return m, nil
	}

	region, item := m.hitTest(msg.X, msg.Y)
	wheel := msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown

	switch region {
	case regionList:
		switch {
		case msg.Button == tea.MouseButtonWheelUp:
			if m.listOffset > 0 {
				m.listOffset--
			}
		case msg.Button == tea.MouseButtonWheelDown:
			last := len(m.results) - m.layout().panelH/linesPerItem
			if m.listOffset < last {
				m.listOffset++
			}
		case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			if item < len(m.results) {
				return m.moveCursor(item)
			}
		}
	case regionTranscript:
		if wheel {
			var cmd tea.Cmd
			m.transcript, cmd = m.transcript.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// cycleSender steps the sender focus through "all" and each sender in
// order of first appearance, then refilters.
func (m model) cycleSender(step int) (tea.Model, tea.Cmd) {
	if len(m.senders) == 0 {
		return m, nil
	}
	// position 0 is "all", position i+1 is m.senders[i]
	pos := 0
	if i, ok := m.senderIndex[m.filter.Sender]; ok {
		pos = i + 1
	}
	n := len(m.senders) + 1
	pos = ((pos+step)%n + n) % n

	if pos == 0 {
		m.filter.Sender = ""
	} else {
		m.filter.Sender = m.senders[pos-1]
	}
	m.flash = ""
	return m, m.doSearch(m.query)
}

func (m model) moveCursor(to int) (tea.Model, tea.Cmd) {
	to = min(to, len(m.results)-1)
	to = max(to, 0)
	if len(m.results) == 0 || to == m.cursor {
		return m, nil
	}
	m.cursor = to
	m.flash = ""
	m.adjustListScroll(m.layout().panelH)
	return m, m.loadCurrentPreview()
}

func (m model) selected() (search.Result, bool) {
	if m.cursor >= len(m.results) {
		return search.Result{}, false
	}
	return m.results[m.cursor], true
}

func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	lay := m.layout()
	list := styleListFrame.
		Width(lay.listW).
		Height(lay.panelH).
		Render(m.renderList(lay.listW, lay.panelH))

	m.transcript.Width = lay.transcriptW
	m.transcript.Height = lay.panelH
	transcript := styleTranscriptFrame.
		Width(lay.transcriptW).
		Height(lay.panelH).
		Render(m.transcript.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		m.keyword.View(),
		lipgloss.JoinHorizontal(lipgloss.Top, list, transcript),
		m.statusBar(),
	)
}

// layout holds panel content sizes. The list takes 40% of the width, the
// transcript the rest; each panel loses 4 columns to border and padding.
type layout struct {
	listW, transcriptW, panelH int
}

// chromeRows are the terminal rows not available to panel content.
const chromeRows = 6

func (m model) layout() layout {
	if m.width <= 0 || m.height <= 0 {
		return layout{listW: 40, transcriptW: 60, panelH: 20}
	}
	return layout{
		listW:       max(m.width*40/100-4, 20),
		transcriptW: max(m.width*60/100-4, 20),
		panelH:      max(m.height-chromeRows, 5),
	}
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionTranscript
)

// hitTest maps a terminal cell to a panel and, inside the list, to the
// result index under it.
func (m model) hitTest(x, y int) (mouseRegion, int) {
	lay := m.layout()
	top := 2 // keyword row, then the top border
	if y < top || y >= top+lay.panelH {
		return regionNone, -1
	}

	switch {
	case x >= 1 && x <= lay.listW:
		return regionList, m.listOffset + (y-top)/linesPerItem
	case x > lay.listW+2:
		return regionTranscript, -1
	}
	return regionNone, -1
}

func (m model) statusBar() string {
	who := "all senders"
	if m.filter.Sender != "" {
		who = m.filter.Sender
	}
	parts := []string{
		styleChatTitle.Render(m.title),
		who,
		fmt.Sprintf("%d/%d messages", len(m.results), len(m.records)),
	}
	for _, b := range []key.Binding{keys.NextSender, keys.Copy, keys.Quit} {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}

	bar := styleStatus.Render(strings.Join(parts, " | "))
	switch {
	case m.flash == "":
	case m.flashFail:
		bar += styleCopyFailed.Render(m.flash)
	default:
		bar += styleCopied.Render(m.flash)
	}
	return bar
}

func (m model) doSearch(query string) tea.Cmd {
	records := m.records
	opts := m.filter
	opts.Keyword = query
	return func() tea.Msg {
		return resultsMsg{sender: opts.Sender, query: query, results: search.Search(records, opts, 0)}
	}
}

func (m model) scheduleDebouncedSearch(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

func (m model) loadCurrentPreview() tea.Cmd {
	r, ok := m.selected()
	if !ok || r.Index == m.shownIdx {
		return nil
	}
	return loadPreviewCmd(m.records, r.Index, m.title, m.query, m.layout().transcriptW)
}

func copyCmd(r parse.Record) tea.Cmd {
	return func() tea.Msg {
		sender := r.Sender
		if sender == "" {
			sender = "system"
		}
		return copiedMsg{sender: sender, err: writeClipboard(r.Message)}
	}
}
