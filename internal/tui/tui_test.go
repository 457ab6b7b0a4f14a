package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/search"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records() []parse.Record {
	return []parse.Record{
		{Date: "2023-07-07", Time: "22:00:20", Sender: "Alice", Message: "Hello there"},
		{Date: "2023-07-08", Time: "08:15:00", Sender: "Bob", Message: "Hi Alice"},
		{Date: "2023-07-08", Time: "08:16:00", Sender: "Alice", Message: "lunch?"},
	}
}

// step feeds msg to m and returns the updated model with its command.
func step(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func loaded(t *testing.T, filter search.Options) model {
	t.Helper()
	m := initialModel(records(), "chat", filter)
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, cmd := step(t, m, m.doSearch(m.query)())
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())
	return m
}

func TestInitialFilterAndPreview(t *testing.T) {
	m := loaded(t, search.Options{})
	assert.Len(t, m.results, 3)
	assert.Equal(t, 0, m.shownIdx)
	assert.Contains(t, m.View(), "3/3 messages")
}

func TestSenderFilterIsKept(t *testing.T) {
	m := loaded(t, search.Options{Sender: "Alice"})
	require.Len(t, m.results, 2)
	assert.Equal(t, 2, m.results[1].Index)
}

func TestTabCyclesSenderFocus(t *testing.T) {
	m := loaded(t, search.Options{})
	assert.Equal(t, []string{"Alice", "Bob"}, m.senders)

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "Alice", m.filter.Sender)
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())
	assert.Len(t, m.results, 2)
	assert.Contains(t, m.View(), "2/3 messages")

	// results computed for a previous sender are dropped
	m, _ = step(t, m, resultsMsg{sender: "", query: m.query})
	assert.Len(t, m.results, 2)

	m, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "Bob", m.filter.Sender)
	m, _ = step(t, m, cmd())
	require.Len(t, m.results, 1)
	assert.Equal(t, 1, m.results[0].Index)

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Empty(t, m.filter.Sender, "wraps back to all senders")

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "Bob", m.filter.Sender)
}

func TestAllSendersFilterStartsUnfocused(t *testing.T) {
	m := initialModel(records(), "chat", search.Options{Sender: search.AllSenders})
	assert.Empty(t, m.filter.Sender)
}

func TestCursorMovesAndLoadsPreview(t *testing.T) {
	m := loaded(t, search.Options{})

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())
	assert.Equal(t, 1, m.shownIdx)

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 2, m.cursor)
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.cursor, "cursor stops at the last result")
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyHome})
	assert.Equal(t, 0, m.cursor)
	m, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)
	assert.Nil(t, cmd)
}

func TestStaleResultsAreIgnored(t *testing.T) {
	m := loaded(t, search.Options{})
	m.query = "lunch"
	m, _ = step(t, m, resultsMsg{query: "old"})
	assert.Len(t, m.results, 3)

	m, cmd := step(t, m, m.doSearch("lunch")())
	require.Len(t, m.results, 1)
	assert.Equal(t, "Alice", m.results[0].Record.Sender)
	require.NotNil(t, cmd)

	// a preview rendered for a record that is no longer selected is dropped
	m, _ = step(t, m, previewRenderedMsg{index: 1, content: "stale"})
	assert.NotEqual(t, 1, m.shownIdx)
}

func TestTypingSchedulesDebouncedSearch(t *testing.T) {
	m := loaded(t, search.Options{})
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	assert.Equal(t, "b", m.query)
	assert.NotNil(t, cmd)

	m, cmd = step(t, m, debounceTickMsg{query: "stale"})
	assert.Nil(t, cmd)

	_, cmd = step(t, m, debounceTickMsg{query: "b"})
	require.NotNil(t, cmd)
}

func TestEnterCopiesMessage(t *testing.T) {
	orig := writeClipboard
	t.Cleanup(func() { writeClipboard = orig })
	var copied string
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}

	m := loaded(t, search.Options{})
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())
	assert.Equal(t, "Hello there", copied)
	assert.Equal(t, "copied message from Alice", m.flash)
	assert.True(t, strings.Contains(m.View(), "copied message from Alice"))

	writeClipboard = func(string) error { return errors.New("no clipboard") }
	m, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = step(t, m, cmd())
	assert.Equal(t, "copy failed: no clipboard", m.flash)
}

func TestEscQuits(t *testing.T) {
	m := loaded(t, search.Options{})
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}
