package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"github.com/kiddolearn/kiddo-player/internal/log"
	kb "github.com/kiddolearn/kiddo-player/internal/ui/tui/keybindings"
	"github.com/kiddolearn/kiddo-player/internal/ui/tui/styles"
	"github.com/kiddolearn/kiddo-player/internal/ui/tui/util"
)

// Lesson is one video in the play queue
type Lesson struct {
	Source   string
	Title    string
	Poster   string
	Progress int // Furthest reported progress in percent
}

// DisplayTitle returns the title, or the source if there isn't one
func (l Lesson) DisplayTitle() string {
	if l.Title != "" {
		return l.Title
	}
	return l.Source
}

// QueueModel lists the lessons and lets the user pick one, with fuzzy search over titles and sources
type QueueModel struct {
	width, height  int
	lessons        []Lesson
	filtered       []int // Indexes into lessons
	current        int   // Lesson currently playing
	cursor         int
	searchInput    textinput.Model
	searchMode     bool
	viewportOffset int
}

// NewQueueModel creates a queue over lessons.  The slice is shared with the player so progress shows up here.
func NewQueueModel(lessons []Lesson) *QueueModel {
	input := textinput.New()
	input.Placeholder = "Filter lessons..."
	input.Width = 30

	return &QueueModel{
		lessons:     lessons,
		filtered:    lo.Range(len(lessons)),
		searchInput: input,
	}
}

func (m *QueueModel) ViewType() View {
	return ViewQueue
}

// Init initializes the model
func (m *QueueModel) Init() tea.Cmd {
	return nil
}

// Open prepares the queue for display with the cursor on the playing lesson
func (m *QueueModel) Open(current int, search bool) tea.Cmd {
	m.current = current
	m.searchInput.SetValue("")
	m.applyFilter()
	m.cursor = max(lo.IndexOf(m.filtered, current), 0)
	m.ensureCursorVisible()

	m.searchMode = search
	if search {
		return m.searchInput.Focus()
	}
	m.searchInput.Blur()
	return nil
}

// Searching reports whether key presses currently go to the search input
func (m *QueueModel) Searching() bool {
	return m.searchMode
}

// SelectedIndex returns the lesson index under the cursor, or -1 if nothing matches the filter
func (m *QueueModel) SelectedIndex() int {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return -1
	}
	return m.filtered[m.cursor]
}

// Update updates the model based on messages
func (m *QueueModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searchMode {
			return m, m.handleSearchModeKeyMsg(msg)
		}
		return m, m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *QueueModel) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch kb.GetActionByKey(msg, kb.ContextQueue) {
	case kb.ActionSelectLesson:
		index := m.SelectedIndex()
		if index < 0 {
			return Handled("queue:empty_selection")
		}
		return func() tea.Msg {
			return LessonSelectedMsg{Index: index}
		}
	case kb.ActionEnableSearch:
		m.searchMode = true
		return m.searchInput.Focus()
	case kb.ActionMoveDown:
		m.moveCursor(1)
		return Handled("cursor_move:down")
	case kb.ActionMoveUp:
		m.moveCursor(-1)
		return Handled("cursor_move:up")
	case kb.ActionPageDown:
		m.moveCursor(m.pageSize())
		return Handled("cursor_move:pgdown")
	case kb.ActionPageUp:
		m.moveCursor(-m.pageSize())
		return Handled("cursor_move:pgup")
	case kb.ActionMoveTop:
		m.moveCursor(-len(m.filtered))
		return Handled("cursor_move:top")
	case kb.ActionMoveBottom:
		m.moveCursor(len(m.filtered))
		return Handled("cursor_move:bottom")
	}
	return nil
}

func (m *QueueModel) handleSearchModeKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch kb.GetActionByKey(msg, kb.ContextSearchMode) {
	case kb.ActionBack:
		// Cancels search, clearing the filter
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.applyFilter()
		return Handled("search:exit")
	case kb.ActionSearchComplete:
		m.searchMode = false
		m.searchInput.Blur()
		m.applyFilter()
		return Handled("search:apply")
	}

	// Let the text input model handle other keys
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Apply filters as we type
	m.applyFilter()
	return cmd
}

// applyFilter filters lessons based on search input
func (m *QueueModel) applyFilter() {
	query := m.searchInput.Value()
	all := lo.Range(len(m.lessons))
	if query == "" {
		m.filtered = all
	} else {
		m.filtered = lo.Filter(all, func(i int, _ int) bool {
			l := m.lessons[i]
			return fuzzy.MatchFold(query, l.Title) || fuzzy.MatchFold(query, l.Source)
		})
		log.Trace("Filtered lessons", "query", query, "matches", len(m.filtered))
	}
	m.ensureCursorVisible()
}

func (m *QueueModel) moveCursor(delta int) {
	m.cursor += delta
	m.ensureCursorVisible()
}

func (m *QueueModel) pageSize() int {
	return max(m.listHeight()-1, 1)
}

func (m *QueueModel) listHeight() int {
	return max(m.height-10, 1) // Header, footer and margins
}

// ensureCursorVisible clamps the cursor and adjusts the viewport offset to keep it visible
func (m *QueueModel) ensureCursorVisible() {
	if len(m.filtered) == 0 {
		m.cursor = 0
		m.viewportOffset = 0
		return
	}
	m.cursor = lo.Clamp(m.cursor, 0, len(m.filtered)-1)

	visible := min(len(m.filtered), m.listHeight())
	if m.cursor < m.viewportOffset {
		m.viewportOffset = m.cursor
	}
	if m.cursor >= m.viewportOffset+visible {
		m.viewportOffset = m.cursor - visible + 1
	}
	m.viewportOffset = lo.Clamp(m.viewportOffset, 0, max(0, len(m.filtered)-visible))
}

// View renders the lesson queue
func (m *QueueModel) View() string {
	header := styles.Header(m.width, fmt.Sprintf("Lessons (%d)", len(m.lessons)))
	content := m.renderList()

	if m.searchMode || m.searchInput.Value() != "" {
		searchPrompt := styles.Title.Render("Search: ") + m.searchInput.View()
		content = lipgloss.JoinVertical(lipgloss.Left, searchPrompt, content)
	}

	footer := styles.Status.Render(" ↑/↓: Navigate • Enter: Play • /: Search • Esc: Close ")
	return fmt.Sprintf("%s\n\n%s\n\n%s", header, content, footer)
}

func (m *QueueModel) renderList() string {
	if len(m.filtered) == 0 {
		if m.searchInput.Value() != "" {
			return styles.CenteredText(m.width, "No lessons match your filter")
		}
		return styles.CenteredText(m.width, "No lessons queued")
	}

	rowWidth := max(m.width-8, 20)
	titleWidth := max(rowWidth-14, 6)
	selectedStyle := styles.Selected.Width(rowWidth).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Width(rowWidth).Padding(0, 1)

	start := m.viewportOffset
	end := min(start+m.listHeight(), len(m.filtered))

	var b strings.Builder
	for pos := start; pos < end; pos++ {
		i := m.filtered[pos]
		marker := "  "
		if i == m.current {
			marker = "▶ "
		}
		row := fmt.Sprintf("%s%3d. %s %4d%%", marker, i+1, util.PadRight(m.lessons[i].DisplayTitle(), titleWidth), m.lessons[i].Progress)

		if pos == m.cursor {
			b.WriteString(selectedStyle.Render(row))
		} else {
			b.WriteString(normalStyle.Render(row))
		}
		b.WriteString("\n")
	}

	if len(m.filtered) > end-start {
		b.WriteString(styles.CenteredText(rowWidth, fmt.Sprintf("Showing %d-%d of %d", start+1, end, len(m.filtered))))
	}

	return styles.ContentBox(m.width-2, b.String(), 1)
}
