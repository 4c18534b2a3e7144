package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kiddolearn/kiddo-player/internal/log"
	"github.com/kiddolearn/kiddo-player/internal/playback"
	"github.com/kiddolearn/kiddo-player/internal/ui/tui/components"
	kb "github.com/kiddolearn/kiddo-player/internal/ui/tui/keybindings"
	"github.com/kiddolearn/kiddo-player/internal/ui/tui/styles"
	"github.com/kiddolearn/kiddo-player/internal/ui/tui/util"
)

var errNoLessons = errors.New("no lessons to play")

// PlayerModel hosts the playback controller for the current lesson and renders its loading, error and progress state
type PlayerModel struct {
	width, height int
	controller    *playback.Controller
	media         playback.Media
	lessons       []Lesson
	current       int
	percent       int
	mountErr      error
	loading       *LoadingModel
	progress      progress.Model
}

// NewPlayerModel creates a player for the given lessons.  The controller is mounted on Init.
func NewPlayerModel(controller *playback.Controller, media playback.Media, lessons []Lesson) *PlayerModel {
	return &PlayerModel{
		controller: controller,
		media:      media,
		lessons:    lessons,
		loading:    NewLoadingModel("Loading video..."),
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (m *PlayerModel) ViewType() View {
	return ViewPlayer
}

// Init mounts the controller on the first lesson and starts pumping its events
func (m *PlayerModel) Init() tea.Cmd {
	if len(m.lessons) == 0 {
		m.mountErr = errNoLessons
		return nil
	}

	if err := m.controller.Mount(m.media, m.props(m.current)); err != nil {
		log.Error("Failed to mount playback controller", "error", err)
		m.mountErr = err
		return nil
	}
	m.loading.WithContextInfo(m.lessons[m.current].DisplayTitle())

	return tea.Batch(m.loading.Init(), waitForPlaybackEvent(m.controller))
}

// Update handles messages
func (m *PlayerModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PlaybackEventMsg:
		m.controller.Handle(msg.Event)
		return m, waitForPlaybackEvent(m.controller)

	case PlaybackClosedMsg:
		log.Debug("Playback controller closed, stopping event pump")
		return m, nil

	case spinner.TickMsg:
		_, cmd := m.loading.Update(msg)
		return m, cmd

	case LessonSelectedMsg:
		return m, m.selectLesson(msg.Index)

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *PlayerModel) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch kb.GetActionByKey(msg, kb.ContextPlayer) {
	case kb.ActionPlay:
		if err := m.controller.Play(); err != nil {
			log.Debug("Play ignored", "error", err)
		}
		return Handled("player:play")
	case kb.ActionRetry:
		if err := m.controller.Retry(); err != nil {
			log.Warn("Retry failed", "error", err)
		}
		m.loading.Restart()
		return Handled("player:retry")
	case kb.ActionNextLesson:
		return m.selectLesson(m.current + 1)
	case kb.ActionPrevLesson:
		return m.selectLesson(m.current - 1)
	case kb.ActionOpenQueue:
		return func() tea.Msg { return OpenQueueMsg{} }
	case kb.ActionEnableSearch:
		return func() tea.Msg { return OpenQueueMsg{Search: true} }
	}
	return nil
}

// selectLesson points the controller at another lesson.  Changing the source rebinds the engine.
func (m *PlayerModel) selectLesson(index int) tea.Cmd {
	if index < 0 || index >= len(m.lessons) {
		return Handled("player:no_lesson")
	}
	if m.mountErr != nil {
		return Handled("player:not_mounted")
	}

	log.Info("Switching lesson", "index", index, "title", m.lessons[index].Title)
	m.current = index
	m.percent = 0
	m.loading.Restart()
	m.loading.WithContextInfo(m.lessons[index].DisplayTitle())

	if err := m.controller.Update(m.props(index)); err != nil {
		log.Error("Failed to switch lesson", "index", index, "error", err)
	}
	return Handled("player:select_lesson")
}

func (m *PlayerModel) props(index int) playback.Props {
	lesson := m.lessons[index]
	return playback.Props{
		Source:      lesson.Source,
		Title:       lesson.Title,
		PosterImage: lesson.Poster,
		OnProgress:  m.reportProgress,
	}
}

// reportProgress is the controller's progress callback.  It runs inside Handle on the update goroutine.
func (m *PlayerModel) reportProgress(percent int) {
	m.percent = percent
	m.lessons[m.current].Progress = percent
	if percent == 100 {
		log.Info("Lesson watched to the end", "title", m.lessons[m.current].Title)
	}
}

// Current returns the index of the lesson being played
func (m *PlayerModel) Current() int {
	return m.current
}

// Resize updates the dimensions
func (m *PlayerModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.loading.Resize(width, max(height-12, 8))
	m.progress.Width = max(min(width-10, 80), 10)
}

// View renders the player screen
func (m *PlayerModel) View() string {
	state := m.controller.State()

	title := "kiddo-player"
	if len(m.lessons) > 0 {
		title = m.lessons[m.current].DisplayTitle()
	}
	header := styles.Header(m.width, util.TruncateString(title, max(m.width-4, 10)))

	var body string
	switch {
	case m.mountErr != nil:
		body = styles.ErrorBox(min(m.width-4, 80), styles.Error.Render("Unable to start playback: "+m.mountErr.Error()))
	case state.HasError():
		content := styles.Error.Render(state.ErrorMessage) + "\n\n" +
			styles.Info.Render(fmt.Sprintf("Press %s to try again", kb.GetActionKey(kb.ActionRetry, kb.ContextBindings[kb.ContextPlayer])))
		body = styles.CenteredText(m.width, styles.ErrorBox(min(m.width-4, 60), content))
	case state.IsLoading:
		body = m.loading.View()
	default:
		body = styles.CenteredText(m.width, lipgloss.JoinVertical(lipgloss.Center,
			styles.Status.Render(statusText(state.Status)),
			"",
			m.progress.ViewAs(float64(m.percent)/100),
			styles.Info.Render(fmt.Sprintf("%d%% watched", m.percent)),
		))
	}

	footer := components.KeyBindingsBar(m.width, components.FromBindings(kb.ContextBindings[kb.ContextPlayer],
		kb.ActionPlay, kb.ActionRetry, kb.ActionNextLesson, kb.ActionPrevLesson, kb.ActionOpenQueue))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		"",
		m.details(state),
		"",
		footer,
	)
}

// details lists the source, type and poster of the current lesson
func (m *PlayerModel) details(state playback.State) string {
	if state.Source == "" {
		return ""
	}

	width := max(m.width-14, 10)
	var b strings.Builder
	fmt.Fprintf(&b, "Lesson  %d of %d\n", m.current+1, len(m.lessons))
	fmt.Fprintf(&b, "Source  %s\n", styles.Url.Render(util.TruncateString(state.Source, width)))
	fmt.Fprintf(&b, "Type    %s", state.MimeType)
	if state.PosterImage != "" {
		fmt.Fprintf(&b, "\nPoster  %s", styles.Url.Render(util.TruncateString(state.PosterImage, width)))
	}
	return styles.Status.Render(b.String())
}

func statusText(status playback.Status) string {
	switch status {
	case playback.StatusReady:
		return "Ready. Press " + kb.GetActionKey(kb.ActionPlay, kb.ContextBindings[kb.ContextPlayer]) + " to play"
	case playback.StatusPlaying:
		return "Playing"
	case playback.StatusInitializing:
		return "Starting player"
	case playback.StatusClosed:
		return "Stopped"
	default:
		return string(status)
	}
}
