package models

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kiddolearn/kiddo-player/internal/log"
	"github.com/kiddolearn/kiddo-player/internal/playback"
	kb "github.com/kiddolearn/kiddo-player/internal/ui/tui/keybindings"
)

// closer is implemented by media elements that hold resources
type closer interface {
	Close()
}

// AppModel is the main application model that coordinates all child models.  It is the high level wrapper.
type AppModel struct {
	controller    *playback.Controller
	media         playback.Media
	activeView    View  // Track the current active 'main view'
	activeModal   Modal // Track the current active 'modal overlay' if any
	width, height int

	playerModel *PlayerModel
	queueModel  *QueueModel
	helpModel   *HelpModel
}

// NewAppModel creates a new instance of the main application model
func NewAppModel(controller *playback.Controller, media playback.Media, lessons []Lesson) AppModel {
	return AppModel{
		controller:  controller,
		media:       media,
		activeView:  ViewPlayer,
		activeModal: ModalNone,
		playerModel: NewPlayerModel(controller, media, lessons),
		queueModel:  NewQueueModel(lessons),
		helpModel:   NewHelpModel(ViewPlayer),
	}
}

func (m AppModel) Init() tea.Cmd {
	log.Info("Initialising kiddo-player TUI")
	return m.playerModel.Init()
}

// Update handles messages and updates the models as appropriate
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// While searching every printable key belongs to the search input
		if m.activeModal == ModalQueue && m.queueModel.Searching() && msg.Type != tea.KeyCtrlC {
			return m.updateQueueModal(msg)
		}

		switch kb.GetActionByKey(msg, kb.ContextGlobal) {
		case kb.ActionQuit:
			log.Info("Quit command received.  Shutting down...")
			m.shutdown()
			return m, tea.Quit
		case kb.ActionToggleHelp:
			log.Debug("Help requested", "active_view", m.activeView, "active_modal", m.activeModal)
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
			} else {
				m.helpModel.SetContext(m.activeView)
				m.activeModal = ModalHelp
			}
			return m, nil
		case kb.ActionBack:
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		log.Debug("Window size changed", "old_width", m.width, "new_width", msg.Width, "old_height", m.height, "new_height", msg.Height)
		m.width = msg.Width
		m.height = msg.Height

		m.playerModel.Resize(msg.Width, msg.Height)
		m.queueModel.Resize(msg.Width, msg.Height)
		m.helpModel.Resize(msg.Width, msg.Height)
		return m, nil

	case OpenQueueMsg:
		m.activeModal = ModalQueue
		m.helpModel.SetContext(ViewQueue)
		return m, m.queueModel.Open(m.playerModel.Current(), msg.Search)

	case LessonSelectedMsg:
		m.activeModal = ModalNone
		return m.updatePlayerView(msg)

	case HandledMsg:
		log.Trace("Key handled", "source", msg.Source)
		return m, nil

	case PlaybackEventMsg, PlaybackClosedMsg, spinner.TickMsg:
		// Playback notifications and the loading spinner's tick chain always go to the player, whatever is on screen
		return m.updatePlayerView(msg)
	}

	// Prioritise delegating messages to a modal if one is active
	switch m.activeModal {
	case ModalQueue:
		return m.updateQueueModal(msg)
	case ModalHelp:
		model, cmd := m.helpModel.Update(msg)
		m.helpModel = model.(*HelpModel)
		return m, cmd
	}

	return m.updatePlayerView(msg)
}

func (m AppModel) View() string {
	switch m.activeModal {
	case ModalHelp:
		return m.helpModel.View()
	case ModalQueue:
		return m.queueModel.View()
	}

	switch m.activeView {
	case ViewPlayer:
		return m.playerModel.View()
	default:
		return "Unknown view\nPress ctrl+c to quit."
	}
}

// shutdown releases the playback engine and the media element
func (m AppModel) shutdown() {
	m.controller.Unmount()
	if c, ok := m.media.(closer); ok {
		c.Close()
	}
}

func (m AppModel) updatePlayerView(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.playerModel.Update(msg)
	m.playerModel = model.(*PlayerModel)
	return m, cmd
}

func (m AppModel) updateQueueModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.queueModel.Update(msg)
	m.queueModel = model.(*QueueModel)
	return m, cmd
}
