package models

import tea "github.com/charmbracelet/bubbletea"

// View represents a specific UI view in the application
type View string

// Available views in the application
const (
	ViewPlayer  View = "player"
	ViewQueue   View = "queue"
	ViewHelp    View = "help"
	ViewLoading View = "loading"
)

// Modal represents a UI intended to be temporarily shown to the user before returning to the original view
type Modal string

// Available modals in the application
const (
	ModalNone  Modal = "none"
	ModalHelp  Modal = "help"
	ModalQueue Modal = "queue"
)

// Model is implemented by every child model the AppModel coordinates
type Model interface {
	ViewType() View
	Init() tea.Cmd
	Update(msg tea.Msg) (Model, tea.Cmd)
	View() string
	Resize(width, height int)
}
