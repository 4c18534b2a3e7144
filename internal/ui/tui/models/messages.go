package models

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kiddolearn/kiddo-player/internal/playback"
)

// PlaybackEventMsg carries one queued engine or media notification to the update loop
type PlaybackEventMsg struct {
	Event playback.Event
}

// PlaybackClosedMsg is sent once the controller has been unmounted and no more events will arrive
type PlaybackClosedMsg struct{}

// LessonSelectedMsg asks the player to switch to the lesson at Index
type LessonSelectedMsg struct {
	Index int
}

// OpenQueueMsg asks the app to show the lesson queue, optionally straight into search mode
type OpenQueueMsg struct {
	Search bool
}

// HandledMsg signals that a key was consumed without anything else to do.  Source is only used for logging.
type HandledMsg struct {
	Source string
}

// Handled returns a command producing a HandledMsg
func Handled(source string) tea.Cmd {
	return func() tea.Msg {
		return HandledMsg{Source: source}
	}
}

// waitForPlaybackEvent blocks until the controller queues a notification or is unmounted.  The player model
// re-issues it after every event so exactly one is outstanding at a time.
func waitForPlaybackEvent(c *playback.Controller) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-c.Events():
			return PlaybackEventMsg{Event: ev}
		case <-c.Done():
			return PlaybackClosedMsg{}
		}
	}
}
