package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kiddolearn/kiddo-player/internal/playback"
	"github.com/kiddolearn/kiddo-player/internal/ui/tui/models"
)

// Run shows the player until the user quits or ctx is cancelled.  The controller must not be used by anything else
// while Run is active: the Bubble Tea update loop is the goroutine that drives it.
func Run(ctx context.Context, controller *playback.Controller, media playback.Media, lessons []models.Lesson) error {
	p := tea.NewProgram(
		models.NewAppModel(controller, media, lessons),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
