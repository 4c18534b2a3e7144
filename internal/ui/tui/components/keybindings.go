package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	kb "github.com/kiddolearn/kiddo-player/internal/ui/tui/keybindings"
	"github.com/kiddolearn/kiddo-player/internal/ui/tui/styles"
)

// KeyBinding represents a single key and its description for the keybinding bar
type KeyBinding struct {
	Key  string
	Desc string
}

// keyStyle is used to highlight keyboard shortcuts in UI
var keyStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#7D56F4")).
	Bold(true)

// FromBindings converts context bindings to bar entries, keeping only the given actions in the given order
func FromBindings(bindings []kb.Binding, actions ...kb.Action) []KeyBinding {
	byAction := lo.KeyBy(bindings, func(b kb.Binding) kb.Action { return b.Action })
	return lo.FilterMap(actions, func(a kb.Action, _ int) (KeyBinding, bool) {
		b, ok := byAction[a]
		if !ok {
			return KeyBinding{}, false
		}
		return KeyBinding{Key: kb.FormatKey(b), Desc: b.KeyMap.Help}, true
	})
}

// KeyBindingsBar creates a styled footer showing a set of keybindings
// width: The width of the screen to center the bar
// bindings: The list of keybindings to display
func KeyBindingsBar(width int, bindings []KeyBinding) string {
	var parts []string
	for _, b := range bindings {
		parts = append(parts, fmt.Sprintf("%s: %s",
			keyStyle.Render(b.Key),
			b.Desc))
	}

	keyBar := styles.Info.Render(strings.Join(parts, " • "))
	return styles.CenteredText(width, keyBar)
}
