package keybindings

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNoDuplicateKeyBindings(t *testing.T) {
	// Check each context individually
	for contextName, bindings := range ContextBindings {
		t.Run(fmt.Sprintf("Context_%s", contextName), func(t *testing.T) {
			keyToAction := make(map[string]Action)

			for _, binding := range bindings {
				keys := []string{binding.KeyMap.Primary}
				if binding.KeyMap.Secondary != "" {
					keys = append(keys, binding.KeyMap.Secondary)
				}
				for _, key := range keys {
					existingAction, exists := keyToAction[key]
					assert.False(t, exists, "duplicate key binding '%s' in context '%s': first assigned to action '%s', then to '%s'",
						key, contextName, existingAction, binding.Action)
					keyToAction[key] = binding.Action
				}
			}
		})
	}
}

func TestGetActionByKey(t *testing.T) {
	tests := []struct {
		name    string
		msg     tea.KeyMsg
		context ContextName
		want    Action
	}{
		{"retry", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}, ContextPlayer, ActionRetry},
		{"play with space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}, ContextPlayer, ActionPlay},
		{"next with arrow", tea.KeyMsg{Type: tea.KeyRight}, ContextPlayer, ActionNextLesson},
		{"quit", tea.KeyMsg{Type: tea.KeyCtrlC}, ContextGlobal, ActionQuit},
		{"select in queue", tea.KeyMsg{Type: tea.KeyEnter}, ContextQueue, ActionSelectLesson},
		{"navigation in queue", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}, ContextQueue, ActionMoveDown},
		{"unbound key", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")}, ContextPlayer, ""},
		{"unknown context", tea.KeyMsg{Type: tea.KeyEnter}, ContextName("nope"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetActionByKey(tt.msg, tt.context))
		})
	}
}

func TestFormatKey(t *testing.T) {
	assert.Equal(t, "p/space", FormatKey(Binding{KeyMap: KeyMap{Primary: "p", Secondary: " "}}))
	assert.Equal(t, "r", FormatKey(Binding{KeyMap: KeyMap{Primary: "r"}}))
	assert.Equal(t, "r", GetActionKey(ActionRetry, ContextBindings[ContextPlayer]))
}
