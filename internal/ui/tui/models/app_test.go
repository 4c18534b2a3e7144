package models

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiddolearn/kiddo-player/internal/playback"
)

type stubEngine struct {
	plays     int
	destroyed bool
}

func (e *stubEngine) Play() error {
	e.plays++
	return nil
}

func (e *stubEngine) Destroy() error {
	e.destroyed = true
	return nil
}

type stubMedia struct {
	src    playback.Source
	closed bool
}

func (m *stubMedia) Attach(src playback.Source) { m.src = src }
func (m *stubMedia) Source() playback.Source { return m.src }
func (m *stubMedia) Load() error { return nil }
func (m *stubMedia) Listen(playback.MediaListener) func() { return func() {} }
func (m *stubMedia) Close() { m.closed = true }

type harness struct {
	app        AppModel
	controller *playback.Controller
	media      *stubMedia
	engines    []*stubEngine
	lessons    []Lesson
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		media: &stubMedia{},
		lessons: []Lesson{
			{Source: "https://cdn.example.com/fractions.mp4", Title: "Fractions"},
			{Source: "https://cdn.example.com/decimals.webm", Title: "Decimals", Poster: "https://cdn.example.com/decimals.png"},
			{Source: "https://cdn.example.com/shapes.ogg", Title: "Shapes"},
		},
	}
	h.controller = playback.NewController(func(playback.Media, playback.EngineOptions, playback.EngineListener) (playback.Engine, error) {
		e := &stubEngine{}
		h.engines = append(h.engines, e)
		return e, nil
	})
	h.app = NewAppModel(h.controller, h.media, h.lessons)
	h.send(tea.WindowSizeMsg{Width: 100, Height: 40})
	require.NotNil(t, h.app.Init())
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	model, cmd := h.app.Update(msg)
	h.app = model.(AppModel)
	return cmd
}

func (h *harness) event(ev playback.Event) {
	ev.Generation = h.controller.State().Generation
	h.send(PlaybackEventMsg{Event: ev})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPlayerLifecycle(t *testing.T) {
	h := newHarness(t)

	state := h.controller.State()
	assert.Equal(t, playback.StatusInitializing, state.Status)
	assert.True(t, state.IsLoading)
	assert.Equal(t, h.lessons[0].Source, h.media.Source().URL)
	assert.Contains(t, h.app.View(), "Loading video")

	h.event(playback.Event{Type: playback.EventReady})
	assert.Equal(t, playback.StatusReady, h.controller.State().Status)
	assert.Contains(t, h.app.View(), "Ready. Press p to play")

	h.send(runes("p"))
	require.Len(t, h.engines, 1)
	assert.Equal(t, 1, h.engines[0].plays)

	h.event(playback.Event{Type: playback.EventTimeUpdate, Position: 30, Duration: 120})
	assert.Equal(t, playback.StatusPlaying, h.controller.State().Status)
	assert.Equal(t, 25, h.lessons[0].Progress)
	assert.Contains(t, h.app.View(), "25% watched")
}

func TestSwitchLessons(t *testing.T) {
	h := newHarness(t)

	h.send(runes("n"))

	state := h.controller.State()
	assert.Equal(t, h.lessons[1].Source, state.Source)
	assert.Equal(t, playback.MimeTypeWebM, state.MimeType)
	assert.Equal(t, uint64(2), state.Generation)
	require.Len(t, h.engines, 2)
	assert.True(t, h.engines[0].destroyed)
	assert.Contains(t, h.app.View(), "decimals.png")

	h.send(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, h.lessons[0].Source, h.controller.State().Source)

	// No lesson before the first one
	h.send(runes("b"))
	assert.Equal(t, uint64(3), h.controller.State().Generation)
}

func TestErrorAndRetry(t *testing.T) {
	h := newHarness(t)

	h.event(playback.Event{Type: playback.EventMediaError, Err: errors.New("404")})
	assert.Contains(t, h.app.View(), playback.MessageMediaLoad)
	assert.Contains(t, h.app.View(), "Press r to try again")

	h.send(runes("r"))
	state := h.controller.State()
	assert.Equal(t, playback.StatusInitializing, state.Status)
	assert.False(t, state.HasError())
	require.Len(t, h.engines, 2)

	// A retry plays as soon as the new engine is ready
	h.event(playback.Event{Type: playback.EventReady})
	assert.Equal(t, 1, h.engines[1].plays)
}

func TestQueueSearch(t *testing.T) {
	h := newHarness(t)

	h.send(OpenQueueMsg{Search: true})
	assert.Equal(t, ModalQueue, h.app.activeModal)

	for _, r := range "shap" {
		h.send(runes(string(r)))
	}
	assert.Equal(t, []int{2}, h.app.queueModel.filtered)
	// "p" went to the search input, not the player
	assert.Equal(t, 0, h.engines[0].plays)
	assert.Equal(t, uint64(1), h.controller.State().Generation)

	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, h.app.queueModel.Searching())

	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, LessonSelectedMsg{Index: 2}, msg)

	h.send(msg)
	assert.Equal(t, ModalNone, h.app.activeModal)
	assert.Equal(t, h.lessons[2].Source, h.controller.State().Source)
}

func TestHelpToggle(t *testing.T) {
	h := newHarness(t)

	h.send(tea.KeyMsg{Type: tea.KeyCtrlH})
	assert.Equal(t, ModalHelp, h.app.activeModal)
	assert.Contains(t, h.app.View(), "Help: Player")

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModalNone, h.app.activeModal)
}

func TestSpinnerKeepsTickingUnderModal(t *testing.T) {
	for name, open := range map[string]tea.Msg{
		"help":  tea.KeyMsg{Type: tea.KeyCtrlH},
		"queue": OpenQueueMsg{},
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			h.send(open)
			require.NotEqual(t, ModalNone, h.app.activeModal)

			cmd := h.send(h.app.playerModel.loading.spinner.Tick())

			assert.NotNil(t, cmd, "the next tick must be scheduled while a modal is open")
		})
	}
}

func TestQuitReleasesEngine(t *testing.T) {
	h := newHarness(t)

	cmd := h.send(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, h.engines[0].destroyed)
	assert.True(t, h.media.closed)
	assert.Equal(t, playback.StatusClosed, h.controller.State().Status)

	select {
	case <-h.controller.Done():
	default:
		t.Fatal("controller not closed")
	}

	// The event pump notices the controller is gone
	assert.Equal(t, PlaybackClosedMsg{}, waitForPlaybackEvent(h.controller)())
}
