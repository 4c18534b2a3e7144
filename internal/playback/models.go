package playback

// Status is the lifecycle state of a playback session
type Status string

const (
	// StatusIdle is the state before the controller has been mounted
	StatusIdle         Status = "idle"
	StatusInitializing Status = "initializing"
	StatusReady        Status = "ready"
	StatusPlaying      Status = "playing"
	StatusErrored      Status = "errored"
	// StatusClosed is terminal.  Nothing changes after the controller is unmounted.
	StatusClosed Status = "closed"
)

// transitions lists every legal status change.  Re-entering Initializing from Ready/Playing is a source change.
var transitions = map[Status][]Status{
	StatusIdle:         {StatusInitializing, StatusClosed},
	StatusInitializing: {StatusInitializing, StatusReady, StatusErrored, StatusClosed},
	StatusReady:        {StatusInitializing, StatusPlaying, StatusErrored, StatusClosed},
	StatusPlaying:      {StatusInitializing, StatusErrored, StatusClosed},
	StatusErrored:      {StatusInitializing, StatusClosed},
}

// CanTransition reports whether the state machine allows moving from one status to another
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Props are the caller supplied inputs of a controller
type Props struct {
	Source      string
	PosterImage string
	Title       string
	OnProgress  func(percent int)
}

// EngineOptions is static configuration passed through to the engine on construction
type EngineOptions struct {
	Title          string
	PosterImage    string
	Controls       []string
	Settings       []string
	ResetOnEnd     bool
	KeyboardGlobal bool
	Tooltips       bool
	Captions       bool
}

// DefaultEngineOptions returns the control set used for lesson videos
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		Controls: []string{
			"play-large", "play", "progress", "current-time", "mute",
			"volume", "captions", "settings", "pip", "fullscreen",
		},
		Settings:       []string{"captions", "quality", "speed"},
		ResetOnEnd:     true,
		KeyboardGlobal: true,
		Tooltips:       true,
		Captions:       true,
	}
}

// State is the observable output of a controller
type State struct {
	Status       Status    `json:"status"`
	IsLoading    bool      `json:"is_loading"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ErrorKind    ErrorKind `json:"error_kind,omitempty"`
	Source       string    `json:"source,omitempty"`
	MimeType     string    `json:"mime_type,omitempty"`
	Title        string    `json:"title,omitempty"`
	PosterImage  string    `json:"poster_image,omitempty"`
	Generation   uint64    `json:"generation"`
	Progress     int       `json:"progress"`
	Retried      bool      `json:"retried"`
}

// HasError reports whether the state carries an error message
func (s State) HasError() bool {
	return s.ErrorMessage != ""
}
