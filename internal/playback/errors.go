package playback

import "errors"

var (
	// ErrEmptySource is returned when a controller is given a blank source URL
	ErrEmptySource = errors.New("source must not be empty")
	// ErrClosed is returned by any command issued after Unmount
	ErrClosed = errors.New("playback controller is closed")
	// ErrNotMounted is returned by commands that need a media element before Mount has been called
	ErrNotMounted = errors.New("playback controller is not mounted")
	// ErrAlreadyMounted is returned when Mount is called twice
	ErrAlreadyMounted = errors.New("playback controller is already mounted")

	// ErrEngineInit should be wrapped by engines that fail to initialise after construction returned, for example
	// when an external player process starts but never becomes reachable.
	ErrEngineInit = errors.New("playback engine failed to initialise")
	// ErrAutoplayRejected should be wrapped by engines when a play command is refused.  It is never an error state.
	ErrAutoplayRejected = errors.New("autoplay rejected")
)

// ErrorKind classifies the failure that moved a controller into the errored state
type ErrorKind string

const (
	ErrorKindNone ErrorKind = ""
	// ErrorKindInitialization means the engine could not be constructed.  Requires caller action.
	ErrorKindInitialization ErrorKind = "initialization"
	// ErrorKindMediaLoad means the media element could not load the resource (network, format, 404).
	ErrorKindMediaLoad ErrorKind = "media_load"
	// ErrorKindPlayback means the engine reported an error after it initialised successfully.
	ErrorKindPlayback ErrorKind = "playback"
)

// User facing messages for each failure
const (
	MessageInitFailed  = "could not initialize player"
	MessageMediaLoad   = "unable to load video"
	MessagePlayback    = "error playing video"
	MessageRetryFailed = "failed to play video after retry"
)

// Message returns the user facing description of a failure kind
func (k ErrorKind) Message() string {
	switch k {
	case ErrorKindInitialization:
		return MessageInitFailed
	case ErrorKindMediaLoad:
		return MessageMediaLoad
	case ErrorKindPlayback:
		return MessagePlayback
	default:
		return ""
	}
}
