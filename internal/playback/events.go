package playback

// EventType identifies a notification from an engine or media element
type EventType string

const (
	EventReady          EventType = "ready"
	EventPlaying        EventType = "playing"
	EventTimeUpdate     EventType = "timeupdate"
	EventEngineError    EventType = "engine_error"
	EventPlayRejected   EventType = "play_rejected"
	EventLoadedMetadata EventType = "loadedmetadata"
	EventMediaError     EventType = "media_error"
)

// Event is a notification queued for the controller.  Generation identifies the engine handle that produced it.
type Event struct {
	Type       EventType
	Generation uint64
	Position   float64 // Seconds, for EventTimeUpdate
	Duration   float64 // Seconds, for EventTimeUpdate
	Err        error   // For the error and rejection events
}

// notifier is handed to one engine handle and its media listener registration.  It stamps every notification with
// the handle's generation and queues it for the controller.  Once the controller is unmounted pending sends are
// abandoned rather than blocking the sender forever.
type notifier struct {
	generation uint64
	events     chan<- Event
	done       <-chan struct{}
}

func (n *notifier) send(ev Event) {
	ev.Generation = n.generation
	select {
	case <-n.done:
		return
	default:
	}
	select {
	case n.events <- ev:
	case <-n.done:
	}
}

func (n *notifier) Ready() { n.send(Event{Type: EventReady}) }
func (n *notifier) Playing() { n.send(Event{Type: EventPlaying}) }

func (n *notifier) TimeUpdate(position, duration float64) {
	n.send(Event{Type: EventTimeUpdate, Position: position, Duration: duration})
}

func (n *notifier) EngineError(err error) { n.send(Event{Type: EventEngineError, Err: err}) }
func (n *notifier) PlayRejected(err error) { n.send(Event{Type: EventPlayRejected, Err: err}) }
func (n *notifier) LoadedMetadata() { n.send(Event{Type: EventLoadedMetadata}) }
func (n *notifier) MediaError(err error) { n.send(Event{Type: EventMediaError, Err: err}) }
