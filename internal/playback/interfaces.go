package playback

// Source is a media source attached to a media element
type Source struct {
	URL      string
	MimeType string
}

// NewSource builds a Source, resolving its MIME type from the URL
func NewSource(url string) Source {
	return Source{
		URL:      url,
		MimeType: ResolveType(url),
	}
}

// Media is the rendering surface an engine is bound to.  Implementations attach a source, load it, and report load
// progress to any registered listener.
type Media interface {
	// Attach replaces the attached source.  Any load still in flight for the previous source must not report.
	Attach(src Source)

	// Source returns the currently attached source
	Source() Source

	// Load starts loading the attached source.  Results are delivered to listeners, an error is only returned if the
	// load could not be started at all.
	Load() error

	// Listen registers a listener and returns a function that detaches it again.
	Listen(l MediaListener) (detach func())
}

// MediaListener receives native media element notifications
type MediaListener interface {
	LoadedMetadata()
	MediaError(err error)
}

// EngineListener receives playback engine notifications
type EngineListener interface {
	// Ready is called once the engine has initialised and can accept commands
	Ready()
	// Playing is called when playback actually starts
	Playing()
	// TimeUpdate reports the current playback position and total duration in seconds
	TimeUpdate(position, duration float64)
	// EngineError reports a failure.  Wrap ErrEngineInit if the engine never finished initialising.
	EngineError(err error)
	// PlayRejected reports an asynchronous refusal of a play command
	PlayRejected(err error)
}

// Engine is a handle to one live playback engine instance
type Engine interface {
	// Play asks the engine to start playback.  A refusal should wrap ErrAutoplayRejected.
	Play() error

	// Destroy releases the engine and everything it owns.  It must be safe to call more than once.
	Destroy() error
}

// EngineFactory constructs a new engine bound to the given media element.  Notifications for the new handle must
// only be delivered to the supplied listener.
type EngineFactory func(media Media, opts EngineOptions, listener EngineListener) (Engine, error)

// Recorder observes controller lifecycle changes, typically for metrics
type Recorder interface {
	HandleCreated()
	HandleDestroyed()
	Failure(kind ErrorKind)
	StaleEvent()
	AutoplayRejected()
	ProgressReported(percent int)
}

type nopRecorder struct{}

func (nopRecorder) HandleCreated() {}
func (nopRecorder) HandleDestroyed() {}
func (nopRecorder) Failure(ErrorKind) {}
func (nopRecorder) StaleEvent() {}
func (nopRecorder) AutoplayRejected() {}
func (nopRecorder) ProgressReported(int) {}
