package playback

import (
	"errors"
	"sync/atomic"

	"github.com/kiddolearn/kiddo-player/internal/log"
)

const defaultEventBuffer = 64

// session binds one engine handle to the media element.  It is replaced wholesale on every rebind.
type session struct {
	generation uint64
	handle     Engine
	detach     func()
}

// Controller owns the playback engine bound to one media element.  It keeps the engine in step with the caller's
// source, surfaces loading and error state, and guarantees the engine is released on every exit path.
//
// A Controller is driven from a single goroutine: the caller's event loop calls Mount, Update, Retry, Play, Unmount
// and Handle.  Engines and media elements notify from their own goroutines by queueing events on Events, which the
// caller drains and passes to Handle.  Only Events, Done and Snapshot are safe to use from other goroutines.
type Controller struct {
	factory  EngineFactory
	options  EngineOptions
	recorder Recorder
	autoplay bool

	props   Props
	media   Media
	session *session

	generation   uint64
	status       Status
	loading      bool
	errMessage   string
	errKind      ErrorKind
	lastProgress int
	retrying     bool

	events   chan Event
	done     chan struct{}
	closed   bool
	snapshot atomic.Pointer[State]
}

// Option configures a Controller
type Option func(*Controller)

// WithEngineOptions sets the static configuration handed to every engine the controller creates
func WithEngineOptions(opts EngineOptions) Option {
	return func(c *Controller) {
		c.options = opts
	}
}

// WithRecorder attaches a lifecycle recorder, usually metrics
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithAutoplay makes the controller issue a play command as soon as a freshly bound engine is ready.  Retries always
// play once ready regardless of this setting.
func WithAutoplay(autoplay bool) Option {
	return func(c *Controller) {
		c.autoplay = autoplay
	}
}

// WithEventBuffer sets the capacity of the event queue
func WithEventBuffer(size int) Option {
	return func(c *Controller) {
		if size > 0 {
			c.events = make(chan Event, size)
		}
	}
}

// NewController creates an unmounted controller that builds engines with the given factory
func NewController(factory EngineFactory, opts ...Option) *Controller {
	c := &Controller{
		factory:  factory,
		options:  DefaultEngineOptions(),
		recorder: nopRecorder{},
		status:   StatusIdle,
		events:   make(chan Event, defaultEventBuffer),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.publish()
	return c
}

// Events returns the queue of pending engine and media notifications
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Done is closed once the controller has been unmounted
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Mount binds the controller to a media element and creates the first engine handle
func (c *Controller) Mount(media Media, props Props) error {
	if c.closed {
		return ErrClosed
	}
	if c.media != nil {
		return ErrAlreadyMounted
	}
	if media == nil {
		return ErrNotMounted
	}
	if props.Source == "" {
		return ErrEmptySource
	}

	log.Info("Mounting playback controller", "source", props.Source, "title", props.Title)
	c.media = media
	c.props = props
	c.bind()
	return nil
}

// Update applies new caller props.  A changed source rebinds the engine; the progress callback, title and poster are
// picked up without a rebind.
func (c *Controller) Update(props Props) error {
	if c.closed {
		return ErrClosed
	}
	if props.Source == "" {
		return ErrEmptySource
	}

	changed := props.Source != c.props.Source
	c.props = props

	if c.media == nil || !changed {
		c.publish()
		return nil
	}

	log.Info("Playback source changed, rebinding", "source", props.Source, "previous_generation", c.generation)
	c.retrying = false
	c.bind()
	return nil
}

// Retry tears down the current handle and attempts a fresh bind.  It only acts from the errored state.
func (c *Controller) Retry() error {
	if c.closed {
		return ErrClosed
	}
	if c.media == nil {
		return ErrNotMounted
	}
	if c.status != StatusErrored {
		log.Debug("Ignoring retry outside of errored state", "status", c.status)
		return nil
	}

	log.Info("Retrying playback", "source", c.props.Source, "failed_kind", c.errKind)
	c.retrying = true
	c.bind()
	return nil
}

// Play asks the current engine to start playback.  A refusal is logged and otherwise ignored.
func (c *Controller) Play() error {
	if c.closed {
		return ErrClosed
	}
	if c.session == nil || c.session.handle == nil {
		return ErrNotMounted
	}
	c.play()
	return nil
}

// Unmount releases the engine and detaches every listener.  After Unmount no state changes and the progress
// callback is never invoked again.  Calling it more than once is harmless.
func (c *Controller) Unmount() {
	if c.closed {
		return
	}

	log.Info("Unmounting playback controller", "generation", c.generation, "status", c.status)
	c.release()
	c.status = StatusClosed
	c.loading = false
	c.closed = true
	c.props.OnProgress = nil
	close(c.done)
	c.publish()
}

// State returns the current observable state
func (c *Controller) State() State {
	return c.state()
}

// Snapshot returns the state as of the last change.  Unlike State it is safe to call from any goroutine.
func (c *Controller) Snapshot() State {
	if s := c.snapshot.Load(); s != nil {
		return *s
	}
	return State{Status: StatusIdle}
}

// Handle applies one queued notification.  This is the single place engine and media notifications change state.
func (c *Controller) Handle(ev Event) {
	if c.closed {
		log.Trace("Dropping playback event after unmount", "type", ev.Type, "generation", ev.Generation)
		return
	}
	if c.session == nil || ev.Generation != c.session.generation {
		log.Debug("Dropping playback event from superseded engine",
			"type", ev.Type,
			"event_generation", ev.Generation,
			"current_generation", c.generation)
		c.recorder.StaleEvent()
		return
	}

	switch ev.Type {
	case EventReady:
		c.handleReady()
	case EventPlaying:
		if c.status == StatusReady {
			c.setStatus(StatusPlaying)
		}
	case EventTimeUpdate:
		c.handleTimeUpdate(ev.Position, ev.Duration)
	case EventEngineError:
		kind := ErrorKindPlayback
		if errors.Is(ev.Err, ErrEngineInit) {
			kind = ErrorKindInitialization
		}
		c.fail(kind, ev.Err)
	case EventPlayRejected:
		c.playRejected(ev.Err)
	case EventLoadedMetadata:
		if c.status != StatusErrored {
			log.Debug("Media metadata loaded", "generation", ev.Generation)
			c.loading = false
		}
	case EventMediaError:
		c.fail(ErrorKindMediaLoad, ev.Err)
	default:
		log.Warn("Unknown playback event type", "type", ev.Type)
	}

	c.publish()
}

// bind releases whatever is bound, then creates a new engine handle for the current source under a new generation
func (c *Controller) bind() {
	c.release()

	c.generation++
	gen := c.generation
	c.setStatus(StatusInitializing)
	c.loading = true
	c.errMessage = ""
	c.errKind = ErrorKindNone
	c.lastProgress = 0

	n := &notifier{generation: gen, events: c.events, done: c.done}
	c.media.Attach(NewSource(c.props.Source))
	c.session = &session{
		generation: gen,
		detach:     c.media.Listen(n),
	}

	handle, err := c.factory(c.media, c.engineOptions(), n)
	if err != nil {
		c.fail(ErrorKindInitialization, err)
		c.release()
		c.publish()
		return
	}
	c.session.handle = handle
	c.recorder.HandleCreated()
	log.Debug("Created playback engine", "generation", gen, "source", c.props.Source)

	if err := c.media.Load(); err != nil {
		c.fail(ErrorKindMediaLoad, err)
	}
	c.publish()
}

// release is the single disposal routine.  It detaches media listeners and destroys the engine handle, if any.
func (c *Controller) release() {
	s := c.session
	if s == nil {
		return
	}
	c.session = nil

	if s.detach != nil {
		s.detach()
	}
	if s.handle != nil {
		if err := s.handle.Destroy(); err != nil {
			log.Warn("Error destroying playback engine", "generation", s.generation, "error", err)
		}
		c.recorder.HandleDestroyed()
		log.Debug("Destroyed playback engine", "generation", s.generation)
	}
}

func (c *Controller) handleReady() {
	if c.status != StatusInitializing {
		log.Debug("Ignoring ready notification", "status", c.status)
		return
	}

	c.setStatus(StatusReady)
	c.loading = false
	log.Info("Playback engine ready", "generation", c.generation, "source", c.props.Source)

	playNow := c.autoplay || c.retrying
	c.retrying = false
	if playNow {
		c.play()
	}
}

func (c *Controller) handleTimeUpdate(position, duration float64) {
	if c.status == StatusErrored {
		return
	}
	if c.status == StatusReady {
		c.setStatus(StatusPlaying)
	}

	percent := ProgressPercent(position, duration)
	if percent <= 0 || percent == c.lastProgress {
		return
	}
	c.lastProgress = percent

	if c.props.OnProgress != nil {
		c.recorder.ProgressReported(percent)
		c.props.OnProgress(percent)
	}
}

func (c *Controller) play() {
	if err := c.session.handle.Play(); err != nil {
		c.playRejected(err)
	}
}

func (c *Controller) playRejected(err error) {
	c.recorder.AutoplayRejected()
	if errors.Is(err, ErrAutoplayRejected) {
		log.Info("Automatic playback was rejected", "error", err)
		return
	}
	log.Warn("Play command failed", "error", err)
}

// fail moves into the errored state.  The first failure wins; later ones are only logged.
func (c *Controller) fail(kind ErrorKind, err error) {
	if c.status == StatusErrored {
		log.Debug("Already errored, ignoring further failure", "kind", kind, "error", err)
		return
	}

	c.setStatus(StatusErrored)
	c.loading = false
	c.errKind = kind
	c.errMessage = kind.Message()
	if c.retrying {
		c.errMessage = MessageRetryFailed
	}
	c.recorder.Failure(kind)
	log.Error("Playback failed",
		"kind", kind,
		"generation", c.generation,
		"source", c.props.Source,
		"retried", c.retrying,
		"error", err)
}

func (c *Controller) setStatus(next Status) {
	if !CanTransition(c.status, next) {
		log.Warn("Illegal playback status transition", "from", c.status, "to", next)
		return
	}
	if c.status != next {
		log.Trace("Playback status change", "from", c.status, "to", next, "generation", c.generation)
	}
	c.status = next
}

func (c *Controller) engineOptions() EngineOptions {
	opts := c.options
	opts.Title = c.props.Title
	opts.PosterImage = c.props.PosterImage
	return opts
}

func (c *Controller) state() State {
	s := State{
		Status:       c.status,
		IsLoading:    c.loading,
		ErrorMessage: c.errMessage,
		ErrorKind:    c.errKind,
		Source:       c.props.Source,
		Title:        c.props.Title,
		PosterImage:  c.props.PosterImage,
		Generation:   c.generation,
		Progress:     c.lastProgress,
		Retried:      c.retrying,
	}
	if s.Source != "" {
		s.MimeType = ResolveType(s.Source)
	}
	return s
}

func (c *Controller) publish() {
	s := c.state()
	c.snapshot.Store(&s)
}
