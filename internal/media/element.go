package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kiddolearn/kiddo-player/internal/log"
	"github.com/kiddolearn/kiddo-player/internal/playback"
)

// ErrNoSource is returned by Load when nothing has been attached
var ErrNoSource = errors.New("no source attached")

// Element is a media element that attaches one source at a time and checks it can actually be loaded before the
// engine starts pulling it.  Remote sources are probed over HTTP, local paths are checked on disk and other schemes
// are passed straight through.
type Element struct {
	client    *http.Client
	userAgent string
	probe     bool

	mu        sync.Mutex
	src       playback.Source
	listeners map[int]playback.MediaListener
	nextID    int
	cancel    context.CancelFunc
}

// Option configures an Element
type Option func(*Element)

// WithHTTPClient overrides the client used to probe remote sources
func WithHTTPClient(client *http.Client) Option {
	return func(e *Element) {
		e.client = client
	}
}

// WithUserAgent sets the User-Agent header sent when probing
func WithUserAgent(ua string) Option {
	return func(e *Element) {
		e.userAgent = ua
	}
}

// WithProbe toggles probing.  When disabled every load reports metadata immediately and errors are left to the engine.
func WithProbe(enabled bool) Option {
	return func(e *Element) {
		e.probe = enabled
	}
}

// NewElement creates an element with nothing attached
func NewElement(opts ...Option) *Element {
	e := &Element{
		// No overall timeout: a load may hang for as long as the server keeps the connection open
		client:    &http.Client{},
		probe:     true,
		listeners: make(map[int]playback.MediaListener),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Attach replaces the current source, abandoning any load still in flight for the previous one
func (e *Element) Attach(src playback.Source) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()
	e.src = src
	log.Debug("Attached media source", "url", src.URL, "mime_type", src.MimeType)
}

// Source returns the attached source
func (e *Element) Source() playback.Source {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src
}

// Listen registers a listener for load notifications
func (e *Element) Listen(l playback.MediaListener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.listeners, id)
			e.mu.Unlock()
		})
	}
}

// Load starts loading the attached source in the background
func (e *Element) Load() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.src.URL == "" {
		return ErrNoSource
	}

	e.cancelLocked()
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	go e.load(ctx, e.src)
	return nil
}

// Close abandons any load in flight and drops every listener
func (e *Element) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()
	e.listeners = make(map[int]playback.MediaListener)
}

func (e *Element) cancelLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Element) load(ctx context.Context, src playback.Source) {
	start := time.Now()
	err := e.check(ctx, src)
	if ctx.Err() != nil {
		log.Trace("Media load superseded", "url", src.URL)
		return
	}

	if err != nil {
		log.Warn("Media failed to load", "url", src.URL, "error", err)
	} else {
		log.Debug("Media metadata loaded", "url", src.URL, "elapsed", time.Since(start))
	}
	e.notify(ctx, func(l playback.MediaListener) {
		if err != nil {
			l.MediaError(err)
		} else {
			l.LoadedMetadata()
		}
	})
}

// notify calls fn for every listener, unless the load was superseded in the meantime
func (e *Element) notify(ctx context.Context, fn func(playback.MediaListener)) {
	e.mu.Lock()
	if ctx.Err() != nil {
		e.mu.Unlock()
		return
	}
	listeners := make([]playback.MediaListener, 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	e.mu.Unlock()

	for _, l := range listeners {
		fn(l)
	}
}

func (e *Element) check(ctx context.Context, src playback.Source) error {
	if !e.probe {
		return nil
	}

	u, err := url.Parse(src.URL)
	if err != nil {
		return fmt.Errorf("invalid source url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return e.probeHTTP(ctx, src)
	case "file":
		return checkFile(u.Path)
	case "":
		return checkFile(src.URL)
	default:
		if len(u.Scheme) == 1 {
			// Windows drive letter
			return checkFile(src.URL)
		}
		// Streaming schemes (rtmp, rtsp, ...) are left to the engine
		log.Debug("Skipping probe for unsupported scheme", "scheme", u.Scheme)
		return nil
	}
}

func (e *Element) probeHTTP(ctx context.Context, src playback.Source) error {
	resp, err := e.do(ctx, http.MethodHead, src.URL)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		log.Debug("HEAD not supported, falling back to ranged GET", "url", src.URL, "status", resp.StatusCode)
		resp, err = e.do(ctx, http.MethodGet, src.URL)
	}
	if err != nil {
		return fmt.Errorf("failed to reach media: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("media request failed with status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "text/html") {
		return fmt.Errorf("unexpected content type %q for media", contentType)
	}
	log.Trace("Media probe response", "url", src.URL, "status", resp.StatusCode, "content_type", contentType,
		"expected_type", src.MimeType, "content_length", resp.ContentLength)
	return nil
}

func (e *Element) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	// Only the status line and headers are of interest
	_ = resp.Body.Close()
	return resp, nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("unable to open media file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("media path %s is a directory", path)
	}
	return nil
}
