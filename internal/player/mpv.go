package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kiddolearn/kiddo-player/internal/config"
	"github.com/kiddolearn/kiddo-player/internal/log"
	"github.com/kiddolearn/kiddo-player/internal/playback"
)

var (
	// ErrPlayerExited is reported when the mpv process goes away while the engine is still live
	ErrPlayerExited = errors.New("mpv exited unexpectedly")
	// ErrPlaybackFailed is reported when mpv gives up on the loaded file
	ErrPlaybackFailed = errors.New("mpv failed to play file")
)

// Property observer ids
const (
	observeDuration = iota + 1
	observePlaybackTime
	observePause
)

const (
	connectAttempts = 40
	connectDelay    = 250 * time.Millisecond
	quitGracePeriod = 500 * time.Millisecond
)

var socketCounter atomic.Uint64

// MPVEngine is a playback engine backed by an mpv process.  The process is started paused and idle, the attached
// source is loaded over IPC and mpv's property changes are translated into engine notifications.
type MPVEngine struct {
	cfg        config.PlayerConfig
	source     playback.Source
	opts       playback.EngineOptions
	listener   playback.EngineListener
	socketPath string
	ipcClient  *MPVIPCClient
	cmd        *exec.Cmd

	ctx       context.Context
	cancel    context.CancelFunc
	exited    chan struct{}
	connected atomic.Bool
	destroy   sync.Once

	// Only touched by the monitor goroutine
	ready    bool
	paused   bool
	position float64
	duration float64
}

var _ playback.Engine = (*MPVEngine)(nil)

// NewMPVEngine starts an mpv process for the media element's attached source.  It returns once the process has
// started; connecting to it and loading the file happen in the background.
func NewMPVEngine(cfg config.PlayerConfig, media playback.Media, opts playback.EngineOptions, listener playback.EngineListener) (*MPVEngine, error) {
	source := media.Source()
	if source.URL == "" {
		return nil, fmt.Errorf("%w: no source attached to media element", playback.ErrEngineInit)
	}

	e := newMPVEngine(cfg, source, opts, listener)

	mpvPath := cfg.Path
	if mpvPath == "" {
		mpvPath = "mpv"
	}
	args := e.buildArgs()
	log.Info("Starting MPV", "path", mpvPath, "args", args, "source", source.URL)

	cmd := exec.Command(mpvPath, args...)
	setupPlayerProcess(cmd)
	if err := cmd.Start(); err != nil {
		e.cancel()
		return nil, fmt.Errorf("%w: failed to start MPV: %w", playback.ErrEngineInit, err)
	}
	e.cmd = cmd

	go e.wait()
	go e.monitor()
	return e, nil
}

func newMPVEngine(cfg config.PlayerConfig, source playback.Source, opts playback.EngineOptions, listener playback.EngineListener) *MPVEngine {
	ctx, cancel := context.WithCancel(context.Background())
	socketPath := newSocketPath(cfg.IPCDir)
	return &MPVEngine{
		cfg:        cfg,
		source:     source,
		opts:       opts,
		listener:   listener,
		socketPath: socketPath,
		ipcClient:  NewMPVIPCClient(socketPath),
		ctx:        ctx,
		cancel:     cancel,
		exited:     make(chan struct{}),
		paused:     true,
	}
}

// buildArgs turns the engine options into mpv flags.  The source itself is sent with loadfile once connected.
func (e *MPVEngine) buildArgs() []string {
	args := []string{
		"--no-terminal",
		"--idle=yes",
		"--pause",
		"--force-window=immediate",
		"--input-ipc-server=" + e.socketPath,
	}
	if e.opts.Title != "" {
		args = append(args, "--force-media-title="+e.opts.Title)
	}
	if len(e.opts.Controls) == 0 {
		args = append(args, "--no-osc")
	}
	if !e.opts.KeyboardGlobal {
		args = append(args, "--no-input-default-bindings")
	}
	if e.opts.Captions {
		args = append(args, "--sub-auto=fuzzy")
	} else {
		args = append(args, "--sid=no")
	}
	if e.opts.ResetOnEnd {
		args = append(args, "--keep-open=no")
	} else {
		args = append(args, "--keep-open=yes")
	}
	if e.cfg.Args != "" {
		args = append(args, ParseArgs(e.cfg.Args)...)
	}
	return args
}

// wait reaps the process
func (e *MPVEngine) wait() {
	err := e.cmd.Wait()
	log.Debug("MPV process exited", "socket_path", e.socketPath, "error", err)
	close(e.exited)
}

func (e *MPVEngine) monitor() {
	connCtx, cancel := context.WithTimeout(e.ctx, connectAttempts*connectDelay)
	defer cancel()
	// Stop waiting as soon as the process dies
	go func() {
		select {
		case <-e.exited:
			cancel()
		case <-connCtx.Done():
		}
	}()

	if err := e.ipcClient.WaitForConnection(connCtx, connectAttempts, connectDelay); err != nil {
		if e.ctx.Err() != nil {
			return
		}
		select {
		case <-e.exited:
			err = ErrPlayerExited
		default:
		}
		log.Error("Failed to connect to MPV", "error", err)
		e.listener.EngineError(fmt.Errorf("%w: %w", playback.ErrEngineInit, err))
		return
	}
	e.connected.Store(true)

	if err := e.start(); err != nil {
		if e.ctx.Err() != nil {
			return
		}
		log.Error("Failed to load source into MPV", "error", err)
		e.listener.EngineError(fmt.Errorf("%w: %w", playback.ErrEngineInit, err))
		return
	}

	events := e.ipcClient.Events()
	for {
		select {
		case <-e.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				if e.ctx.Err() == nil {
					log.Warn("MPV connection closed while engine was live", "socket_path", e.socketPath)
					e.listener.EngineError(ErrPlayerExited)
				}
				return
			}
			e.dispatch(ev)
		}
	}
}

// start registers property observers and loads the source
func (e *MPVEngine) start() error {
	observers := map[int]string{
		observeDuration:     "duration",
		observePlaybackTime: "playback-time",
		observePause:        "pause",
	}
	for id, name := range observers {
		if err := e.ipcClient.ObserveProperty(id, name); err != nil {
			return fmt.Errorf("failed to observe %s: %w", name, err)
		}
	}
	return e.ipcClient.SendCommand("loadfile", e.source.URL, "replace")
}

// dispatch translates one mpv event into engine notifications
func (e *MPVEngine) dispatch(ev MPVEvent) {
	switch ev.Event {
	case "file-loaded":
		if !e.ready {
			e.ready = true
			log.Debug("MPV file loaded", "source", e.source.URL)
			e.listener.Ready()
		}
	case "property-change":
		e.propertyChange(ev)
	case "end-file":
		switch ev.Reason {
		case "error":
			e.listener.EngineError(fmt.Errorf("%w: %s", ErrPlaybackFailed, ev.FileError))
		case "eof":
			log.Info("MPV playback finished", "source", e.source.URL)
		default:
			log.Debug("MPV file ended", "reason", ev.Reason)
		}
	case "":
		if ev.Error != "" && ev.Error != "success" {
			log.Debug("MPV command failed", "request_id", ev.RequestID, "error", ev.Error)
		}
	default:
		log.Trace("Ignoring MPV event", "event", ev.Event)
	}
}

func (e *MPVEngine) propertyChange(ev MPVEvent) {
	// A null value means the property is currently unavailable, for example duration before a file is loaded
	if len(ev.Data) == 0 || string(ev.Data) == "null" {
		return
	}

	switch ev.Name {
	case "duration":
		if v, ok := decodeFloat(ev); ok {
			e.duration = v
		}
	case "playback-time":
		if v, ok := decodeFloat(ev); ok {
			e.position = v
			// mpv reports a position while paused and before the duration is known
			if e.ready && !e.paused && e.duration > 0 {
				e.listener.TimeUpdate(e.position, e.duration)
			}
		}
	case "pause":
		var paused bool
		if err := json.Unmarshal(ev.Data, &paused); err != nil {
			log.Warn("Failed to unmarshal pause state", "data", string(ev.Data))
			return
		}
		wasPaused := e.paused
		e.paused = paused
		if wasPaused && !paused && e.ready {
			e.listener.Playing()
		}
	}
}

func decodeFloat(ev MPVEvent) (float64, bool) {
	var value float64
	if err := json.Unmarshal(ev.Data, &value); err != nil {
		log.Warn("Failed to unmarshal event data", "name", ev.Name, "data", string(ev.Data))
		return 0, false
	}
	return value, true
}

// Play unpauses mpv.  Before the IPC connection is up the request is refused.
func (e *MPVEngine) Play() error {
	if !e.connected.Load() || e.ctx.Err() != nil {
		return fmt.Errorf("%w: mpv is not connected", playback.ErrAutoplayRejected)
	}
	if err := e.ipcClient.SetProperty("pause", false); err != nil {
		return fmt.Errorf("%w: %w", playback.ErrAutoplayRejected, err)
	}
	return nil
}

// Destroy asks mpv to quit, kills it if it doesn't, and removes the IPC socket.  Later calls do nothing.
func (e *MPVEngine) Destroy() error {
	var err error
	e.destroy.Do(func() {
		e.cancel()

		if e.connected.Load() {
			if qerr := e.ipcClient.SendCommand("quit"); qerr != nil {
				log.Debug("Failed to send quit to MPV", "error", qerr)
			}
		}
		_ = e.ipcClient.Close()

		if e.cmd != nil && e.cmd.Process != nil {
			select {
			case <-e.exited:
			case <-time.After(quitGracePeriod):
				log.Debug("MPV did not quit in time, killing it", "pid", e.cmd.Process.Pid)
				if kerr := e.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
					err = fmt.Errorf("failed to kill MPV: %w", kerr)
				}
			}
		}

		removeSocket(e.socketPath)
	})
	return err
}

// newSocketPath returns an IPC path unique to this process and engine instance
func newSocketPath(dir string) string {
	name := fmt.Sprintf("kiddo-player-%d-%d", os.Getpid(), socketCounter.Add(1))

	if runtime.GOOS == "windows" {
		// Windows uses named pipes instead of unix sockets
		return `\\.\pipe\` + name
	}

	if dir == "" {
		dir = os.Getenv("XDG_RUNTIME_DIR")
	}
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, name+".sock")
}

func removeSocket(path string) {
	if runtime.GOOS == "windows" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("Failed to remove MPV socket file", "path", path, "error", err)
	}
}
