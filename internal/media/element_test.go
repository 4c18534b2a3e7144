package media

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kiddolearn/kiddo-player/internal/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loadResult struct {
	loaded bool
	err    error
}

type chanListener chan loadResult

func (c chanListener) LoadedMetadata() { c <- loadResult{loaded: true} }
func (c chanListener) MediaError(err error) { c <- loadResult{err: err} }

func waitResult(t *testing.T, c chanListener) loadResult {
	t.Helper()
	select {
	case r := <-c:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for media notification")
		return loadResult{}
	}
}

func newMediaServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/lesson.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/get-only.webm", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		assert.Equal(t, "bytes=0-0", r.Header.Get("Range"))
		w.Header().Set("Content-Type", "video/webm")
		w.WriteHeader(http.StatusPartialContent)
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/ua.mp4", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "kiddo-test" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestElementHTTPProbe(t *testing.T) {
	srv := newMediaServer(t)

	tests := []struct {
		name    string
		path    string
		opts    []Option
		wantErr bool
	}{
		{name: "reachable media", path: "/lesson.mp4"},
		{name: "falls back to ranged GET", path: "/get-only.webm"},
		{name: "missing media", path: "/missing.mp4", wantErr: true},
		{name: "html page is not media", path: "/login", wantErr: true},
		{name: "user agent is sent", path: "/ua.mp4", opts: []Option{WithUserAgent("kiddo-test")}},
		{name: "probe disabled skips checks", path: "/missing.mp4", opts: []Option{WithProbe(false)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewElement(append([]Option{WithHTTPClient(srv.Client())}, tt.opts...)...)
			results := make(chanListener, 1)
			detach := e.Listen(results)
			defer detach()

			e.Attach(playback.NewSource(srv.URL + tt.path))
			require.NoError(t, e.Load())

			r := waitResult(t, results)
			if tt.wantErr {
				assert.Error(t, r.err)
				assert.False(t, r.loaded)
			} else {
				assert.NoError(t, r.err)
				assert.True(t, r.loaded)
			}
		})
	}
}

func TestElementLocalFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lesson.ogg")
	require.NoError(t, os.WriteFile(path, []byte("ogg"), 0600))

	tests := []struct {
		name    string
		src     string
		wantErr bool
	}{
		{name: "plain path", src: path},
		{name: "file url", src: "file://" + filepath.ToSlash(path)},
		{name: "missing file", src: filepath.Join(dir, "missing.ogg"), wantErr: true},
		{name: "directory", src: dir, wantErr: true},
		{name: "streaming scheme passes through", src: "rtmp://live.example.com/lesson"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewElement()
			results := make(chanListener, 1)
			e.Listen(results)

			e.Attach(playback.NewSource(tt.src))
			require.NoError(t, e.Load())

			r := waitResult(t, results)
			assert.Equal(t, tt.wantErr, r.err != nil, "error: %v", r.err)
		})
	}
}

func TestElementLoadWithoutSource(t *testing.T) {
	e := NewElement()
	assert.True(t, errors.Is(e.Load(), ErrNoSource))
}

func TestElementDetachedListenerIsNotNotified(t *testing.T) {
	e := NewElement(WithProbe(false))
	detached := make(chanListener, 1)
	attached := make(chanListener, 1)

	detach := e.Listen(detached)
	e.Listen(attached)
	detach()
	detach()

	e.Attach(playback.NewSource("lesson.mp4"))
	require.NoError(t, e.Load())

	assert.True(t, waitResult(t, attached).loaded)
	select {
	case r := <-detached:
		t.Fatalf("detached listener was notified: %+v", r)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestElementAttachSupersedesLoad(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	e := NewElement(WithHTTPClient(srv.Client()))
	results := make(chanListener, 2)
	e.Listen(results)

	e.Attach(playback.NewSource(srv.URL + "/slow.mp4"))
	require.NoError(t, e.Load())
	e.Attach(playback.NewSource("rtmp://live.example.com/next"))
	require.NoError(t, e.Load())

	assert.True(t, waitResult(t, results).loaded)
	select {
	case r := <-results:
		t.Fatalf("superseded load reported: %+v", r)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, "rtmp://live.example.com/next", e.Source().URL)
}
