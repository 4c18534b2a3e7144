//go:build !windows

package player

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shortSocketPath keeps the path under the unix socket length limit
func shortSocketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "kp")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "mpv.sock")
}

func TestMPVIPCClient(t *testing.T) {
	path := shortSocketPath(t)
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	received := make(chan map[string]any, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		line, err := bufio.NewReader(conn).ReadBytes('\n')
		if err != nil {
			return
		}
		var cmd map[string]any
		if json.Unmarshal(line, &cmd) == nil {
			received <- cmd
		}

		_, _ = conn.Write([]byte("not json\n"))
		_, _ = conn.Write([]byte(`{"event":"property-change","id":2,"name":"playback-time","data":1.5}` + "\n"))
		// Hold the connection open until the client goes away
		_, _ = bufio.NewReader(conn).ReadBytes('\n')
	}()

	client := NewMPVIPCClient(path)
	assert.ErrorIs(t, client.SendCommand("quit"), ErrNotConnected)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.WaitForConnection(ctx, 10, 50*time.Millisecond))

	require.NoError(t, client.SendCommand("loadfile", "lesson.mp4", "replace"))

	select {
	case cmd := <-received:
		assert.Equal(t, []any{"loadfile", "lesson.mp4", "replace"}, cmd["command"])
	case <-ctx.Done():
		t.Fatal("server never received the command")
	}

	select {
	case ev := <-client.Events():
		assert.Equal(t, "property-change", ev.Event)
		assert.Equal(t, 2, ev.ID)
		assert.Equal(t, "playback-time", ev.Name)
		assert.JSONEq(t, "1.5", string(ev.Data))
	case <-ctx.Done():
		t.Fatal("no event received")
	}

	require.NoError(t, client.Close())
	assert.NoError(t, client.Close())

	for {
		select {
		case _, ok := <-client.Events():
			if !ok {
				return
			}
		case <-ctx.Done():
			t.Fatal("events channel was not closed")
		}
	}
}

func TestWaitForConnectionGivesUp(t *testing.T) {
	client := NewMPVIPCClient(shortSocketPath(t))

	err := client.WaitForConnection(context.Background(), 3, 10*time.Millisecond)

	assert.Error(t, err)
}
