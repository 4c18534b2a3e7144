//go:build windows

package player

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/kiddolearn/kiddo-player/internal/log"
	"gopkg.in/natefinch/npipe.v2"
)

// dialIPC connects to the MPV named pipe
func dialIPC(ctx context.Context, path string) (net.Conn, error) {
	log.Trace("Connecting to Windows named pipe", "path", path)

	timeout := 2 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	conn, err := npipe.DialTimeout(path, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MPV pipe: %w", err)
	}
	return conn, nil
}
