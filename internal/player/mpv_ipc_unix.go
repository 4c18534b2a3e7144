//go:build !windows

package player

import (
	"context"
	"fmt"
	"net"

	"github.com/kiddolearn/kiddo-player/internal/log"
)

// dialIPC connects to the MPV unix domain socket
func dialIPC(ctx context.Context, path string) (net.Conn, error) {
	log.Trace("Connecting to Unix socket", "path", path)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MPV socket: %w", err)
	}
	return conn, nil
}
