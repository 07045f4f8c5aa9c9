// Package transport supplies api.Transport adapters over real
// connections: a portable net.Conn wrapper here, and a Linux raw-fd
// adapter in the unixfd subpackage for callers that want the
// non-blocking, syscall-level path the teacher's internal/transport
// package reaches for on Linux.
package transport

import (
	"errors"
	"io"
	"net"
)

// Conn adapts a net.Conn to api.Transport. It normalizes io.EOF to the
// link's (0, nil) EOF convention, and leaves every other error as-is so
// the link wraps it into KindIO.
type Conn struct {
	c net.Conn
}

// NewConn wraps an established net.Conn.
func NewConn(c net.Conn) *Conn {
	return &Conn{c: c}
}

func (t *Conn) Read(p []byte) (int, error) {
	n, err := t.c.Read(p)
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

func (t *Conn) Write(p []byte) (int, error) {
	return t.c.Write(p)
}

// Close releases the underlying connection.
func (t *Conn) Close() error {
	return t.c.Close()
}
