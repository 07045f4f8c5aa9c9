//go:build linux

// Package unixfd adapts a non-blocking raw file descriptor to
// api.Transport, grounded on the teacher's linuxTransport, which drove
// a raw socket fd directly through golang.org/x/sys/unix rather than
// net.Conn. Unlike the teacher's Sendmsg/Recvmsg batch calls, the link
// only ever issues one read or one write per poll step, so this
// adapter is built on plain unix.Read/unix.Write.
//
// Per the "would-block is an IO error" rule for non-blocking
// transports, EAGAIN/EWOULDBLOCK is surfaced as an error from Read
// rather than silently translated to (0, nil); only a genuine
// zero-byte read (peer half-close) reports EOF.
package unixfd

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// FD adapts a non-blocking socket file descriptor to api.Transport.
type FD struct {
	fd     int
	closed bool
}

// New wraps an already-open, already-non-blocking file descriptor.
// Ownership of fd transfers to the FD: Close closes it.
func New(fd int) *FD {
	return &FD{fd: fd}
}

// Dial opens a non-blocking TCP client socket and connects it,
// mirroring the teacher's socket/setsockopt sequence.
func Dial(addr unix.Sockaddr) (*FD, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("unixfd: socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("unixfd: setsockopt TCP_NODELAY: %w", err)
	}
	if err := unix.Connect(fd, addr); err != nil && err != unix.EINPROGRESS {
		unix.Close(fd)
		return nil, fmt.Errorf("unixfd: connect: %w", err)
	}
	return &FD{fd: fd}, nil
}

func (t *FD) Read(p []byte) (int, error) {
	if t.closed {
		return 0, fmt.Errorf("unixfd: read on closed fd")
	}
	n, err := unix.Read(t.fd, p)
	if err != nil {
		return 0, fmt.Errorf("unixfd: read: %w", err)
	}
	return n, nil
}

func (t *FD) Write(p []byte) (int, error) {
	if t.closed {
		return 0, fmt.Errorf("unixfd: write on closed fd")
	}
	n, err := unix.Write(t.fd, p)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, fmt.Errorf("unixfd: write would block: %w", err)
		}
		return 0, fmt.Errorf("unixfd: write: %w", err)
	}
	return n, nil
}

// Close closes the underlying socket.
func (t *FD) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return unix.Close(t.fd)
}
