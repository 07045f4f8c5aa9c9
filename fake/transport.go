// Package fake supplies scriptable api.Transport doubles for link
// tests, grounded on the teacher's fake.Transport: a queued buffer of
// inbound bytes, a record of outbound writes, and settable errors for
// each operation, rebuilt around the link's single-buffer Read/Write
// contract instead of the teacher's batched [][]byte Send/Recv.
package fake

import (
	"errors"
	"sync"
)

// ErrWouldBlock is returned from Read when the transport has no queued
// data and has not been told to report EOF. A real non-blocking
// socket reports EAGAIN the same way; the link treats both as an IO
// error, never as end-of-stream.
var ErrWouldBlock = errors.New("fake: read would block")

// Transport is a fully scriptable api.Transport double.
type Transport struct {
	mu sync.Mutex

	rx  []byte
	eof bool

	tx [][]byte

	readErr  error
	writeErr error

	writeLimit int // if > 0, caps bytes accepted per Write call
}

// NewTransport returns an empty transport: a Read before any data is
// queued reports ErrWouldBlock, not EOF.
func NewTransport() *Transport {
	return &Transport{}
}

// Feed appends bytes to the end of the queue for future Read calls to
// return.
func (t *Transport) Feed(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rx = append(t.rx, data...)
}

// SetEOF arms the transport so that once its fed bytes are exhausted,
// Read reports (0, nil) instead of ErrWouldBlock.
func (t *Transport) SetEOF() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.eof = true
}

// SetReadError forces every subsequent Read to fail with err.
func (t *Transport) SetReadError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readErr = err
}

// SetWriteError forces every subsequent Write to fail with err.
func (t *Transport) SetWriteError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeErr = err
}

// SetWriteLimit caps how many bytes a single Write call accepts,
// letting tests exercise the link's short-write compaction path. Zero
// means unlimited.
func (t *Transport) SetWriteLimit(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeLimit = n
}

func (t *Transport) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.readErr != nil {
		return 0, t.readErr
	}
	if len(t.rx) == 0 {
		if t.eof {
			return 0, nil
		}
		return 0, ErrWouldBlock
	}
	n := copy(p, t.rx)
	t.rx = t.rx[n:]
	return n, nil
}

func (t *Transport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.writeErr != nil {
		return 0, t.writeErr
	}
	n := len(p)
	if t.writeLimit > 0 && n > t.writeLimit {
		n = t.writeLimit
	}
	buf := make([]byte, n)
	copy(buf, p[:n])
	t.tx = append(t.tx, buf)
	return n, nil
}

// Written returns every chunk accepted by Write, in order.
func (t *Transport) Written() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.tx))
	copy(out, t.tx)
	return out
}

// WrittenBytes concatenates every chunk accepted by Write.
func (t *Transport) WrittenBytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []byte
	for _, c := range t.tx {
		out = append(out, c...)
	}
	return out
}
