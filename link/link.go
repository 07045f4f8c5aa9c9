// File: link/link.go
// Package link implements the pull-based poll engine that drives a
// single bidirectional byte-stream connection through the
// handshake/open/closing/closed state machine: RX/TX buffering,
// flush-before-read discipline, arena-backed slice emission, and the
// bounded event queue. It plays the role the teacher's
// protocol.WSConnection plays, redesigned around a single synchronous
// Poll call instead of goroutines reading channels — this core has no
// background work of any kind.
// Author: rinelu <rinelu@users.noreply.github.com>
// License: Apache-2.0
package link

import (
	"github.com/rinelu/wen/api"
	"github.com/rinelu/wen/arena"
	"github.com/rinelu/wen/equeue"
)

// Stats is a passive snapshot of link traffic counters, read at any
// time by the single thread that owns the link. There is no locking:
// per the concurrency model, a link is confined to one thread for its
// entire lifetime.
type Stats struct {
	BytesIn   int64
	BytesOut  int64
	SlicesIn  int64
	FramesOut int64
}

// Link is the connection object: state, transport, RX/TX buffers, the
// active frame-remaining counter, the attached codec and its opaque
// state, the arena, the event queue, and the slice/close bookkeeping
// flags.
type Link struct {
	transport api.Transport
	cfg       Config

	st connState

	rx    []byte
	rxLen int
	tx    []byte
	txLen int

	frameLen int

	codec      api.Codec
	codecState any

	arena  *arena.Arena
	events *equeue.Queue

	sliceOutstanding bool
	closeQueued      bool

	stats Stats
}

// New creates a Link in state INIT over the given transport. No codec
// is attached yet; AttachCodec must be called before the first Poll
// that needs to do real work (Poll before attach surfaces
// ERROR(UNSUPPORTED), not a panic, since that is a runtime condition a
// caller might retry past, not a programmer bug).
func New(transport api.Transport, cfg Config) *Link {
	cfg = cfg.validated()
	return &Link{
		transport: transport,
		cfg:       cfg,
		st:        stateInit,
		rx:        make([]byte, cfg.RXBuffer),
		tx:        make([]byte, cfg.TXBuffer),
		arena:     arena.New(cfg.MaxSlice),
		events:    equeue.New(cfg.EventQueueCap),
	}
}

// AttachCodec binds the codec trio and its per-link opaque state,
// transitioning INIT -> HANDSHAKE. It fails with KindState if the link
// is not in INIT (a codec may be attached at most once).
func (l *Link) AttachCodec(codec api.Codec, codecState any) error {
	if l.st != stateInit {
		return api.NewError(api.KindState, "link: codec already attached or link not in INIT state")
	}
	l.codec = codec
	l.codecState = codecState
	l.st = stateHandshake
	return nil
}

// Stats returns a snapshot of the link's traffic counters.
func (l *Link) Stats() Stats { return l.stats }

// Send encodes one outbound message into the tail of the TX buffer,
// advancing the buffered length only on encoder success. It does not
// write to the transport itself; the next Poll flushes it. It fails
// with KindOverflow if the TX buffer has no room, or if the codec's
// Encode reports the message would not fit.
func (l *Link) Send(opcode byte, data []byte) error {
	if l.codec == nil {
		return api.NewError(api.KindUnsupported, "link: no codec attached")
	}
	room := len(l.tx) - l.txLen
	if room <= 0 {
		return api.NewError(api.KindOverflow, "link: tx buffer full")
	}
	n, err := l.codec.Encode(l.codecState, opcode, data, l.tx[l.txLen:])
	if err != nil {
		return err
	}
	l.txLen += n
	l.stats.BytesOut += int64(n)
	l.stats.FramesOut++
	return nil
}

// Close is caller-initiated shutdown. If already CLOSED it is a no-op.
// It refuses with KindState if there is unflushed TX data, since a
// protocol-level close frame must be the next thing to go out. On
// success it moves to CLOSING and, if the attached codec can encode a
// frame for opcode (the control opcode appropriate to the wire
// protocol in use — the core stays protocol-agnostic, so the caller
// supplies it), appends a close frame carrying code into TX. If no
// codec is attached, or the encoder declines, the close frame is simply
// omitted and the state transition still holds.
func (l *Link) Close(code uint16, opcode byte) error {
	if l.st == stateClosed {
		return nil
	}
	if l.txLen != 0 {
		return api.NewError(api.KindState, "link: cannot close with pending tx data")
	}
	l.st = stateClosing
	if l.codec != nil {
		payload := []byte{byte(code >> 8), byte(code)}
		n, err := l.codec.Encode(l.codecState, opcode, payload, l.tx[l.txLen:])
		if err == nil {
			l.txLen += n
		}
	}
	return nil
}

// Release returns a delivered SLICE's arena memory, rolling the arena
// back to the slice's snapshot. Calling it with no outstanding slice is
// a programmer error and panics rather than silently ignoring it.
func (l *Link) Release(s api.Slice) {
	if !l.sliceOutstanding {
		panic("link: release called with no outstanding slice")
	}
	l.arena.Reset(s.Snapshot)
	l.sliceOutstanding = false
}
