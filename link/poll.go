package link

import "github.com/rinelu/wen/api"

// Poll is the entire engine: drain the event queue, flush TX, read RX,
// then advance the handshake or decoder, producing at most one event.
// Ordering is load-bearing and follows the poll-step contract exactly:
// queue drain first, then terminal check, then codec presence, then
// flush-before-read, then a single bounded read, then the appropriate
// state handler.
func (l *Link) Poll() api.Event {
	// 1. Drain queue first.
	if ev, ok := l.events.Pop(); ok {
		if ev.Type == api.EventClose && l.st != stateClosed {
			l.st = stateClosed
			l.arena = nil
		}
		return ev
	}

	// 2. Terminate if closed.
	if l.st == stateClosed {
		return api.Event{Type: api.EventNone}
	}

	// 3. Require codec.
	if l.codec == nil {
		return api.Event{Type: api.EventError, Err: api.NewError(api.KindUnsupported, "link: no codec attached")}
	}

	// 4. Flush TX.
	if l.txLen > 0 {
		return l.flushTX()
	}

	// 5. Read RX. Only an IO error here short-circuits the poll call;
	// EOF and ordinary reads fall through to the same call's state
	// handler, per the single-poll-step data flow (flush, then read,
	// then handshake-or-decode, all in one call).
	//
	// Skipped when we are already mid-frame and rx already holds enough
	// buffered bytes to cut the next bounded slice: a message longer
	// than MAX_SLICE drains across several Poll calls purely from what a
	// single earlier read already delivered, and forcing another read
	// attempt here would demand fresh wire data that may never come
	// (or, against a non-blocking transport, spuriously fail as IO).
	if l.rxLen < len(l.rx) && !l.haveSliceReady() {
		if ev, isErr := l.readRX(); isErr {
			return ev
		}
	}

	// 6/7. Run the appropriate state handler.
	if l.st == stateHandshake {
		return l.runHandshake()
	}
	return l.runDecode()
}

func (l *Link) flushTX() api.Event {
	n, err := l.transport.Write(l.tx[:l.txLen])
	if err != nil {
		return api.Event{Type: api.EventError, Err: api.NewError(api.KindIO, err.Error())}
	}
	if n < l.txLen {
		copy(l.tx, l.tx[n:l.txLen])
		l.txLen -= n
		return api.Event{Type: api.EventNone}
	}
	l.txLen = 0
	if l.st == stateClosing && !l.closeQueued && !l.sliceOutstanding {
		l.events.Push(api.Event{Type: api.EventClose})
		l.closeQueued = true
	}
	return api.Event{Type: api.EventNone}
}

// readRX performs the single bounded read for this poll. isErr is true
// only for a genuine IO failure, which ends the poll call immediately;
// EOF (n == 0) and an ordinary partial/full read both return false so
// the caller falls through to the handshake-or-decode state handler
// within the same poll call.
func (l *Link) readRX() (api.Event, bool) {
	n, err := l.transport.Read(l.rx[l.rxLen:])
	if err != nil {
		return api.Event{Type: api.EventError, Err: api.NewError(api.KindIO, err.Error())}, true
	}
	if n == 0 {
		l.st = stateClosing
		if !l.sliceOutstanding && !l.closeQueued {
			l.events.Push(api.Event{Type: api.EventClose})
			l.closeQueued = true
		}
		return api.Event{}, false
	}
	l.rxLen += n
	return api.Event{}, false
}

func (l *Link) runHandshake() api.Event {
	consumed, produced, status := l.codec.Handshake(l.codecState, l.rx[:l.rxLen], l.tx[l.txLen:])
	l.txLen += produced
	if consumed > 0 {
		copy(l.rx, l.rx[consumed:l.rxLen])
		l.rxLen -= consumed
	}
	switch status {
	case api.HandshakeComplete:
		l.st = stateOpen
		return api.Event{Type: api.EventOpen}
	case api.HandshakeFailed:
		return api.Event{Type: api.EventError, Err: api.NewError(api.KindProtocol, "link: handshake failed")}
	default:
		return api.Event{Type: api.EventNone}
	}
}

// haveSliceReady reports whether rx already holds enough bytes to cut
// the next slice of an in-progress frame without a new read.
func (l *Link) haveSliceReady() bool {
	if l.st == stateHandshake || l.frameLen == 0 {
		return false
	}
	want := minInt(l.frameLen, l.cfg.MaxSlice)
	return l.rxLen >= want
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// runDecode implements the codec-advance + slice-emission half of the
// poll step. At most one SLICE is ever produced per call, drawn from
// the RX prefix and copied into the arena.
func (l *Link) runDecode() api.Event {
	want := l.rxLen
	if l.frameLen > 0 {
		want = minInt(l.frameLen, l.cfg.MaxSlice)
	} else {
		want = minInt(l.rxLen, l.cfg.MaxSlice)
	}
	if want > l.rxLen {
		want = l.rxLen
	}

	sink := &frameSink{q: l.events, frameLen: &l.frameLen}
	status := l.codec.Decode(l.codecState, l.rx[:want], sink)
	if status == api.DecodeProtocolError {
		return api.Event{Type: api.EventError, Err: api.NewError(api.KindProtocol, "link: decode reported malformed data")}
	}

	sliceLen := want
	if l.frameLen > 0 && l.frameLen < sliceLen {
		sliceLen = l.frameLen
	}
	if sliceLen > l.cfg.MaxSlice {
		sliceLen = l.cfg.MaxSlice
	}
	if sliceLen > l.rxLen {
		sliceLen = l.rxLen
	}
	if sliceLen == 0 {
		return api.Event{Type: api.EventNone}
	}

	if l.sliceOutstanding {
		panic("link: poll invoked while a slice is still outstanding")
	}

	// The slice itself bypasses the generic event ring: it is always
	// returned as this poll's result rather than queued behind
	// whatever FRAME/PING/PONG metadata Decode just enqueued, which
	// drains on later polls. We still honor the queue's capacity
	// ceiling as the slice's own OVERFLOW condition, matching "push a
	// SLICE event... on push failure, roll the arena back".
	if l.events.Len() >= l.events.Cap() {
		return api.Event{Type: api.EventError, Err: api.NewError(api.KindOverflow, "link: event queue full")}
	}

	snap := l.arena.Snapshot()
	dst := l.arena.Alloc(sliceLen)
	if dst == nil {
		return api.Event{Type: api.EventError, Err: api.NewError(api.KindOverflow, "link: arena exhausted for slice allocation")}
	}
	copy(dst, l.rx[:sliceLen])

	copy(l.rx, l.rx[sliceLen:l.rxLen])
	l.rxLen -= sliceLen
	l.sliceOutstanding = true
	if l.frameLen > 0 {
		l.frameLen -= sliceLen
	}
	l.stats.BytesIn += int64(sliceLen)
	l.stats.SlicesIn++

	return api.Event{
		Type: api.EventSlice,
		Slice: api.Slice{
			Data:     dst,
			Flags:    api.FlagBegin | api.FlagEnd,
			Snapshot: snap,
		},
	}
}
