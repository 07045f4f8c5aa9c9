// File: link/link_test.go
// Author: rinelu <rinelu@users.noreply.github.com>
// License: Apache-2.0

package link

import (
	"testing"

	"github.com/rinelu/wen/api"
	"github.com/rinelu/wen/fake"
	"github.com/rinelu/wen/ws"
)

const validHandshake = "GET /chat HTTP/1.1\r\n" +
	"Host: example.com\r\n" +
	"Upgrade: websocket\r\n" +
	"Connection: Upgrade\r\n" +
	"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
	"Sec-WebSocket-Version: 13\r\n\r\n"

func maskedFrame(opcode byte, payload []byte, mask [4]byte) []byte {
	var out []byte
	out = append(out, 0x80|opcode)
	plen := len(payload)
	if plen > 125 {
		panic("maskedFrame: test helper only supports small payloads")
	}
	out = append(out, 0x80|byte(plen))
	out = append(out, mask[:]...)
	masked := make([]byte, plen)
	for i, b := range payload {
		masked[i] = b ^ mask[i%4]
	}
	return append(out, masked...)
}

// openLink drives a fresh link through the handshake and flushes the
// 101 response, leaving it in OPEN state ready for frame traffic.
func openLink(t *testing.T, cfg Config) (*Link, *fake.Transport) {
	t.Helper()
	tr := fake.NewTransport()
	tr.Feed([]byte(validHandshake))

	lk := New(tr, cfg)
	if err := lk.AttachCodec(ws.Codec{}, ws.NewState()); err != nil {
		t.Fatalf("AttachCodec: %v", err)
	}

	ev := lk.Poll()
	if ev.Type != api.EventOpen {
		t.Fatalf("handshake poll = %+v, want OPEN", ev)
	}

	ev = lk.Poll()
	if ev.Type != api.EventNone {
		t.Fatalf("flush poll = %+v, want NONE", ev)
	}
	return lk, tr
}

func TestOpenSliceClose(t *testing.T) {
	lk, tr := openLink(t, DefaultConfig())

	frame := maskedFrame(ws.OpcodeText, []byte("hello"), [4]byte{1, 2, 3, 4})
	tr.Feed(frame)

	ev := lk.Poll()
	if ev.Type != api.EventSlice {
		t.Fatalf("decode poll = %+v, want SLICE", ev)
	}
	if string(ev.Slice.Data) != string(frame) {
		t.Fatalf("slice data = %q, want the raw frame %q", ev.Slice.Data, frame)
	}
	if ev.Slice.Flags != api.FlagBegin|api.FlagEnd {
		t.Fatalf("slice flags = %v, want BEGIN|END", ev.Slice.Flags)
	}
	lk.Release(ev.Slice)

	ev = lk.Poll()
	if ev.Type != api.EventFrame {
		t.Fatalf("queued poll = %+v, want FRAME", ev)
	}
	if ev.Frame.Opcode != ws.OpcodeText || ev.Frame.PayloadLen != 5 {
		t.Fatalf("frame metadata = %+v, unexpected", ev.Frame)
	}

	if err := lk.Close(1000, ws.OpcodeClose); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ev = lk.Poll()
	if ev.Type != api.EventNone {
		t.Fatalf("close-flush poll = %+v, want NONE", ev)
	}

	ev = lk.Poll()
	if ev.Type != api.EventClose {
		t.Fatalf("final poll = %+v, want CLOSE", ev)
	}

	ev = lk.Poll()
	if ev.Type != api.EventNone {
		t.Fatalf("post-close poll = %+v, want NONE forever", ev)
	}
}

func TestFlushPrecedesRead(t *testing.T) {
	lk, tr := openLink(t, DefaultConfig())

	if err := lk.Send(ws.OpcodeText, []byte("hi")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	frame := maskedFrame(ws.OpcodeText, []byte("queued"), [4]byte{9, 9, 9, 9})
	tr.Feed(frame)

	ev := lk.Poll()
	if ev.Type != api.EventNone {
		t.Fatalf("flush poll = %+v, want NONE (flush must win over read)", ev)
	}
	written := tr.WrittenBytes()
	wantFrame := string([]byte{0x80 | ws.OpcodeText, 2, 'h', 'i'})
	if len(written) < len(wantFrame) || string(written[len(written)-len(wantFrame):]) != wantFrame {
		t.Fatal("expected the pending Send to have been flushed to the transport")
	}

	ev = lk.Poll()
	if ev.Type != api.EventSlice {
		t.Fatalf("follow-up poll = %+v, want SLICE now that TX is drained", ev)
	}
}

func TestDecodeErrorBecomesEvent(t *testing.T) {
	lk, tr := openLink(t, DefaultConfig())

	unmasked := []byte{0x80 | ws.OpcodeText, 0x05, 'h', 'e', 'l', 'l', 'o'}
	tr.Feed(unmasked)

	ev := lk.Poll()
	if ev.Type != api.EventError || ev.Err == nil || ev.Err.Kind != api.KindProtocol {
		t.Fatalf("poll = %+v, want ERROR(PROTOCOL)", ev)
	}
}

func TestPollPanicsWithSliceOutstanding(t *testing.T) {
	lk, tr := openLink(t, DefaultConfig())

	first := maskedFrame(ws.OpcodeText, []byte("a"), [4]byte{1, 1, 1, 1})
	tr.Feed(first)

	ev := lk.Poll()
	if ev.Type != api.EventSlice {
		t.Fatalf("first decode poll = %+v, want SLICE", ev)
	}
	// Drain the FRAME metadata event queued alongside the slice so the
	// next poll actually reaches the decoder again instead of draining
	// the queue.
	ev = lk.Poll()
	if ev.Type != api.EventFrame {
		t.Fatalf("expected queued FRAME before the panic-triggering poll, got %+v", ev)
	}

	second := maskedFrame(ws.OpcodeText, []byte("b"), [4]byte{2, 2, 2, 2})
	tr.Feed(second)

	defer func() {
		if recover() == nil {
			t.Fatal("Poll should panic when invoked with a slice still outstanding")
		}
	}()
	lk.Poll()
}

// TestSliceCappedAtMaxSlice matches the spec's "slice size ceiling"
// scenario: a frame whose payload exceeds MAX_SLICE is delivered as
// several capped SLICE events rather than one. The first slice has
// length exactly MAX_SLICE, a FRAME metadata event describing the whole
// frame is queued alongside it (recognized from the header alone, though
// the decoder is only shown the first MAX_SLICE bytes), and every later poll keeps
// decoding the same already-buffered frame instead of misreading its
// own continuation bytes as a new header.
func TestSliceCappedAtMaxSlice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSlice = 8
	lk, tr := openLink(t, cfg)

	payload := []byte("0123456789abcdef") // 16 bytes, well past the 8-byte cap
	frame := maskedFrame(ws.OpcodeBinary, payload, [4]byte{3, 3, 3, 3})
	tr.Feed(frame)

	ev := lk.Poll()
	if ev.Type != api.EventSlice {
		t.Fatalf("poll 1 = %+v, want SLICE", ev)
	}
	if len(ev.Slice.Data) != cfg.MaxSlice {
		t.Fatalf("first slice len = %d, want %d (capped)", len(ev.Slice.Data), cfg.MaxSlice)
	}
	got := append([]byte{}, ev.Slice.Data...)
	lk.Release(ev.Slice)

	ev = lk.Poll()
	if ev.Type != api.EventFrame {
		t.Fatalf("poll 2 = %+v, want FRAME describing the whole 22-byte frame", ev)
	}
	if int(ev.Frame.PayloadLen) != len(payload) || ev.Frame.Opcode != ws.OpcodeBinary {
		t.Fatalf("frame metadata = %+v, unexpected", ev.Frame)
	}

	ev = lk.Poll()
	if ev.Type != api.EventSlice {
		t.Fatalf("poll 3 = %+v, want second SLICE, not an error", ev)
	}
	if len(ev.Slice.Data) != cfg.MaxSlice {
		t.Fatalf("second slice len = %d, want %d", len(ev.Slice.Data), cfg.MaxSlice)
	}
	got = append(got, ev.Slice.Data...)
	lk.Release(ev.Slice)

	ev = lk.Poll()
	if ev.Type != api.EventSlice {
		t.Fatalf("poll 4 = %+v, want final SLICE draining the frame remainder", ev)
	}
	wantFinalLen := len(frame) - 2*cfg.MaxSlice
	if len(ev.Slice.Data) != wantFinalLen {
		t.Fatalf("final slice len = %d, want %d", len(ev.Slice.Data), wantFinalLen)
	}
	got = append(got, ev.Slice.Data...)
	lk.Release(ev.Slice)

	if string(got) != string(frame) {
		t.Fatalf("reassembled slices = % x, want the raw frame % x", got, frame)
	}
}
