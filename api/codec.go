// File: api/codec.go
// Author: rinelu <rinelu@users.noreply.github.com>
// License: Apache-2.0

package api

// HandshakeStatus is the result of one Codec.Handshake call.
type HandshakeStatus int

const (
	HandshakeIncomplete HandshakeStatus = iota
	HandshakeComplete
	HandshakeFailed
)

// DecodeStatus is the result of one Codec.Decode call. Decode never
// consumes input itself; the link decides how much of the buffer to
// advance based on the slice it emits and whatever frame length the
// codec recorded via FrameSink.
type DecodeStatus int

const (
	DecodeOK DecodeStatus = iota
	DecodeProtocolError
)

// FrameSink is the narrow capability a Codec's Decode method is given in
// place of a back-reference to the link: it can enqueue metadata events
// and mark how many further bytes belong to the current frame, without
// the codec ever holding a pointer to the link itself.
type FrameSink interface {
	// PushEvent enqueues a metadata event (FRAME, PING, PONG). Returns
	// false if the queue has no room.
	PushEvent(Event) bool
	// SetFrameLen records how many bytes, from the start of the buffer
	// handed to Decode, belong to the frame just recognized.
	SetFrameLen(n int)
	// FrameLen reports how many bytes of the current frame the link has
	// not yet sliced away. Zero means no frame is in progress, which is
	// how Decode tells a fresh header from a continuation window: once a
	// frame has been recognized, every later Decode call belonging to it
	// sees FrameLen() > 0 and must treat data as more of that frame's
	// bytes rather than reparsing a header that isn't there.
	FrameLen() int
}

// Codec is the three-operation contract a wire protocol supplies to the
// link: handshake, decode, encode. A Codec value is immutable and may be
// shared across links; per-link mutable scratch space is the opaque
// `state` every method receives, owned and allocated by the caller.
type Codec interface {
	// Handshake advances the protocol's opening exchange. It may
	// consume any prefix of in and may write any prefix of out.
	Handshake(state any, in []byte, out []byte) (consumed, produced int, status HandshakeStatus)

	// Decode inspects, but does not consume, the prefix of data passed
	// in. It may enqueue metadata events into sink and set the current
	// frame length via sink.SetFrameLen.
	Decode(state any, data []byte, sink FrameSink) DecodeStatus

	// Encode serializes one outbound message into out, returning the
	// number of bytes written. An *Error with Kind == KindOverflow is
	// returned if the message does not fit.
	Encode(state any, opcode byte, data []byte, out []byte) (n int, err error)
}
