// File: ws/codec.go
// Author: rinelu <rinelu@users.noreply.github.com>
// License: Apache-2.0

package ws

import "github.com/rinelu/wen/api"

// Codec is the stateless api.Codec vtable for the reference WebSocket
// instantiation. It carries no fields, so a single Codec{} value may be
// shared across every link that speaks this protocol, matching the
// "codec struct is immutable and may be shared across links" rule.
type Codec struct{}

func (Codec) Handshake(state any, in []byte, out []byte) (int, int, api.HandshakeStatus) {
	return Handshake(state, in, out)
}

func (Codec) Decode(state any, data []byte, sink api.FrameSink) api.DecodeStatus {
	return Decode(state, data, sink)
}

func (Codec) Encode(state any, opcode byte, data []byte, out []byte) (int, error) {
	return Encode(state, opcode, data, out)
}

var _ api.Codec = Codec{}
