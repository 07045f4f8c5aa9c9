// File: ws/frame.go
// Author: rinelu <rinelu@users.noreply.github.com>
// License: Apache-2.0

package ws

import (
	"encoding/binary"

	"github.com/rinelu/wen/api"
)

// Decode parses the prefix of one RFC 6455 frame out of data without
// consuming anything; the link advances its buffer based on the frame
// length this call records via sink.SetFrameLen.
//
// A frame larger than one poll's slice window is necessarily decoded
// across several calls. sink.FrameLen() is how Decode tells those calls
// apart from a fresh header: once a frame has been recognized and its
// total recorded, FrameLen() stays positive for every subsequent call
// that still belongs to it, and Decode short-circuits immediately
// rather than reinterpreting payload bytes as a new header. Recognition
// itself only needs the fixed-size header and mask key, not the whole
// payload, so frame_len is set well before a large frame is fully
// buffered.
//
// Masking must be set (this is a server-side codec); an unmasked frame
// is a protocol violation. The decoder never unmasks the payload itself
// — it leaves the mask key and masked bytes in place, and the
// application performs the XOR when it reads the slice, keeping Decode
// pure inspection as the codec contract requires.
func Decode(state any, data []byte, sink api.FrameSink) api.DecodeStatus {
	if sink.FrameLen() > 0 {
		// Mid-frame continuation: data holds more mask/payload bytes of
		// a frame whose header was already recognized on an earlier
		// call. There is no header here to parse.
		return api.DecodeOK
	}

	if len(data) < 2 {
		return api.DecodeOK
	}

	fin := data[0]&0x80 != 0
	opcode := data[0] & 0x0F
	masked := data[1]&0x80 != 0
	if !masked {
		return api.DecodeProtocolError
	}

	lenField := int(data[1] & 0x7F)
	offset := 2
	var payloadLen int64
	switch lenField {
	case 126:
		if len(data) < offset+2 {
			return api.DecodeOK
		}
		payloadLen = int64(binary.BigEndian.Uint16(data[offset:]))
		offset += 2
	case 127:
		if len(data) < offset+8 {
			return api.DecodeOK
		}
		payloadLen = int64(binary.BigEndian.Uint64(data[offset:]))
		offset += 8
	default:
		payloadLen = int64(lenField)
	}

	isControl := opcode == OpcodeClose || opcode == OpcodePing || opcode == OpcodePong
	if isControl && (!fin || payloadLen > MaxControlPayload) {
		return api.DecodeProtocolError
	}

	offset += 4 // mask key, always present since masked == true here
	if len(data) < offset {
		return api.DecodeOK
	}
	total := offset + int(payloadLen)

	sink.PushEvent(api.Event{
		Type: api.EventFrame,
		Frame: api.Frame{
			Fin:        fin,
			Masked:     masked,
			Opcode:     opcode,
			PayloadLen: payloadLen,
		},
	})
	switch opcode {
	case OpcodePing:
		sink.PushEvent(api.Event{Type: api.EventPing})
	case OpcodePong:
		sink.PushEvent(api.Event{Type: api.EventPong})
	}
	sink.SetFrameLen(total)
	return api.DecodeOK
}

// Encode serializes one unmasked server-to-client frame: FIN always
// set, opcode as given, length encoded per RFC 6455 section 5.2.
func Encode(state any, opcode byte, data []byte, out []byte) (int, error) {
	plen := len(data)
	isControl := opcode == OpcodeClose || opcode == OpcodePing || opcode == OpcodePong
	if isControl && plen > MaxControlPayload {
		return 0, api.NewError(api.KindProtocol, "ws: control frame payload exceeds 125 bytes")
	}

	var hdr [10]byte
	hdr[0] = 0x80 | (opcode & 0x0F)
	var hdrLen int
	switch {
	case plen <= 125:
		hdr[1] = byte(plen)
		hdrLen = 2
	case plen <= 0xFFFF:
		hdr[1] = 126
		binary.BigEndian.PutUint16(hdr[2:], uint16(plen))
		hdrLen = 4
	default:
		hdr[1] = 127
		binary.BigEndian.PutUint64(hdr[2:], uint64(plen))
		hdrLen = 10
	}

	total := hdrLen + plen
	if total > len(out) {
		return 0, api.NewError(api.KindOverflow, "ws: encoded frame exceeds destination capacity")
	}

	copy(out[:hdrLen], hdr[:hdrLen])
	copy(out[hdrLen:total], data)
	return total, nil
}
