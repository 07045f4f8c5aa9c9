// File: ws/handshake.go
// Author: rinelu <rinelu@users.noreply.github.com>
// License: Apache-2.0

package ws

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"strings"

	"github.com/rinelu/wen/api"
)

var headerTerminator = []byte("\r\n\r\n")

// Handshake reads an HTTP request prefix and validates it as a
// WebSocket upgrade. It requires the literal substrings "GET ",
// "Upgrade: websocket" (case-insensitive), "Connection: Upgrade"
// (case-insensitive), and "Sec-WebSocket-Version: 13", all present
// within the same buffered prefix; missing any of those is a permanent
// failure. The Sec-WebSocket-Key header is treated differently: while
// the rest of the header block is present but the key is not yet found,
// Handshake reports INCOMPLETE so more bytes can accumulate, rather than
// failing outright.
//
// consumed is 0 while INCOMPLETE (nothing is thrown away while still
// buffering) and equals len(in) once the handshake resolves to COMPLETE
// or FAILED, since at that point the entire buffered prefix has been
// consumed as the request.
func Handshake(state any, in []byte, out []byte) (consumed, produced int, status api.HandshakeStatus) {
	if len(in) > MaxHandshakeScratch {
		return len(in), 0, api.HandshakeFailed
	}

	end := bytes.Index(in, headerTerminator)
	if end < 0 {
		return 0, 0, api.HandshakeIncomplete
	}
	head := in[:end]

	if !bytes.HasPrefix(in, []byte("GET ")) ||
		!containsTokenCI(head, "Upgrade", "websocket") ||
		!containsTokenCI(head, "Connection", "Upgrade") ||
		!bytes.Contains(head, []byte("Sec-WebSocket-Version: 13")) {
		return len(in), 0, api.HandshakeFailed
	}

	key, ok := headerValue(head, "Sec-WebSocket-Key")
	if !ok {
		return 0, 0, api.HandshakeIncomplete
	}

	accept := ComputeAccept(key)
	resp := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + accept + "\r\n\r\n"

	n := copy(out, resp)
	return len(in), n, api.HandshakeComplete
}

// ComputeAccept derives the Sec-WebSocket-Accept value from a client's
// Sec-WebSocket-Key, per RFC 6455 section 1.3: SHA-1 of the key
// concatenated with GUID, base64 encoded.
func ComputeAccept(key string) string {
	sum := sha1.Sum([]byte(key + GUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// containsTokenCI reports whether headerName's value, read from the
// header block, contains token as a comma-separated item
// (case-insensitive).
func containsTokenCI(head []byte, headerName, token string) bool {
	value, ok := headerValue(head, headerName)
	if !ok {
		return false
	}
	token = strings.ToLower(token)
	for _, part := range strings.Split(value, ",") {
		if strings.ToLower(strings.TrimSpace(part)) == token {
			return true
		}
	}
	return false
}

// headerValue scans head line by line for a header named name
// (case-insensitive), returning its value with leading spaces stripped
// and terminated at CR or LF.
func headerValue(head []byte, name string) (string, bool) {
	prefix := strings.ToLower(name) + ":"
	for _, line := range bytes.Split(head, []byte("\r\n")) {
		s := string(line)
		if strings.HasPrefix(strings.ToLower(s), prefix) {
			v := strings.TrimLeft(s[len(prefix):], " ")
			if i := strings.IndexAny(v, "\r\n"); i >= 0 {
				v = v[:i]
			}
			return v, true
		}
	}
	return "", false
}
