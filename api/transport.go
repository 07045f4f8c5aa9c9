// File: api/transport.go
// Author: rinelu <rinelu@users.noreply.github.com>
// License: Apache-2.0

package api

// Transport is the pair of blocking byte-transport callbacks the link
// consumes. It never acquires sockets, spawns threads, or retries on the
// caller's behalf; that is the caller's concern (see transport/ adapters).
//
// Read and Write follow ordinary io.Reader/io.Writer conventions: a
// non-nil error is an IO failure (the core's equivalent of a negative
// return in the source contract), Read returning (0, nil) signals EOF,
// and a positive n is the count of bytes transferred. A non-blocking
// transport that would block should report it as an error from Read,
// per the "would-block is an IO error" rule for non-blocking transports.
type Transport interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
}
