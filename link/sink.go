// File: link/sink.go
// Author: rinelu <rinelu@users.noreply.github.com>
// License: Apache-2.0

package link

import (
	"github.com/rinelu/wen/api"
	"github.com/rinelu/wen/equeue"
)

// frameSink is the narrow capability handed to Codec.Decode in place of
// a back-reference to the Link itself: a handle onto the link's event
// queue plus a getter/setter pair for its frame-remaining counter. The
// getter is how Decode recognizes a continuation window (FrameLen() > 0)
// instead of reparsing a header that isn't there.
type frameSink struct {
	q        *equeue.Queue
	frameLen *int
}

func (s *frameSink) PushEvent(ev api.Event) bool { return s.q.Push(ev) }
func (s *frameSink) SetFrameLen(n int)           { *s.frameLen = n }
func (s *frameSink) FrameLen() int               { return *s.frameLen }
