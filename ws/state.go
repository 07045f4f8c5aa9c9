// File: ws/state.go
// Author: rinelu <rinelu@users.noreply.github.com>
// License: Apache-2.0

package ws

// State is the opaque per-link codec state api.Codec's contract calls
// for. Handshake re-derives everything from the buffer prefix it is
// handed each time, and Decode tracks whether it is mid-frame through
// the link's own frame-remaining counter (via FrameSink.FrameLen)
// rather than a second copy of that count here, so State carries
// nothing today. It still exists so callers have a concrete value to
// allocate and pass to Link.AttachCodec, matching the shape of the
// contract even when a given codec has no scratch space of its own to
// keep.
type State struct{}

// NewState returns a ready-to-use codec state.
func NewState() *State { return &State{} }
