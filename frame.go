package ripple

// Frame is the per-frame input every Engine receives. All fields are
// snapshots taken before any engine runs, so engines observe the same
// (time, progress) pair.
type Frame struct {
	// Elapsed is seconds since the scene started, monotonic. It includes
	// the current frame's Delta, so the first frame sees Elapsed == Delta.
	Elapsed float64
	// Delta is seconds since the previous frame.
	Delta float64
	// Progress is the scroll progress, already clamped to [0, 1].
	Progress float64
	// Nodes resolves handles to mounted nodes.
	Nodes NodeResolver
}

// NodeResolver looks up mounted nodes by handle. A missing, unmounted or
// disposed node resolves to (nil, false).
type NodeResolver interface {
	Node(h Handle) (*Node, bool)
}

// Engine is a per-frame animation system registered on a Scene.
type Engine interface {
	Update(f *Frame)
}

// FrameFunc is a one-shot frame callback.
type FrameFunc func(f *Frame)

// CancelToken identifies a pending frame request. The zero token is never
// issued.
type CancelToken struct {
	id uint64
}

// Valid reports whether the token was issued by a scheduler.
func (t CancelToken) Valid() bool { return t.id != 0 }

type frameRequest struct {
	id uint64
	fn FrameFunc
}

// FrameScheduler runs one-shot callbacks on the next frame, in request order.
// A callback that wants to run again requests itself from inside its body;
// such requests land on the following frame, never the current one.
// Cancelling removes the callback synchronously: once Cancel returns, that
// callback will not run.
type FrameScheduler struct {
	pending []frameRequest
	running []frameRequest
	nextID  uint64
}

// Request schedules fn for the next Run and returns its cancel token.
func (s *FrameScheduler) Request(fn FrameFunc) CancelToken {
	s.nextID++
	s.pending = append(s.pending, frameRequest{id: s.nextID, fn: fn})
	return CancelToken{id: s.nextID}
}

// Cancel drops the request identified by tok. Returns false if it already
// ran or was already cancelled.
func (s *FrameScheduler) Cancel(tok CancelToken) bool {
	if !tok.Valid() {
		return false
	}
	for _, q := range [2][]frameRequest{s.pending, s.running} {
		for i := range q {
			if q[i].id == tok.id && q[i].fn != nil {
				q[i].fn = nil
				return true
			}
		}
	}
	return false
}

// Pending returns the number of live requests waiting for the next Run.
func (s *FrameScheduler) Pending() int {
	n := 0
	for i := range s.pending {
		if s.pending[i].fn != nil {
			n++
		}
	}
	return n
}

// Run invokes every callback requested before this call.
func (s *FrameScheduler) Run(f *Frame) {
	s.running, s.pending = s.pending, s.running[:0]
	for i := range s.running {
		fn := s.running[i].fn
		if fn == nil {
			continue
		}
		s.running[i].fn = nil
		fn(f)
	}
	s.running = s.running[:0]
}
