package ripple

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

var (
	// ErrInvalidSegment is returned for segments with a negative start or
	// duration, or no axes.
	ErrInvalidSegment = errors.New("ripple: invalid segment")
	// ErrOverlappingSegments is returned when two segments animate the same
	// channel over overlapping windows.
	ErrOverlappingSegments = errors.New("ripple: overlapping segments")
)

// Segment is an eased interpolation of some axes of one Transform property
// over a window of the timeline.
type Segment struct {
	Label    string
	Property Property
	Axes     Axis
	// To holds the end values; only components selected by Axes are used.
	To       Vec3
	Start    float64
	Duration float64
	// Ease must be monotonic. Nil means linear.
	Ease ease.TweenFunc
	// ArmsSpin marks the segment whose completion starts the spin.
	ArmsSpin bool
}

// End returns Start + Duration.
func (s Segment) End() float64 { return s.Start + s.Duration }

const numChannels = 6

var channelAxes = [3]Axis{AxisX, AxisY, AxisZ}

// keyframe is a segment compiled down to a single channel.
type keyframe struct {
	start, dur float64
	from, to   float64
	tween      *gween.Tween
}

type track struct {
	keys []keyframe
}

// Timeline is an immutable, compiled set of segments. The transform it
// resolves is a pure function of the requested time.
type Timeline struct {
	initial  Transform
	segments []Segment
	tracks   [numChannels]track
	total    float64
}

// NewTimeline compiles segments against the initial transform. Each
// keyframe interpolates from the value its channel holds at its start
// offset (the previous keyframe's end value, or the initial value).
func NewTimeline(initial Transform, segments []Segment) (*Timeline, error) {
	tl := &Timeline{initial: initial, segments: append([]Segment(nil), segments...)}

	type ref struct {
		seg  int
		axis Axis
	}
	var byChannel [numChannels][]ref

	for i := range tl.segments {
		s := &tl.segments[i]
		if s.Start < 0 || s.Duration < 0 || s.Axes&AxisAll == 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSegment, s.Label)
		}
		if s.Ease == nil {
			s.Ease = ease.Linear
		}
		if e := s.End(); e > tl.total {
			tl.total = e
		}
		for ai, a := range channelAxes {
			if s.Axes&a != 0 {
				ch := int(s.Property)*3 + ai
				byChannel[ch] = append(byChannel[ch], ref{seg: i, axis: a})
			}
		}
	}

	for ch := range byChannel {
		refs := byChannel[ch]
		sort.SliceStable(refs, func(i, j int) bool {
			return tl.segments[refs[i].seg].Start < tl.segments[refs[j].seg].Start
		})
		prop := Property(ch / 3)
		from := channelAxes[ch%3].component(*prop.vec(&initial))
		prevEnd := 0.0
		prevLabel := ""
		for k, r := range refs {
			s := tl.segments[r.seg]
			if k > 0 && s.Start < prevEnd {
				return nil, fmt.Errorf("%w: %q and %q on %s.%s",
					ErrOverlappingSegments, prevLabel, s.Label, prop, r.axis)
			}
			to := r.axis.component(s.To)
			kf := keyframe{start: s.Start, dur: s.Duration, from: from, to: to}
			if s.Duration > 0 {
				kf.tween = gween.New(0, 1, float32(s.Duration), s.Ease)
			}
			tl.tracks[ch].keys = append(tl.tracks[ch].keys, kf)
			from = to
			prevEnd = s.End()
			prevLabel = s.Label
		}
	}
	return tl, nil
}

// Total returns the timeline length: the latest segment end.
func (tl *Timeline) Total() float64 { return tl.total }

// Initial returns the transform before any segment applies.
func (tl *Timeline) Initial() Transform { return tl.initial }

// Segments returns the compiled segments. The returned slice MUST NOT be mutated.
func (tl *Timeline) Segments() []Segment { return tl.segments }

// Resolve returns the transform at scroll progress p. p is clamped to
// [0, 1] and mapped linearly onto [0, Total].
func (tl *Timeline) Resolve(p float64) Transform {
	return tl.At(clamp01(p) * tl.total)
}

// At returns the transform at timeline time t.
func (tl *Timeline) At(t float64) Transform {
	if !(t > 0) {
		t = 0
	}
	if t > tl.total {
		t = tl.total
	}
	out := tl.initial
	for ch := range tl.tracks {
		keys := tl.tracks[ch].keys
		if len(keys) == 0 {
			continue
		}
		v := keys[0].from
		for i := range keys {
			k := &keys[i]
			if t < k.start {
				break
			}
			if k.tween == nil || t >= k.start+k.dur {
				v = k.to
				continue
			}
			// The tween yields the eased fraction; interpolating in float64
			// keeps endpoints exact.
			frac, _ := k.tween.Set(float32(t - k.start))
			v = k.from + (k.to-k.from)*float64(frac)
			break
		}
		channelAxes[ch%3].set(Property(ch/3).vec(&out), v)
	}
	return out
}

// --- ScrollTimeline ---

// Phase is the ScrollTimeline state. Transitions only move forward:
// Idle -> Animating -> SpinArmed.
type Phase uint8

const (
	PhaseIdle      Phase = iota // no progress seen yet
	PhaseAnimating              // scrubbing segments, spin not armed
	PhaseSpinArmed              // spin latched; terminal
)

// String returns a lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAnimating:
		return "animating"
	case PhaseSpinArmed:
		return "spin-armed"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// SegmentEventKind identifies a segment boundary crossing.
type SegmentEventKind uint8

const (
	SegmentStarted         SegmentEventKind = iota // crossed Start going forward
	SegmentCompleted                               // reached End going forward
	SegmentReverseComplete                         // crossed back over Start
)

// String returns "started", "completed" or "reverse-complete".
func (k SegmentEventKind) String() string {
	switch k {
	case SegmentStarted:
		return "started"
	case SegmentCompleted:
		return "completed"
	case SegmentReverseComplete:
		return "reverse-complete"
	}
	return fmt.Sprintf("event(%d)", uint8(k))
}

// SegmentEvent reports a boundary crossing. Events are notifications only;
// they never affect the resolved transform.
type SegmentEvent struct {
	Label string
	Kind  SegmentEventKind
	Time  float64 // timeline time of the seek that produced the event
}

// ScrollTimeline binds a Timeline to scroll progress and drives a target
// node's transform from it. A designated segment latches an open-ended spin
// of a second node the first time its end is reached.
type ScrollTimeline struct {
	timeline   *Timeline
	target     Handle
	spinTarget Handle
	spin       SpinState
	spinSeg    int // index of the ArmsSpin segment, -1 if none

	phase    Phase
	armCount int
	lastT    float64
	current  Transform

	// OnSegment, if set, receives boundary crossings.
	OnSegment func(SegmentEvent)
}

// NewScrollTimeline creates the engine. spinTarget may be zero when no spin
// is wanted.
func NewScrollTimeline(tl *Timeline, target, spinTarget Handle, spin SpinConfig) *ScrollTimeline {
	st := &ScrollTimeline{
		timeline:   tl,
		target:     target,
		spinTarget: spinTarget,
		spin:       newSpinState(spin),
		spinSeg:    -1,
		current:    tl.Resolve(0),
	}
	for i, s := range tl.segments {
		if s.ArmsSpin {
			st.spinSeg = i
			break
		}
	}
	return st
}

// Timeline returns the bound timeline.
func (st *ScrollTimeline) Timeline() *Timeline { return st.timeline }

// Phase returns the current phase.
func (st *ScrollTimeline) Phase() Phase { return st.phase }

// Spin returns the spin state.
func (st *ScrollTimeline) Spin() SpinState { return st.spin }

// ArmCount returns how many times the spin latch fired (0 or 1).
func (st *ScrollTimeline) ArmCount() int { return st.armCount }

// Current returns the transform resolved by the last Seek.
func (st *ScrollTimeline) Current() Transform { return st.current }

// Seek moves to scroll progress p at scene time elapsed and returns the
// resolved transform. The transform depends on p alone; only the phase,
// the spin latch and boundary notifications look at the previous seek.
func (st *ScrollTimeline) Seek(p, elapsed float64) Transform {
	p = clamp01(p)
	t := p * st.timeline.total

	if st.phase == PhaseIdle && p > 0 {
		st.phase = PhaseAnimating
	}
	st.notify(st.lastT, t)

	if st.spinSeg >= 0 && !st.spin.Armed && t >= st.timeline.segments[st.spinSeg].End() &&
		st.spin.AngularVelocity > 0 {
		if st.spin.arm(elapsed) {
			st.armCount++
			st.phase = PhaseSpinArmed
			if globalDebug {
				log.Printf("[ripple] spin armed at %.3fs (timeline %.3f)", elapsed, t)
			}
		}
	}

	st.lastT = t
	st.current = st.timeline.At(t)
	return st.current
}

// notify reports segment boundaries crossed moving from prev to t.
func (st *ScrollTimeline) notify(prev, t float64) {
	if st.OnSegment == nil || prev == t {
		return
	}
	for _, s := range st.timeline.segments {
		start, end := s.Start, s.End()
		if s.Duration == 0 {
			// An instant segment starts and completes on the same crossing.
			if t > prev && prev < start && t >= start {
				st.OnSegment(SegmentEvent{Label: s.Label, Kind: SegmentStarted, Time: t})
				st.OnSegment(SegmentEvent{Label: s.Label, Kind: SegmentCompleted, Time: t})
			}
			if t < prev && prev >= start && t < start {
				st.OnSegment(SegmentEvent{Label: s.Label, Kind: SegmentReverseComplete, Time: t})
			}
			continue
		}
		if t > prev {
			if prev <= start && t > start {
				st.OnSegment(SegmentEvent{Label: s.Label, Kind: SegmentStarted, Time: t})
			}
			if prev < end && t >= end {
				st.OnSegment(SegmentEvent{Label: s.Label, Kind: SegmentCompleted, Time: t})
			}
			continue
		}
		if prev > start && t <= start {
			st.OnSegment(SegmentEvent{Label: s.Label, Kind: SegmentReverseComplete, Time: t})
		}
	}
}

// Update implements Engine. Skips the frame while the target is unmounted.
func (st *ScrollTimeline) Update(f *Frame) {
	node, ok := f.Nodes.Node(st.target)
	if !ok {
		return
	}
	node.SetTransform(st.Seek(f.Progress, f.Elapsed))

	if !st.spin.Armed || st.spinTarget == 0 {
		return
	}
	if spinNode, ok := f.Nodes.Node(st.spinTarget); ok {
		st.spin.Axis.set(&spinNode.Rotation, st.spin.Angle(f.Elapsed))
		spinNode.MarkDirty()
	}
}
