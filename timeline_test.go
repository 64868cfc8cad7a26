package ripple

import (
	"errors"
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

const tol = 1e-5

func near(a, b float64) bool { return math.Abs(a-b) <= tol }

func nearVec(a, b Vec3) bool { return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z) }

func defaultTimeline(t *testing.T) (*Timeline, SpinConfig) {
	t.Helper()
	tl, spin, err := DefaultConfig().Timeline.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tl, spin
}

func TestTimelineLinearMidpoint(t *testing.T) {
	tl, err := NewTimeline(Transform{}, []Segment{
		{Label: "x", Property: PropertyPosition, Axes: AxisX, To: Vec3{X: 0.5}, Start: 0, Duration: 1, Ease: ease.Linear},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := tl.Resolve(0.5).Position.X; !near(got, 0.25) {
		t.Errorf("x at p=0.5 = %v, want 0.25", got)
	}
}

func TestTimelineEasedMidpoint(t *testing.T) {
	tl, err := NewTimeline(Transform{}, []Segment{
		{Label: "x", Axes: AxisX, To: Vec3{X: 1}, Duration: 1, Ease: ease.InQuad},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := tl.Resolve(0.5).Position.X; !near(got, 0.25) {
		t.Errorf("quad-in x at p=0.5 = %v, want 0.25", got)
	}
	if got := tl.Resolve(0.25).Position.X; !near(got, 0.0625) {
		t.Errorf("quad-in x at p=0.25 = %v, want 0.0625", got)
	}
}

func TestTimelineNilEaseIsLinear(t *testing.T) {
	tl, err := NewTimeline(Transform{}, []Segment{
		{Label: "y", Axes: AxisY, To: Vec3{Y: 4}, Duration: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := tl.At(0.5).Position.Y; !near(got, 1) {
		t.Errorf("y at t=0.5 = %v, want 1", got)
	}
}

func TestTimelineBoundaries(t *testing.T) {
	tl, _ := defaultTimeline(t)
	initial := Transform{Position: Vec3{2, 0, 0}}

	if got := tl.Resolve(0); !nearVec(got.Position, initial.Position) || !nearVec(got.Rotation, initial.Rotation) {
		t.Errorf("p=0 = %+v, want initial %+v", got, initial)
	}

	end := tl.Resolve(1)
	if !nearVec(end.Position, Vec3{}) {
		t.Errorf("p=1 position = %+v, want origin", end.Position)
	}
	// Rotation X returns to 0; Y keeps the -π/4 from the first segment.
	if !nearVec(end.Rotation, Vec3{0, -math.Pi / 4, 0}) {
		t.Errorf("p=1 rotation = %+v, want (0, -π/4, 0)", end.Rotation)
	}

	if got := tl.Resolve(-3); got != tl.Resolve(0) {
		t.Errorf("p<0 = %+v, want clamp to p=0", got)
	}
	if got := tl.Resolve(7); got != tl.Resolve(1) {
		t.Errorf("p>1 = %+v, want clamp to p=1", got)
	}
}

func TestTimelineDefaultHoldsBetweenSegments(t *testing.T) {
	tl, _ := defaultTimeline(t)
	if tl.Total() != 6 {
		t.Fatalf("Total = %v, want 6", tl.Total())
	}
	// Between T=1 and T=5 the can holds the fly-in pose.
	for _, tm := range []float64{1, 2.5, 4.99} {
		got := tl.At(tm)
		if !nearVec(got.Position, Vec3{0.5, 0, 3}) {
			t.Errorf("position at T=%v = %+v, want (0.5, 0, 3)", tm, got.Position)
		}
		if !nearVec(got.Rotation, Vec3{math.Pi / 4, -math.Pi / 4, 0}) {
			t.Errorf("rotation at T=%v = %+v", tm, got.Rotation)
		}
	}
}

func TestTimelineResolveIsPure(t *testing.T) {
	tl, _ := defaultTimeline(t)
	ps := []float64{0, 0.05, 0.1, 0.17, 0.4, 0.83, 0.9, 1}
	for _, p2 := range ps {
		direct := tl.Resolve(p2)
		for _, p1 := range ps {
			tl.Resolve(p1)
			if got := tl.Resolve(p2); got != direct {
				t.Fatalf("Resolve(%v) after Resolve(%v) = %+v, want %+v", p2, p1, got, direct)
			}
		}
	}
}

func TestTimelineZeroDuration(t *testing.T) {
	tl, err := NewTimeline(Transform{}, []Segment{
		{Label: "snap", Axes: AxisZ, To: Vec3{Z: 9}, Start: 1, Duration: 0},
		{Label: "pad", Axes: AxisX, To: Vec3{X: 1}, Start: 0, Duration: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := tl.At(0.999).Position.Z; got != 0 {
		t.Errorf("z before snap = %v, want 0", got)
	}
	if got := tl.At(1).Position.Z; got != 9 {
		t.Errorf("z at snap = %v, want 9", got)
	}
}

func TestTimelineResolveNaN(t *testing.T) {
	tl, _ := defaultTimeline(t)
	want := tl.Resolve(0)
	if got := tl.Resolve(math.NaN()); got != want {
		t.Errorf("Resolve(NaN) = %+v, want %+v", got, want)
	}
	if got := tl.At(math.NaN()); got != want {
		t.Errorf("At(NaN) = %+v, want %+v", got, want)
	}
}

func TestTimelineInterpolatesInFloat64(t *testing.T) {
	from, to := 0.1, 0.7
	tl, err := NewTimeline(Transform{Position: Vec3{X: from}}, []Segment{
		{Label: "x", Axes: AxisX, To: Vec3{X: to}, Start: 0, Duration: 1, Ease: ease.Linear},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := tl.At(0.5).Position.X, from+(to-from)*0.5; got != want {
		t.Errorf("x at 0.5 = %v, want %v", got, want)
	}
	if got := tl.At(1 - 1e-9).Position.X; math.Abs(got-to) > 1e-6 {
		t.Errorf("x just before end = %v, want ~%v", got, to)
	}
	if got := tl.At(1).Position.X; got != to {
		t.Errorf("x at end = %v, want %v", got, to)
	}
}

func TestTimelineChainsFromPreviousEnd(t *testing.T) {
	tl, err := NewTimeline(Transform{Position: Vec3{X: 10}}, []Segment{
		{Label: "b", Axes: AxisX, To: Vec3{X: 0}, Start: 2, Duration: 1},
		{Label: "a", Axes: AxisX, To: Vec3{X: 20}, Start: 0, Duration: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	// "b" starts from "a"'s end value even though it was listed first.
	if got := tl.At(2.5).Position.X; !near(got, 10) {
		t.Errorf("x at 2.5 = %v, want 10", got)
	}
}

func TestTimelineRejectsOverlap(t *testing.T) {
	_, err := NewTimeline(Transform{}, []Segment{
		{Label: "a", Axes: AxisX | AxisY, To: Vec3{1, 1, 0}, Start: 0, Duration: 2},
		{Label: "b", Axes: AxisY, To: Vec3{Y: 3}, Start: 1, Duration: 2},
	})
	if !errors.Is(err, ErrOverlappingSegments) {
		t.Fatalf("err = %v, want ErrOverlappingSegments", err)
	}

	// Same window on different properties is fine.
	_, err = NewTimeline(Transform{}, []Segment{
		{Label: "pos", Property: PropertyPosition, Axes: AxisAll, Duration: 1},
		{Label: "rot", Property: PropertyRotation, Axes: AxisAll, Duration: 1},
	})
	if err != nil {
		t.Fatalf("position and rotation sharing a window: %v", err)
	}
}

func TestTimelineRejectsInvalidSegment(t *testing.T) {
	cases := []Segment{
		{Label: "neg start", Axes: AxisX, Start: -1, Duration: 1},
		{Label: "neg dur", Axes: AxisX, Duration: -1},
		{Label: "no axes", Duration: 1},
	}
	for _, s := range cases {
		t.Run(s.Label, func(t *testing.T) {
			if _, err := NewTimeline(Transform{}, []Segment{s}); !errors.Is(err, ErrInvalidSegment) {
				t.Errorf("err = %v, want ErrInvalidSegment", err)
			}
		})
	}
}

func TestScrollTimelinePhases(t *testing.T) {
	tl, spin := defaultTimeline(t)
	st := NewScrollTimeline(tl, 1, 2, spin)

	if st.Phase() != PhaseIdle {
		t.Fatalf("initial phase = %v", st.Phase())
	}
	st.Seek(0, 0)
	if st.Phase() != PhaseIdle {
		t.Fatalf("phase after p=0 = %v, want idle", st.Phase())
	}
	st.Seek(0.05, 1)
	if st.Phase() != PhaseAnimating {
		t.Fatalf("phase after p=0.05 = %v, want animating", st.Phase())
	}
	// T = 1.2 is past the end of the arming segment.
	st.Seek(0.2, 2)
	if st.Phase() != PhaseSpinArmed {
		t.Fatalf("phase at T=1.2 = %v, want spin-armed", st.Phase())
	}
	if !st.Spin().Armed || st.Spin().ArmedAt != 2 {
		t.Errorf("spin = %+v, want armed at 2", st.Spin())
	}
	st.Seek(0, 3)
	if st.Phase() != PhaseSpinArmed {
		t.Errorf("phase after scrolling back = %v, want spin-armed", st.Phase())
	}
}

func TestScrollTimelineLatchArmsOnce(t *testing.T) {
	tl, spin := defaultTimeline(t)
	st := NewScrollTimeline(tl, 1, 2, spin)

	for i, p := range []float64{0.1, 0.5, 0, 0.9, 0.05, 1, 0.2, 1} {
		st.Seek(p, float64(i))
	}
	if st.ArmCount() != 1 {
		t.Fatalf("ArmCount = %d, want 1", st.ArmCount())
	}
	if st.Spin().ArmedAt != 1 {
		t.Errorf("ArmedAt = %v, want 1 (first crossing)", st.Spin().ArmedAt)
	}
}

func TestScrollTimelineJumpPastArmingWindow(t *testing.T) {
	tl, spin := defaultTimeline(t)
	st := NewScrollTimeline(tl, 1, 2, spin)
	st.Seek(1, 0.5)
	if st.ArmCount() != 1 || st.Phase() != PhaseSpinArmed {
		t.Errorf("jumping to the end: ArmCount = %d, phase = %v", st.ArmCount(), st.Phase())
	}
}

func TestScrollTimelineSeekMatchesResolve(t *testing.T) {
	tl, spin := defaultTimeline(t)
	st := NewScrollTimeline(tl, 1, 2, spin)
	for i, p := range []float64{0.3, 0.9, 0.1, 0.6} {
		if got, want := st.Seek(p, float64(i)), tl.Resolve(p); got != want {
			t.Errorf("Seek(%v) = %+v, want %+v", p, got, want)
		}
	}
	if st.Current() != tl.Resolve(0.6) {
		t.Error("Current should hold the last seek")
	}
}

func TestScrollTimelineEvents(t *testing.T) {
	tl, spin := defaultTimeline(t)
	st := NewScrollTimeline(tl, 1, 2, spin)
	var got []SegmentEvent
	st.OnSegment = func(ev SegmentEvent) { got = append(got, ev) }

	st.Seek(0.5, 0) // crosses both starts and both ends at T=0..1
	starts, completes := 0, 0
	for _, ev := range got {
		switch ev.Kind {
		case SegmentStarted:
			starts++
		case SegmentCompleted:
			completes++
		}
	}
	if starts != 2 || completes != 2 {
		t.Fatalf("forward events: %d starts, %d completes, want 2 and 2 (%+v)", starts, completes, got)
	}

	got = nil
	st.Seek(0, 1)
	if len(got) != 2 {
		t.Fatalf("reverse events = %+v, want 2", got)
	}
	for _, ev := range got {
		if ev.Kind != SegmentReverseComplete {
			t.Errorf("event %+v, want reverse-complete", ev)
		}
	}
}

func TestScrollTimelineSeekNaNKeepsEvents(t *testing.T) {
	tl, spin := defaultTimeline(t)
	st := NewScrollTimeline(tl, 1, 2, spin)
	var got []SegmentEvent
	st.OnSegment = func(ev SegmentEvent) { got = append(got, ev) }

	if tr := st.Seek(math.NaN(), 0); tr != tl.Resolve(0) {
		t.Fatalf("Seek(NaN) = %+v, want the p=0 transform", tr)
	}
	if st.Phase() != PhaseIdle {
		t.Errorf("phase after Seek(NaN) = %v, want idle", st.Phase())
	}
	st.Seek(1, 1)
	starts, completes := 0, 0
	for _, ev := range got {
		switch ev.Kind {
		case SegmentStarted:
			starts++
		case SegmentCompleted:
			completes++
		}
	}
	if starts != 4 || completes != 4 {
		t.Errorf("events after Seek(1): %d starts, %d completes, want 4 and 4 (%+v)", starts, completes, got)
	}
}

func TestScrollTimelineInstantSegmentEvents(t *testing.T) {
	tl, err := NewTimeline(Transform{}, []Segment{
		{Label: "z", Axes: AxisZ, To: Vec3{Z: 9}, Start: 1, Duration: 0},
		{Label: "pad", Axes: AxisX, To: Vec3{X: 1}, Start: 0, Duration: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	st := NewScrollTimeline(tl, 1, 0, SpinConfig{})
	var kinds []SegmentEventKind
	st.OnSegment = func(ev SegmentEvent) {
		if ev.Label == "z" {
			kinds = append(kinds, ev.Kind)
		}
	}

	tests := []struct {
		p    float64
		want []SegmentEventKind
	}{
		{0.5, []SegmentEventKind{SegmentStarted, SegmentCompleted}}, // lands exactly on T=1
		{1, nil},
		{0.25, []SegmentEventKind{SegmentReverseComplete}},
		{1, []SegmentEventKind{SegmentStarted, SegmentCompleted}},
	}
	for _, tt := range tests {
		kinds = nil
		st.Seek(tt.p, 0)
		if len(kinds) != len(tt.want) {
			t.Fatalf("Seek(%v): events %v, want %v", tt.p, kinds, tt.want)
		}
		for i := range kinds {
			if kinds[i] != tt.want[i] {
				t.Errorf("Seek(%v): event %d = %v, want %v", tt.p, i, kinds[i], tt.want[i])
			}
		}
	}
}

func TestScrollTimelineUpdateWritesNodes(t *testing.T) {
	tl, spin := defaultTimeline(t)
	s := NewScene()
	group := NewContainer("can")
	spinner := NewContainer("spin")
	group.AddChild(spinner)
	s.Root().AddChild(group)

	st := NewScrollTimeline(tl, group.Handle(), spinner.Handle(), spin)
	st.Update(&Frame{Elapsed: 10, Progress: 0.5, Nodes: s})
	if !nearVec(group.Position, Vec3{0.5, 0, 3}) {
		t.Errorf("group position = %+v", group.Position)
	}
	if spinner.Rotation.Y != 0 {
		t.Errorf("spin applied before the latch: %v", spinner.Rotation.Y)
	}

	st.Update(&Frame{Elapsed: 14, Progress: 0.5, Nodes: s})
	// 4 s after arming at 10 s is a quarter turn of a 16 s period.
	if !near(spinner.Rotation.Y, math.Pi/2) {
		t.Errorf("spin angle = %v, want π/2", spinner.Rotation.Y)
	}
}

func TestScrollTimelineSkipsUnmountedTarget(t *testing.T) {
	tl, spin := defaultTimeline(t)
	s := NewScene()
	group := NewContainer("can")
	st := NewScrollTimeline(tl, group.Handle(), 0, spin)

	st.Update(&Frame{Progress: 1, Nodes: s})
	if st.Phase() != PhaseIdle {
		t.Errorf("phase = %v, want idle while unmounted", st.Phase())
	}
	if group.Position != (Vec3{}) {
		t.Errorf("unmounted node was written: %+v", group.Position)
	}
}
