package ripple

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// --- Constants ---

const (
	defaultScrollPages   = 6
	defaultScrollDamping = 0.5  // seconds to settle on the target
	defaultWheelStep     = 120  // pixels per wheel notch
	defaultDragDeadZone  = 4.0  // pixels
	scrollSnapEpsilon    = 0.01 // pixels
)

// ScrollConfig configures a Scroller.
type ScrollConfig struct {
	// Pages is the document height in viewport heights. The scrollable
	// range is (Pages-1) viewport heights. Default 6.
	Pages float64 `yaml:"pages"`
	// Damping is roughly how long, in seconds, the visible offset takes to
	// catch up with the target. Zero snaps immediately.
	Damping float64 `yaml:"damping"`
	// WheelStep is pixels scrolled per wheel notch. Default 120.
	WheelStep float64 `yaml:"wheel_step"`
}

// DefaultScrollConfig returns six pages with half a second of damping.
func DefaultScrollConfig() ScrollConfig {
	return ScrollConfig{
		Pages:     defaultScrollPages,
		Damping:   defaultScrollDamping,
		WheelStep: defaultWheelStep,
	}
}

// scrollInput is one frame of raw input relevant to scrolling.
type scrollInput struct {
	wheelY   float64 // positive scrolls up (Ebitengine convention)
	lines    int     // arrow keys: +1 down, -1 up
	pages    int     // page keys: +1 down, -1 up
	home     bool
	end      bool
	pointerY float64
	pressed  bool
}

// readScrollInput polls Ebitengine for wheel, keyboard and mouse state.
func readScrollInput() scrollInput {
	var in scrollInput
	_, in.wheelY = ebiten.Wheel()
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		in.lines++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		in.lines--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) {
		in.pages++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		in.pages--
	}
	in.home = inpututil.IsKeyJustPressed(ebiten.KeyHome)
	in.end = inpututil.IsKeyJustPressed(ebiten.KeyEnd)
	_, y := ebiten.CursorPosition()
	in.pointerY = float64(y)
	in.pressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	return in
}

// dragState tracks a mouse drag used to scroll like a touch screen.
type dragState struct {
	down     bool
	dragging bool
	startY   float64
	lastY    float64
}

// Scroller turns wheel, keyboard and drag input into a damped scroll offset
// and exposes it as progress in [0, 1]. It knows nothing about what the
// progress drives.
type Scroller struct {
	cfg       ScrollConfig
	viewportH float64
	target    float64
	current   float64

	injectQueue []float64
	drag        dragState
}

// NewScroller creates a scroller for a viewport of the given height.
func NewScroller(cfg ScrollConfig, viewportHeight float64) *Scroller {
	if cfg.Pages < 1 {
		cfg.Pages = defaultScrollPages
	}
	if cfg.Damping < 0 {
		cfg.Damping = 0
	}
	if cfg.WheelStep <= 0 {
		cfg.WheelStep = defaultWheelStep
	}
	return &Scroller{cfg: cfg, viewportH: viewportHeight}
}

// SetViewportHeight rescales the scrollable range, keeping progress.
func (s *Scroller) SetViewportHeight(h float64) {
	if h == s.viewportH {
		return
	}
	p, tp := s.Progress(), s.targetProgress()
	s.viewportH = h
	s.current = p * s.Range()
	s.target = tp * s.Range()
}

// Range returns the scrollable distance in pixels.
func (s *Scroller) Range() float64 {
	return (s.cfg.Pages - 1) * s.viewportH
}

// Offset returns the current (damped) scroll offset in pixels.
func (s *Scroller) Offset() float64 { return s.current }

// Progress returns the damped scroll offset over the scrollable range,
// clamped to [0, 1]. An empty range reports 0.
func (s *Scroller) Progress() float64 {
	r := s.Range()
	if r <= 0 {
		return 0
	}
	return clamp01(s.current / r)
}

func (s *Scroller) targetProgress() float64 {
	r := s.Range()
	if r <= 0 {
		return 0
	}
	return clamp01(s.target / r)
}

// ScrollBy moves the target offset by dy pixels (positive scrolls down).
func (s *Scroller) ScrollBy(dy float64) {
	if math.IsNaN(dy) {
		return
	}
	s.target = math.Max(0, math.Min(s.Range(), s.target+dy))
}

// SetProgress jumps both target and current offset to progress p, clamped.
func (s *Scroller) SetProgress(p float64) {
	s.target = clamp01(p) * s.Range()
	s.current = s.target
}

// InjectScroll queues a synthetic scroll of dy pixels, applied on the next
// Update. Used by scripted test runs.
func (s *Scroller) InjectScroll(dy float64) {
	s.injectQueue = append(s.injectQueue, dy)
}

// Update polls input and advances the damped offset by dt seconds.
func (s *Scroller) Update(dt float64) {
	s.update(dt, readScrollInput())
}

func (s *Scroller) update(dt float64, in scrollInput) {
	if len(s.injectQueue) > 0 {
		s.ScrollBy(s.injectQueue[0])
		s.injectQueue = s.injectQueue[1:]
	}

	if in.wheelY != 0 {
		s.ScrollBy(-in.wheelY * s.cfg.WheelStep)
	}
	if in.lines != 0 {
		s.ScrollBy(float64(in.lines) * s.cfg.WheelStep)
	}
	if in.pages != 0 {
		s.ScrollBy(float64(in.pages) * s.viewportH)
	}
	if in.home {
		s.target = 0
	}
	if in.end {
		s.target = s.Range()
	}
	s.processDrag(in)
	s.damp(dt)
}

// processDrag scrolls opposite to pointer motion once the drag leaves the
// dead zone.
func (s *Scroller) processDrag(in scrollInput) {
	d := &s.drag
	switch {
	case in.pressed && !d.down:
		*d = dragState{down: true, startY: in.pointerY, lastY: in.pointerY}
	case in.pressed && d.down:
		if !d.dragging && math.Abs(in.pointerY-d.startY) > defaultDragDeadZone {
			d.dragging = true
		}
		if d.dragging {
			s.ScrollBy(d.lastY - in.pointerY)
		}
		d.lastY = in.pointerY
	case !in.pressed && d.down:
		*d = dragState{}
	}
}

// damp moves current toward target exponentially.
func (s *Scroller) damp(dt float64) {
	diff := s.target - s.current
	if s.cfg.Damping <= 0 || math.Abs(diff) < scrollSnapEpsilon {
		s.current = s.target
		return
	}
	tau := s.cfg.Damping / 4
	s.current += diff * (1 - math.Exp(-dt/tau))
}
