package ripple

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tanema/gween/ease"
)

var (
	// ErrUnknownEase is returned by EaseByName for names it does not know.
	ErrUnknownEase = errors.New("ripple: unknown ease")
	// ErrNonMonotonicEase is returned for curves that overshoot or bounce.
	// Timeline segments require strictly monotonic easing.
	ErrNonMonotonicEase = errors.New("ripple: ease is not monotonic")
)

// easeFamilies maps GSAP-style family names to gween's in/out/inOut curves.
var easeFamilies = map[string][3]ease.TweenFunc{
	"power1": {ease.InQuad, ease.OutQuad, ease.InOutQuad},
	"quad":   {ease.InQuad, ease.OutQuad, ease.InOutQuad},
	"power2": {ease.InCubic, ease.OutCubic, ease.InOutCubic},
	"cubic":  {ease.InCubic, ease.OutCubic, ease.InOutCubic},
	"power3": {ease.InQuart, ease.OutQuart, ease.InOutQuart},
	"quart":  {ease.InQuart, ease.OutQuart, ease.InOutQuart},
	"power4": {ease.InQuint, ease.OutQuint, ease.InOutQuint},
	"quint":  {ease.InQuint, ease.OutQuint, ease.InOutQuint},
	"sine":   {ease.InSine, ease.OutSine, ease.InOutSine},
	"expo":   {ease.InExpo, ease.OutExpo, ease.InOutExpo},
	"circ":   {ease.InCirc, ease.OutCirc, ease.InOutCirc},
}

// EaseByName resolves a GSAP-style ease name ("linear", "power1.in",
// "sine.inOut", ...) to a gween easing function. A bare family name means
// its ".out" variant, as in GSAP. Elastic, back and bounce curves are
// rejected with ErrNonMonotonicEase.
func EaseByName(name string) (ease.TweenFunc, error) {
	name = strings.TrimSpace(name)
	switch name {
	case "", "linear", "none", "power0":
		return ease.Linear, nil
	}

	family, variant, _ := strings.Cut(name, ".")
	switch family {
	case "elastic", "back", "bounce":
		return nil, fmt.Errorf("%w: %q", ErrNonMonotonicEase, name)
	}
	curves, ok := easeFamilies[family]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEase, name)
	}
	switch variant {
	case "in":
		return curves[0], nil
	case "", "out":
		return curves[1], nil
	case "inOut":
		return curves[2], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEase, name)
}

// --- Spin ---

// SpinConfig describes the open-ended rotation armed by a timeline.
type SpinConfig struct {
	Axis Axis
	// Period is seconds per full revolution. Zero or negative disables the spin.
	Period float64
}

// DefaultSpinConfig returns one turn about Y every 16 seconds.
func DefaultSpinConfig() SpinConfig {
	return SpinConfig{Axis: AxisY, Period: 16}
}

// SpinState is a constant-velocity rotation that starts when armed and never
// stops. Arming is a one-way latch.
type SpinState struct {
	Armed           bool
	ArmedAt         float64
	Axis            Axis
	AngularVelocity float64 // radians per second
}

func newSpinState(cfg SpinConfig) SpinState {
	s := SpinState{Axis: cfg.Axis}
	if cfg.Period > 0 {
		s.AngularVelocity = 2 * math.Pi / cfg.Period
	}
	if s.Axis == 0 {
		s.Axis = AxisY
	}
	return s
}

// arm latches the spin at time t. Returns false if it was already armed.
func (s *SpinState) arm(t float64) bool {
	if s.Armed {
		return false
	}
	s.Armed = true
	s.ArmedAt = t
	return true
}

// Angle returns the spin angle at time t, wrapped to [0, 2π). Wrapping keeps
// the angle precise however long the page stays open.
func (s SpinState) Angle(t float64) float64 {
	if !s.Armed {
		return 0
	}
	a := math.Mod((t-s.ArmedAt)*s.AngularVelocity, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
