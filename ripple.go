package ripple

import (
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// toRGBA converts a Color to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// Lerp returns the straight-alpha blend from c to o at t in [0, 1].
func (c Color) Lerp(o Color, t float64) Color {
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A + (o.A-c.A)*t,
	}
}

// clamp01 clamps v to [0, 1]. NaN maps to 0.
func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for screen and view-box positions.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a 3D vector used for positions, rotations (Euler radians),
// scales, and normals.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length. A zero-length vector is
// returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return v
	}
	return v.Scale(1 / l)
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Transform is a node's local position and Euler rotation (radians, applied
// X then Y then Z). It is the value a Timeline resolves to.
type Transform struct {
	Position Vec3 `yaml:"position"`
	Rotation Vec3 `yaml:"rotation"`
}

// Axis is a bitmask selecting components of a Vec3.
// Values can be combined with bitwise OR (e.g. AxisX | AxisY).
type Axis uint8

const (
	AxisX Axis = 1 << iota // X component
	AxisY                  // Y component
	AxisZ                  // Z component

	AxisAll = AxisX | AxisY | AxisZ
)

// component returns the component of v selected by a single-bit axis.
func (a Axis) component(v Vec3) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// set writes val into the component of v selected by a single-bit axis.
func (a Axis) set(v *Vec3, val float64) {
	switch a {
	case AxisX:
		v.X = val
	case AxisY:
		v.Y = val
	default:
		v.Z = val
	}
}

// String returns the lowercase axis letters, e.g. "xy".
func (a Axis) String() string {
	s := ""
	if a&AxisX != 0 {
		s += "x"
	}
	if a&AxisY != 0 {
		s += "y"
	}
	if a&AxisZ != 0 {
		s += "z"
	}
	return s
}

// Property selects which part of a Transform a Segment animates.
type Property uint8

const (
	PropertyPosition Property = iota // Transform.Position
	PropertyRotation                 // Transform.Rotation
)

// String returns "position" or "rotation".
func (p Property) String() string {
	if p == PropertyRotation {
		return "rotation"
	}
	return "position"
}

// vec returns a pointer to the Vec3 of t selected by p.
func (p Property) vec(t *Transform) *Vec3 {
	if p == PropertyRotation {
		return &t.Rotation
	}
	return &t.Position
}
